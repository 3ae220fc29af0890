package diamond

// DiamondCutABIJSON is the IDiamondCut interface
var DiamondCutABIJSON = []byte(`[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "facetAddress", "type": "address"},
					{"internalType": "enum IDiamondCut.FacetCutAction", "name": "action", "type": "uint8"},
					{"internalType": "bytes4[]", "name": "functionSelectors", "type": "bytes4[]"}
				],
				"internalType": "struct IDiamondCut.FacetCut[]",
				"name": "_diamondCut",
				"type": "tuple[]"
			},
			{"internalType": "address", "name": "_init", "type": "address"},
			{"internalType": "bytes", "name": "_calldata", "type": "bytes"}
		],
		"name": "diamondCut",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "facetAddress", "type": "address"},
					{"internalType": "enum IDiamondCut.FacetCutAction", "name": "action", "type": "uint8"},
					{"internalType": "bytes4[]", "name": "functionSelectors", "type": "bytes4[]"}
				],
				"indexed": false,
				"internalType": "struct IDiamondCut.FacetCut[]",
				"name": "_diamondCut",
				"type": "tuple[]"
			},
			{"indexed": false, "internalType": "address", "name": "_init", "type": "address"},
			{"indexed": false, "internalType": "bytes", "name": "_calldata", "type": "bytes"}
		],
		"name": "DiamondCut",
		"type": "event"
	}
]`)

// DiamondLoupeABIJSON is IDiamondLoupe plus ERC-165
var DiamondLoupeABIJSON = []byte(`[
	{
		"inputs": [{"internalType": "bytes4", "name": "_functionSelector", "type": "bytes4"}],
		"name": "facetAddress",
		"outputs": [{"internalType": "address", "name": "facetAddress_", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "facetAddresses",
		"outputs": [{"internalType": "address[]", "name": "facetAddresses_", "type": "address[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "_facet", "type": "address"}],
		"name": "facetFunctionSelectors",
		"outputs": [{"internalType": "bytes4[]", "name": "facetFunctionSelectors_", "type": "bytes4[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "facets",
		"outputs": [
			{
				"components": [
					{"internalType": "address", "name": "facetAddress", "type": "address"},
					{"internalType": "bytes4[]", "name": "functionSelectors", "type": "bytes4[]"}
				],
				"internalType": "struct IDiamondLoupe.Facet[]",
				"name": "facets_",
				"type": "tuple[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "bytes4", "name": "_interfaceId", "type": "bytes4"}],
		"name": "supportsInterface",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`)

// OwnershipABIJSON is ERC-173 plus renounceOwnership
var OwnershipABIJSON = []byte(`[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "previousOwner", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "newOwner", "type": "address"}
		],
		"name": "OwnershipTransferred",
		"type": "event"
	},
	{
		"inputs": [],
		"name": "owner",
		"outputs": [{"internalType": "address", "name": "owner_", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "_newOwner", "type": "address"}],
		"name": "transferOwnership",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "renounceOwnership",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`)

// DiamondInitABIJSON is the initializer used by the first upgrade
var DiamondInitABIJSON = []byte(`[
	{
		"inputs": [],
		"name": "init",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`)

// Parsed interfaces
var (
	DiamondCutABI   = MustParseABI(DiamondCutABIJSON)
	DiamondLoupeABI = MustParseABI(DiamondLoupeABIJSON)
	OwnershipABI    = MustParseABI(OwnershipABIJSON)
	DiamondInitABI  = MustParseABI(DiamondInitABIJSON)
)
