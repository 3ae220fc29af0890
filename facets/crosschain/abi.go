package crosschain

import diamond "github.com/hashleap/diamond"

// ABIJSON is the CrossChainPaymentFacet interface
var ABIJSON = []byte(`[
	{"inputs":[{"name":"chain","type":"string"},{"name":"gateway","type":"address"}],"name":"setAxelarContract","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"chain","type":"string"}],"name":"getAxelarContract","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"sourceChain","type":"string"},{"name":"targetChain","type":"string"},{"name":"recipient","type":"address"},{"name":"tokenSymbol","type":"string"},{"name":"amount","type":"uint256"},{"name":"tokenContract","type":"address"},{"name":"paymentRef","type":"string"},{"name":"tags","type":"string[]"}],"name":"transfer","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tokenContract","type":"address"}],"name":"getTotalBridged","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":false,"name":"chain","type":"string"},{"indexed":true,"name":"gateway","type":"address"}],"name":"AxelarContractSet","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"sender","type":"address"},{"indexed":true,"name":"recipient","type":"address"},{"indexed":false,"name":"tokenAddress","type":"address"},{"indexed":false,"name":"sourceChain","type":"string"},{"indexed":false,"name":"targetChain","type":"string"},{"indexed":false,"name":"tokenSymbol","type":"string"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"datetime","type":"uint256"},{"indexed":false,"name":"paymentRef","type":"string"},{"indexed":false,"name":"tags","type":"string[]"}],"name":"TransferSuccess","type":"event"}
]`)

// ABI is the parsed CrossChainPaymentFacet interface
var ABI = diamond.MustParseABI(ABIJSON)

// GatewayABIJSON is the part of the Axelar gateway the facet calls, plus
// the inspection methods of the development gateway
var GatewayABIJSON = []byte(`[
	{"inputs":[{"name":"destinationChain","type":"string"},{"name":"destinationAddress","type":"string"},{"name":"symbol","type":"string"},{"name":"amount","type":"uint256"}],"name":"sendToken","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"sentCount","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"sender","type":"address"},{"indexed":false,"name":"destinationChain","type":"string"},{"indexed":false,"name":"destinationAddress","type":"string"},{"indexed":false,"name":"symbol","type":"string"},{"indexed":false,"name":"amount","type":"uint256"}],"name":"TokenSent","type":"event"}
]`)

// GatewayABI is the parsed gateway interface
var GatewayABI = diamond.MustParseABI(GatewayABIJSON)
