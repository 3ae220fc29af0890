package diamond

import (
	"github.com/ethereum/go-ethereum/common"
)

// DiamondStoragePosition is where the routing table lives in the diamond's
// storage.
var DiamondStoragePosition = StoragePosition("diamond.standard.diamond.storage")

// FacetAddressAndPosition locates a selector inside its facet's list
type FacetAddressAndPosition struct {
	FacetAddress          common.Address
	FunctionSelectorIndex int
}

// FacetFunctionSelectors is the per-facet selector list plus the facet's
// index in FacetAddresses
type FacetFunctionSelectors struct {
	FunctionSelectors [][4]byte
	FacetAddressIndex int
}

// DiamondStorage is the routing and ownership state of a diamond
type DiamondStorage struct {
	SelectorToFacetAndPosition map[[4]byte]FacetAddressAndPosition
	FacetFunctionSelectors     map[common.Address]*FacetFunctionSelectors
	FacetAddresses             []common.Address
	SupportedInterfaces        map[[4]byte]bool
	ContractOwner              common.Address
}

func newDiamondStorage() *DiamondStorage {
	return &DiamondStorage{
		SelectorToFacetAndPosition: make(map[[4]byte]FacetAddressAndPosition),
		FacetFunctionSelectors:     make(map[common.Address]*FacetFunctionSelectors),
		SupportedInterfaces:        make(map[[4]byte]bool),
	}
}

// Clone implements Slot
func (ds *DiamondStorage) Clone() Slot {
	c := &DiamondStorage{
		SelectorToFacetAndPosition: make(map[[4]byte]FacetAddressAndPosition, len(ds.SelectorToFacetAndPosition)),
		FacetFunctionSelectors:     make(map[common.Address]*FacetFunctionSelectors, len(ds.FacetFunctionSelectors)),
		FacetAddresses:             append([]common.Address(nil), ds.FacetAddresses...),
		SupportedInterfaces:        make(map[[4]byte]bool, len(ds.SupportedInterfaces)),
		ContractOwner:              ds.ContractOwner,
	}
	for k, v := range ds.SelectorToFacetAndPosition {
		c.SelectorToFacetAndPosition[k] = v
	}
	for k, v := range ds.FacetFunctionSelectors {
		c.FacetFunctionSelectors[k] = &FacetFunctionSelectors{
			FunctionSelectors: append([][4]byte(nil), v.FunctionSelectors...),
			FacetAddressIndex: v.FacetAddressIndex,
		}
	}
	for k, v := range ds.SupportedInterfaces {
		c.SupportedInterfaces[k] = v
	}
	return c
}

// LoadDiamondStorage returns the routing state of env's storage context
func LoadDiamondStorage(env *Env) *DiamondStorage {
	return LoadSlot(env, DiamondStoragePosition, newDiamondStorage)
}

// SetContractOwner records a new owner and emits OwnershipTransferred
func SetContractOwner(env *Env, newOwner common.Address) error {
	ds := LoadDiamondStorage(env)
	previous := ds.ContractOwner
	ds.ContractOwner = newOwner
	return EmitEvent(env, OwnershipABI, "OwnershipTransferred", previous, newOwner)
}

// ContractOwner returns the diamond owner
func ContractOwner(env *Env) common.Address {
	return LoadDiamondStorage(env).ContractOwner
}

// EnforceIsContractOwner reverts unless the caller owns the diamond
func EnforceIsContractOwner(env *Env) error {
	if env.Caller != LoadDiamondStorage(env).ContractOwner {
		return ErrNotContractOwner
	}
	return nil
}
