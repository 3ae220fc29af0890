package diamond

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// DiamondCut applies a batch of cuts to env's routing table, runs the
// optional initializer, and emits DiamondCut.
//
// The caller is not checked here; DiamondCutFacet and the Diamond
// constructor gate access. Any error leaves the transaction to be reverted
// by the ledger, so a partially applied batch never survives.
func DiamondCut(env *Env, cuts []FacetCut, init common.Address, calldata []byte) error {
	for _, cut := range cuts {
		var err error
		switch FacetCutAction(cut.Action) {
		case Add:
			err = addFunctions(env, cut.FacetAddress, cut.FunctionSelectors)
		case Replace:
			err = replaceFunctions(env, cut.FacetAddress, cut.FunctionSelectors)
		case Remove:
			err = removeFunctions(env, cut.FacetAddress, cut.FunctionSelectors)
		default:
			err = ErrIncorrectAction
		}
		if err != nil {
			return err
		}
	}

	if err := EmitEvent(env, DiamondCutABI, "DiamondCut", cuts, init, calldata); err != nil {
		return err
	}
	return initializeDiamondCut(env, init, calldata)
}

func addFunctions(env *Env, facet common.Address, selectors [][4]byte) error {
	if len(selectors) == 0 {
		return ErrNoSelectors
	}
	if facet == (common.Address{}) {
		return ErrAddFacetZero
	}
	ds := LoadDiamondStorage(env)
	if _, known := ds.FacetFunctionSelectors[facet]; !known {
		if err := addFacet(env, ds, facet); err != nil {
			return err
		}
	}
	for _, sel := range selectors {
		if existing, ok := ds.SelectorToFacetAndPosition[sel]; ok && existing.FacetAddress != (common.Address{}) {
			return ErrFunctionExists.WithDetails(map[string]interface{}{"selector": SelectorHex(sel)})
		}
		addFunction(ds, sel, facet)
	}
	return nil
}

func replaceFunctions(env *Env, facet common.Address, selectors [][4]byte) error {
	if len(selectors) == 0 {
		return ErrNoSelectors
	}
	if facet == (common.Address{}) {
		return ErrReplaceFacetZero
	}
	ds := LoadDiamondStorage(env)
	if _, known := ds.FacetFunctionSelectors[facet]; !known {
		if err := addFacet(env, ds, facet); err != nil {
			return err
		}
	}
	for _, sel := range selectors {
		old, ok := ds.SelectorToFacetAndPosition[sel]
		if !ok {
			return ErrReplaceMissing.WithDetails(map[string]interface{}{"selector": SelectorHex(sel)})
		}
		if old.FacetAddress == facet {
			return ErrReplaceSame.WithDetails(map[string]interface{}{"selector": SelectorHex(sel)})
		}
		if old.FacetAddress == env.Self {
			return ErrReplaceImmutable
		}
		removeFunction(ds, old.FacetAddress, sel)
		addFunction(ds, sel, facet)
	}
	return nil
}

func removeFunctions(env *Env, facet common.Address, selectors [][4]byte) error {
	if len(selectors) == 0 {
		return ErrNoSelectors
	}
	if facet != (common.Address{}) {
		return ErrRemoveFacetNotZero
	}
	ds := LoadDiamondStorage(env)
	for _, sel := range selectors {
		old, ok := ds.SelectorToFacetAndPosition[sel]
		if !ok {
			return ErrRemoveMissing.WithDetails(map[string]interface{}{"selector": SelectorHex(sel)})
		}
		if old.FacetAddress == env.Self {
			return ErrRemoveImmutable
		}
		removeFunction(ds, old.FacetAddress, sel)
	}
	return nil
}

func addFacet(env *Env, ds *DiamondStorage, facet common.Address) error {
	if !env.Host.HasCode(facet) {
		return ErrFacetHasNoCode.WithDetails(map[string]interface{}{"facet": facet.Hex()})
	}
	ds.FacetFunctionSelectors[facet] = &FacetFunctionSelectors{
		FacetAddressIndex: len(ds.FacetAddresses),
	}
	ds.FacetAddresses = append(ds.FacetAddresses, facet)
	return nil
}

func addFunction(ds *DiamondStorage, sel [4]byte, facet common.Address) {
	fs := ds.FacetFunctionSelectors[facet]
	ds.SelectorToFacetAndPosition[sel] = FacetAddressAndPosition{
		FacetAddress:          facet,
		FunctionSelectorIndex: len(fs.FunctionSelectors),
	}
	fs.FunctionSelectors = append(fs.FunctionSelectors, sel)
}

// removeFunction unbinds sel using swap-and-pop and prunes the facet when
// its last selector goes.
func removeFunction(ds *DiamondStorage, facet common.Address, sel [4]byte) {
	fs := ds.FacetFunctionSelectors[facet]
	pos := ds.SelectorToFacetAndPosition[sel].FunctionSelectorIndex
	last := len(fs.FunctionSelectors) - 1
	if pos != last {
		moved := fs.FunctionSelectors[last]
		fs.FunctionSelectors[pos] = moved
		entry := ds.SelectorToFacetAndPosition[moved]
		entry.FunctionSelectorIndex = pos
		ds.SelectorToFacetAndPosition[moved] = entry
	}
	fs.FunctionSelectors = fs.FunctionSelectors[:last]
	delete(ds.SelectorToFacetAndPosition, sel)

	if len(fs.FunctionSelectors) > 0 {
		return
	}
	idx := fs.FacetAddressIndex
	lastFacet := len(ds.FacetAddresses) - 1
	if idx != lastFacet {
		moved := ds.FacetAddresses[lastFacet]
		ds.FacetAddresses[idx] = moved
		ds.FacetFunctionSelectors[moved].FacetAddressIndex = idx
	}
	ds.FacetAddresses = ds.FacetAddresses[:lastFacet]
	delete(ds.FacetFunctionSelectors, facet)
}

func initializeDiamondCut(env *Env, init common.Address, calldata []byte) error {
	if init == (common.Address{}) {
		if len(calldata) > 0 {
			return ErrInitZeroCalldata
		}
		return nil
	}
	if len(calldata) == 0 {
		return ErrInitEmptyCalldata
	}
	if init != env.Self && !env.Host.HasCode(init) {
		return ErrInitHasNoCode
	}
	if _, err := env.Host.DelegateCall(env, init, calldata); err != nil {
		var revert *Error
		if errors.As(err, &revert) && revert.Message != "" {
			return revert
		}
		return ErrInitReverted.WithDetails(map[string]interface{}{"cause": err.Error()})
	}
	return nil
}
