package diamond

import (
	"github.com/ethereum/go-ethereum/common"
)

// Diamond is the proxy contract. It owns all persistent state; every call
// carrying a selector is routed to the facet registered for it and runs in
// the diamond's storage context.
type Diamond struct{}

// NewDiamond returns the proxy code
func NewDiamond() *Diamond {
	return &Diamond{}
}

// Run implements Contract. Empty calldata is a plain native deposit.
func (d *Diamond) Run(env *Env, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if len(input) < 4 {
		return nil, ErrFunctionNotFound
	}

	var sel [4]byte
	copy(sel[:], input[:4])
	facet := FacetAddress(env, sel)
	if facet == (common.Address{}) {
		return nil, ErrFunctionNotFound.WithDetails(map[string]interface{}{"selector": SelectorHex(sel)})
	}
	return env.Host.DelegateCall(env, facet, input)
}

// Constructor returns the deployment routine of a diamond: it records the
// owner and routes diamondCut to cutFacet.
func Constructor(owner, cutFacet common.Address) func(env *Env) error {
	return func(env *Env) error {
		if err := SetContractOwner(env, owner); err != nil {
			return err
		}
		var sel [4]byte
		copy(sel[:], DiamondCutABI.Methods["diamondCut"].ID)
		return DiamondCut(env, []FacetCut{{
			FacetAddress:      cutFacet,
			Action:            uint8(Add),
			FunctionSelectors: [][4]byte{sel},
		}}, common.Address{}, nil)
	}
}
