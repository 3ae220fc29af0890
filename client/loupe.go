package client

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	diamond "github.com/hashleap/diamond"
)

// ============================================================================
// Loupe
// ============================================================================

// Facets returns every facet with its selectors
func (d *Diamond) Facets(ctx context.Context) ([]diamond.Facet, error) {
	out, err := d.call(ctx, diamond.DiamondLoupeABI, "facets")
	if err != nil {
		return nil, err
	}
	facets, ok := abi.ConvertType(out[0], new([]diamond.Facet)).(*[]diamond.Facet)
	if !ok {
		return nil, fmt.Errorf("unexpected facets output %T", out[0])
	}
	return *facets, nil
}

// FacetAddresses returns the facet addresses in registration order
func (d *Diamond) FacetAddresses(ctx context.Context) ([]common.Address, error) {
	out, err := d.call(ctx, diamond.DiamondLoupeABI, "facetAddresses")
	if err != nil {
		return nil, err
	}
	return out[0].([]common.Address), nil
}

// FacetFunctionSelectors returns the selectors routed to facet
func (d *Diamond) FacetFunctionSelectors(ctx context.Context, facet common.Address) ([][4]byte, error) {
	out, err := d.call(ctx, diamond.DiamondLoupeABI, "facetFunctionSelectors", facet)
	if err != nil {
		return nil, err
	}
	return out[0].([][4]byte), nil
}

// FacetAddress returns the facet serving sel, or the zero address
func (d *Diamond) FacetAddress(ctx context.Context, sel [4]byte) (common.Address, error) {
	out, err := d.call(ctx, diamond.DiamondLoupeABI, "facetAddress", sel)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// SupportsInterface queries ERC-165 support
func (d *Diamond) SupportsInterface(ctx context.Context, id [4]byte) (bool, error) {
	out, err := d.call(ctx, diamond.DiamondLoupeABI, "supportsInterface", id)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// ============================================================================
// Ownership and cuts
// ============================================================================

// Owner returns the diamond owner
func (d *Diamond) Owner(ctx context.Context) (common.Address, error) {
	out, err := d.call(ctx, diamond.OwnershipABI, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// TransferOwnership hands the diamond to newOwner
func (d *Diamond) TransferOwnership(ctx context.Context, newOwner common.Address) (*types.Receipt, error) {
	return d.transact(ctx, diamond.OwnershipABI, nil, "transferOwnership", newOwner)
}

// DiamondCut applies cuts and runs init with calldata
func (d *Diamond) DiamondCut(ctx context.Context, cuts []diamond.FacetCut, init common.Address, calldata []byte) (*types.Receipt, error) {
	return d.transact(ctx, diamond.DiamondCutABI, nil, "diamondCut", cuts, init, calldata)
}
