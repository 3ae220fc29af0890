// Package client is a typed Go client for a deployed diamond. It talks to
// any go-ethereum backend: the in-process chain or an ethclient connected
// to a node.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/facets/crosschain"
	"github.com/hashleap/diamond/facets/spotpayment"
	"github.com/hashleap/diamond/facets/subscription"
)

// Backend reads contract state and logs
type Backend interface {
	ethereum.ContractCaller
	ethereum.LogFilterer
}

// Transactor submits state-changing calls and waits for the receipt.
// A reverted transaction returns the receipt together with the revert.
type Transactor interface {
	From() common.Address
	Transact(ctx context.Context, to common.Address, value *big.Int, input []byte) (*types.Receipt, error)
}

// ErrNoTransactor is returned by write methods of a read-only client
var ErrNoTransactor = errors.New("client has no transactor")

// knownABIs resolves custom errors and events of every facet
var knownABIs = []*abi.ABI{
	diamond.DiamondCutABI,
	diamond.DiamondLoupeABI,
	diamond.OwnershipABI,
	subscription.ABI,
	spotpayment.ABI,
	crosschain.ABI,
}

// Diamond is a client bound to one diamond address
type Diamond struct {
	address    common.Address
	backend    Backend
	transactor Transactor
}

// Option configures a Diamond client
type Option func(*Diamond)

// WithTransactor enables the write methods
func WithTransactor(t Transactor) Option {
	return func(d *Diamond) {
		d.transactor = t
	}
}

// New creates a client for the diamond at address
func New(address common.Address, backend Backend, opts ...Option) *Diamond {
	d := &Diamond{address: address, backend: backend}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Address returns the diamond address
func (d *Diamond) Address() common.Address {
	return d.address
}

// call runs a read-only method and returns its unpacked outputs
func (d *Diamond) call(ctx context.Context, parsed *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &d.address, Data: input}
	if d.transactor != nil {
		msg.From = d.transactor.From()
	}
	ret, err := d.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, DecodeError(err)
	}
	out, err := parsed.Unpack(method, ret)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}

// transact submits a state-changing method
func (d *Diamond) transact(ctx context.Context, parsed *abi.ABI, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	if d.transactor == nil {
		return nil, ErrNoTransactor
	}
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	receipt, err := d.transactor.Transact(ctx, d.address, value, input)
	if err != nil {
		return receipt, DecodeError(err)
	}
	return receipt, nil
}

// DecodeError maps backend errors carrying revert data to *diamond.Error.
// Other errors are returned unchanged.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var revert *diamond.Error
	if errors.As(err, &revert) {
		return revert
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if data, decodeErr := hexutil.Decode(hexData); decodeErr == nil {
				return diamond.DecodeRevert(data, knownABIs...)
			}
		}
	}
	return err
}
