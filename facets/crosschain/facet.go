// Package crosschain implements token payments to other chains through
// Axelar gateways. The diamond takes custody of the tokens, approves the
// source chain's gateway and asks it to deliver them to the recipient on
// the target chain.
package crosschain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/erc20"
)

// Facet is the CrossChainPaymentFacet contract
type Facet struct {
	*diamond.Dispatcher
}

// NewFacet creates the facet code
func NewFacet() *Facet {
	f := &Facet{}
	f.Dispatcher = diamond.MustDispatcher(ABI, map[string]diamond.Handler{
		"setAxelarContract": f.setAxelarContract,
		"getAxelarContract": f.getAxelarContract,
		"transfer":          f.transfer,
		"getTotalBridged":   f.getTotalBridged,
	})
	return f
}

func (f *Facet) setAxelarContract(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	chain := diamond.Arg[string](args, 0)
	gateway := diamond.Arg[common.Address](args, 1)
	if chain == "" {
		return nil, ErrEmptyChain
	}
	load(env).Gateways[chain] = gateway
	return nil, diamond.EmitEvent(env, ABI, "AxelarContractSet", chain, gateway)
}

func (f *Facet) getAxelarContract(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).Gateways[diamond.Arg[string](args, 0)]}, nil
}

func (f *Facet) getTotalBridged(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	total, ok := load(env).Totals[diamond.Arg[common.Address](args, 0)]
	if !ok {
		total = new(big.Int)
	}
	return []interface{}{new(big.Int).Set(total)}, nil
}

func (f *Facet) transfer(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	sourceChain := diamond.Arg[string](args, 0)
	targetChain := diamond.Arg[string](args, 1)
	recipient := diamond.Arg[common.Address](args, 2)
	symbol := diamond.Arg[string](args, 3)
	amount := diamond.Arg[*big.Int](args, 4)
	token := diamond.Arg[common.Address](args, 5)
	paymentRef := diamond.Arg[string](args, 6)
	tags := diamond.Arg[[]string](args, 7)

	s := load(env)
	gateway, ok := s.Gateways[sourceChain]
	if !ok || gateway == (common.Address{}) {
		return nil, ErrGatewayNotSet.WithDetails(map[string]interface{}{"chain": sourceChain})
	}
	if token == (common.Address{}) || !env.Host.HasCode(token) {
		return nil, ErrWrongTokenContract
	}
	if recipient == (common.Address{}) {
		return nil, ErrZeroRecipient
	}
	if amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	total, ok := s.Totals[token]
	if !ok {
		total = new(big.Int)
	}
	s.Totals[token] = new(big.Int).Add(total, amount)

	tok := erc20.At(env, token)
	if err := tok.TransferFrom(env.Caller, env.Self, amount); err != nil {
		return nil, err
	}
	if err := tok.Approve(gateway, amount); err != nil {
		return nil, err
	}
	input, err := GatewayABI.Pack("sendToken", targetChain, recipient.Hex(), symbol, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack sendToken: %w", err)
	}
	if _, err := env.Host.Call(env.Self, gateway, new(big.Int), input); err != nil {
		return nil, err
	}

	return nil, diamond.EmitEvent(env, ABI, "TransferSuccess",
		env.Caller,
		recipient,
		token,
		sourceChain,
		targetChain,
		symbol,
		amount,
		new(big.Int).SetUint64(env.Host.Timestamp()),
		paymentRef,
		tags,
	)
}
