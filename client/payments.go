package client

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashleap/diamond/facets/crosschain"
	"github.com/hashleap/diamond/facets/spotpayment"
)

// SpotPayment is a one-off payment through the diamond
type SpotPayment struct {
	Recipient   common.Address
	Token       common.Address
	Amount      *big.Int
	TokenType   spotpayment.TokenType
	Tags        []string
	PaymentRef  string
	PaymentType string

	// Value is the native amount attached; it defaults to Amount for
	// native payments
	Value *big.Int
}

// Pay sends a spot payment
func (d *Diamond) Pay(ctx context.Context, p SpotPayment) (*types.Receipt, error) {
	value := p.Value
	if value == nil && p.TokenType == spotpayment.Native {
		value = p.Amount
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	if p.PaymentType == "" {
		return d.transact(ctx, spotpayment.ABI, value, "transfer", p.Recipient, p.Token, p.Amount, uint8(p.TokenType), tags, p.PaymentRef)
	}
	return d.transact(ctx, spotpayment.ABI, value, "transfer0", p.Recipient, p.Token, p.Amount, uint8(p.TokenType), tags, p.PaymentRef, p.PaymentType)
}

// CrossChainPayment is a token payment to another chain
type CrossChainPayment struct {
	SourceChain   string
	TargetChain   string
	Recipient     common.Address
	TokenSymbol   string
	Amount        *big.Int
	TokenContract common.Address
	PaymentRef    string
	Tags          []string
}

// PayCrossChain sends a cross-chain payment
func (d *Diamond) PayCrossChain(ctx context.Context, p CrossChainPayment) (*types.Receipt, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return d.transact(ctx, crosschain.ABI, nil, "transfer",
		p.SourceChain, p.TargetChain, p.Recipient, p.TokenSymbol, p.Amount, p.TokenContract, p.PaymentRef, tags)
}

// SetAxelarContract registers the gateway for chain
func (d *Diamond) SetAxelarContract(ctx context.Context, chain string, gateway common.Address) (*types.Receipt, error) {
	return d.transact(ctx, crosschain.ABI, nil, "setAxelarContract", chain, gateway)
}

// GetTotalTransferred returns the spot payment volume of token
func (d *Diamond) GetTotalTransferred(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := d.call(ctx, spotpayment.ABI, "getTotalTransferred", token)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// SetTokenAddress registers token under symbol in the spot payment registry
func (d *Diamond) SetTokenAddress(ctx context.Context, symbol string, token common.Address) (*types.Receipt, error) {
	return d.transact(ctx, spotpayment.ABI, nil, "setTokenAddress", symbol, token)
}

// GetTokenAddress resolves a registered token symbol
func (d *Diamond) GetTokenAddress(ctx context.Context, symbol string) (common.Address, error) {
	out, err := d.call(ctx, spotpayment.ABI, "getTokenAddress", symbol)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// GetAxelarContract returns the gateway registered for chain
func (d *Diamond) GetAxelarContract(ctx context.Context, chain string) (common.Address, error) {
	out, err := d.call(ctx, crosschain.ABI, "getAxelarContract", chain)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// GetTotalBridged returns the cross-chain volume of token
func (d *Diamond) GetTotalBridged(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := d.call(ctx, crosschain.ABI, "getTotalBridged", token)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}
