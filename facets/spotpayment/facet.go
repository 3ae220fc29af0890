// Package spotpayment implements one-off payments routed through the
// diamond, in the native currency or an ERC-20 token.
package spotpayment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/erc20"
)

// TokenType selects the payment currency
type TokenType uint8

const (
	Native TokenType = 0
	ERC20  TokenType = 1
)

func (t TokenType) String() string {
	switch t {
	case Native:
		return "native"
	case ERC20:
		return "erc20"
	default:
		return "unknown"
	}
}

// MaxOverpayPercent bounds the native value accepted above the amount.
// The excess within the bound is refunded.
const MaxOverpayPercent = 110

// DefaultPaymentType is reported when the caller does not name one
const DefaultPaymentType = "spot"

// Facet is the SpotPaymentFacet contract
type Facet struct {
	*diamond.Dispatcher
}

// NewFacet creates the facet code
func NewFacet() *Facet {
	f := &Facet{}
	f.Dispatcher = diamond.MustDispatcher(ABI, map[string]diamond.Handler{
		"transfer":            f.transfer,
		"transfer0":           f.transferWithType,
		"setTokenAddress":     f.setTokenAddress,
		"getTokenAddress":     f.getTokenAddress,
		"getTotalTransferred": f.getTotalTransferred,
	})
	return f
}

// Payment is a decoded transfer request
type Payment struct {
	Recipient   common.Address
	Token       common.Address
	Amount      *big.Int
	TokenType   TokenType
	Tags        []string
	PaymentRef  string
	PaymentType string
}

func paymentFromArgs(args []interface{}) Payment {
	return Payment{
		Recipient:   diamond.Arg[common.Address](args, 0),
		Token:       diamond.Arg[common.Address](args, 1),
		Amount:      diamond.Arg[*big.Int](args, 2),
		TokenType:   TokenType(diamond.Arg[uint8](args, 3)),
		Tags:        diamond.Arg[[]string](args, 4),
		PaymentRef:  diamond.Arg[string](args, 5),
		PaymentType: DefaultPaymentType,
	}
}

func (f *Facet) transfer(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return nil, pay(env, paymentFromArgs(args))
}

func (f *Facet) transferWithType(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	p := paymentFromArgs(args)
	if paymentType := diamond.Arg[string](args, 6); paymentType != "" {
		p.PaymentType = paymentType
	}
	return nil, pay(env, p)
}

func pay(env *diamond.Env, p Payment) error {
	if p.Recipient == (common.Address{}) {
		return ErrZeroRecipient
	}
	if p.Recipient == env.Caller {
		return ErrSameAccount
	}
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	var err error
	switch p.TokenType {
	case Native:
		p.Token = common.Address{}
		err = payNative(env, p)
	case ERC20:
		err = payToken(env, p)
	default:
		return ErrInvalidTokenType
	}
	if err != nil {
		return err
	}

	return diamond.EmitEvent(env, ABI, "TransferSuccess",
		env.Caller,
		p.Recipient,
		p.Token,
		p.TokenType.String(),
		p.Tags,
		p.Amount,
		new(big.Int).SetUint64(env.Host.Timestamp()),
		p.PaymentRef,
		p.PaymentType,
	)
}

// payNative forwards amount to the recipient and refunds the rest of the
// attached value
func payNative(env *diamond.Env, p Payment) error {
	value := env.Value
	if diamond.IsZero(value) {
		return ErrNoValue
	}
	if value.Cmp(p.Amount) < 0 {
		return ErrInsufficientValue
	}
	limit := new(big.Int).Mul(p.Amount, big.NewInt(MaxOverpayPercent))
	limit.Quo(limit, big.NewInt(100))
	if value.Cmp(limit) > 0 {
		return ErrExcessValue
	}

	load(env).addTotal(common.Address{}, p.Amount)

	if _, err := env.Host.Call(env.Self, p.Recipient, p.Amount, nil); err != nil {
		return err
	}
	if refund := new(big.Int).Sub(value, p.Amount); refund.Sign() > 0 {
		if _, err := env.Host.Call(env.Self, env.Caller, refund, nil); err != nil {
			return err
		}
	}
	return nil
}

func payToken(env *diamond.Env, p Payment) error {
	if !diamond.IsZero(env.Value) {
		return ErrUnexpectedValue
	}
	if p.Token == (common.Address{}) || !env.Host.HasCode(p.Token) {
		return ErrWrongTokenContract
	}

	tok := erc20.At(env, p.Token)
	allowance, err := tok.Allowance(env.Caller, env.Self)
	if err != nil {
		return err
	}
	if allowance.Cmp(p.Amount) < 0 {
		return ErrAllowance.WithDetails(map[string]interface{}{
			"allowance": allowance.String(),
			"amount":    p.Amount.String(),
		})
	}
	balance, err := tok.BalanceOf(env.Caller)
	if err != nil {
		return err
	}
	if balance.Cmp(p.Amount) < 0 {
		return ErrInsufficientFunds
	}

	load(env).addTotal(p.Token, p.Amount)
	return tok.TransferFrom(env.Caller, p.Recipient, p.Amount)
}

// ============================================================================
// Token registry
// ============================================================================

func (f *Facet) setTokenAddress(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	symbol := diamond.Arg[string](args, 0)
	token := diamond.Arg[common.Address](args, 1)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	load(env).TokenAddresses[symbol] = token
	return nil, diamond.EmitEvent(env, ABI, "TokenAddressSet", symbol, token)
}

func (f *Facet) getTokenAddress(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).TokenAddresses[diamond.Arg[string](args, 0)]}, nil
}

func (f *Facet) getTotalTransferred(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).total(diamond.Arg[common.Address](args, 0))}, nil
}
