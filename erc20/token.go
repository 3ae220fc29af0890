// Package erc20 provides a minimal ERC-20 token contract for the ledger and
// a typed helper facets use to call tokens.
package erc20

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
)

var storagePosition = diamond.StoragePosition("erc20.token.storage")

// Token reverts
var (
	ErrInsufficientBalance   = diamond.Revert("ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = diamond.Revert("ERC20: insufficient allowance")
	ErrTransferToZero        = diamond.Revert("ERC20: transfer to the zero address")
	ErrTransferFromZero      = diamond.Revert("ERC20: transfer from the zero address")
	ErrApproveToZero         = diamond.Revert("ERC20: approve to the zero address")
	ErrMintToZero            = diamond.Revert("ERC20: mint to the zero address")
)

type tokenStorage struct {
	Balances    map[common.Address]*big.Int
	Allowances  map[common.Address]map[common.Address]*big.Int
	TotalSupply *big.Int
}

func newTokenStorage() *tokenStorage {
	return &tokenStorage{
		Balances:    make(map[common.Address]*big.Int),
		Allowances:  make(map[common.Address]map[common.Address]*big.Int),
		TotalSupply: new(big.Int),
	}
}

func (s *tokenStorage) Clone() diamond.Slot {
	c := &tokenStorage{
		Balances:    make(map[common.Address]*big.Int, len(s.Balances)),
		Allowances:  make(map[common.Address]map[common.Address]*big.Int, len(s.Allowances)),
		TotalSupply: new(big.Int).Set(s.TotalSupply),
	}
	for k, v := range s.Balances {
		c.Balances[k] = new(big.Int).Set(v)
	}
	for owner, spenders := range s.Allowances {
		m := make(map[common.Address]*big.Int, len(spenders))
		for k, v := range spenders {
			m[k] = new(big.Int).Set(v)
		}
		c.Allowances[owner] = m
	}
	return c
}

func (s *tokenStorage) balance(addr common.Address) *big.Int {
	if b, ok := s.Balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (s *tokenStorage) allowance(owner, spender common.Address) *big.Int {
	if a, ok := s.Allowances[owner][spender]; ok {
		return a
	}
	return new(big.Int)
}

// Token is a standard ERC-20 with an unrestricted mint
type Token struct {
	*diamond.Dispatcher

	name     string
	symbol   string
	decimals uint8
}

// NewToken creates token code with fixed metadata
func NewToken(name, symbol string, decimals uint8) *Token {
	t := &Token{name: name, symbol: symbol, decimals: decimals}
	t.Dispatcher = diamond.MustDispatcher(ABI, map[string]diamond.Handler{
		"name":         t.nameOf,
		"symbol":       t.symbolOf,
		"decimals":     t.decimalsOf,
		"totalSupply":  t.totalSupply,
		"balanceOf":    t.balanceOf,
		"allowance":    t.allowanceOf,
		"transfer":     t.transfer,
		"approve":      t.approve,
		"transferFrom": t.transferFrom,
		"mint":         t.mint,
	})
	return t
}

func load(env *diamond.Env) *tokenStorage {
	return diamond.LoadSlot(env, storagePosition, newTokenStorage)
}

func (t *Token) nameOf(*diamond.Env, []interface{}) ([]interface{}, error) {
	return []interface{}{t.name}, nil
}

func (t *Token) symbolOf(*diamond.Env, []interface{}) ([]interface{}, error) {
	return []interface{}{t.symbol}, nil
}

func (t *Token) decimalsOf(*diamond.Env, []interface{}) ([]interface{}, error) {
	return []interface{}{t.decimals}, nil
}

func (t *Token) totalSupply(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{new(big.Int).Set(load(env).TotalSupply)}, nil
}

func (t *Token) balanceOf(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{new(big.Int).Set(load(env).balance(diamond.Arg[common.Address](args, 0)))}, nil
}

func (t *Token) allowanceOf(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	owner := diamond.Arg[common.Address](args, 0)
	spender := diamond.Arg[common.Address](args, 1)
	return []interface{}{new(big.Int).Set(load(env).allowance(owner, spender))}, nil
}

func (t *Token) transfer(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	to := diamond.Arg[common.Address](args, 0)
	amount := diamond.Arg[*big.Int](args, 1)
	if err := move(env, env.Caller, to, amount); err != nil {
		return nil, err
	}
	return []interface{}{true}, nil
}

func (t *Token) approve(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	spender := diamond.Arg[common.Address](args, 0)
	amount := diamond.Arg[*big.Int](args, 1)
	if spender == (common.Address{}) {
		return nil, ErrApproveToZero
	}
	s := load(env)
	if s.Allowances[env.Caller] == nil {
		s.Allowances[env.Caller] = make(map[common.Address]*big.Int)
	}
	s.Allowances[env.Caller][spender] = new(big.Int).Set(amount)
	if err := diamond.EmitEvent(env, ABI, "Approval", env.Caller, spender, amount); err != nil {
		return nil, err
	}
	return []interface{}{true}, nil
}

func (t *Token) transferFrom(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	from := diamond.Arg[common.Address](args, 0)
	to := diamond.Arg[common.Address](args, 1)
	amount := diamond.Arg[*big.Int](args, 2)

	s := load(env)
	allowed := s.allowance(from, env.Caller)
	if allowed.Cmp(amount) < 0 {
		return nil, ErrInsufficientAllowance
	}
	if err := move(env, from, to, amount); err != nil {
		return nil, err
	}
	s = load(env)
	if s.Allowances[from] == nil {
		s.Allowances[from] = make(map[common.Address]*big.Int)
	}
	s.Allowances[from][env.Caller] = new(big.Int).Sub(allowed, amount)
	return []interface{}{true}, nil
}

func (t *Token) mint(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	to := diamond.Arg[common.Address](args, 0)
	amount := diamond.Arg[*big.Int](args, 1)
	if to == (common.Address{}) {
		return nil, ErrMintToZero
	}
	s := load(env)
	s.TotalSupply = new(big.Int).Add(s.TotalSupply, amount)
	s.Balances[to] = new(big.Int).Add(s.balance(to), amount)
	return nil, diamond.EmitEvent(env, ABI, "Transfer", common.Address{}, to, amount)
}

func move(env *diamond.Env, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) {
		return ErrTransferFromZero
	}
	if to == (common.Address{}) {
		return ErrTransferToZero
	}
	s := load(env)
	fromBalance := s.balance(from)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.Balances[from] = new(big.Int).Sub(fromBalance, amount)
	s.Balances[to] = new(big.Int).Add(s.balance(to), amount)
	return diamond.EmitEvent(env, ABI, "Transfer", from, to, amount)
}
