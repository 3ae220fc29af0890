package erc20

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
)

// Caller invokes a token from inside a running contract. Calls are made
// with the contract's storage address (env.Self) as msg.sender, so a
// facet spends the diamond's allowances.
type Caller struct {
	host  diamond.Host
	from  common.Address
	token common.Address
}

// At binds a caller to token for the contract running in env
func At(env *diamond.Env, token common.Address) *Caller {
	return &Caller{host: env.Host, from: env.Self, token: token}
}

// Address returns the token address
func (c *Caller) Address() common.Address {
	return c.token
}

// BalanceOf returns the token balance of account
func (c *Caller) BalanceOf(account common.Address) (*big.Int, error) {
	out, err := c.call("balanceOf", account)
	if err != nil {
		return nil, err
	}
	return diamond.Arg[*big.Int](out, 0), nil
}

// Allowance returns how much spender may pull from owner
func (c *Caller) Allowance(owner, spender common.Address) (*big.Int, error) {
	out, err := c.call("allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return diamond.Arg[*big.Int](out, 0), nil
}

// Transfer sends amount from the calling contract to to
func (c *Caller) Transfer(to common.Address, amount *big.Int) error {
	return c.callBool("transfer", to, amount)
}

// TransferFrom moves amount from from to to using the calling contract's
// allowance
func (c *Caller) TransferFrom(from, to common.Address, amount *big.Int) error {
	return c.callBool("transferFrom", from, to, amount)
}

// Approve sets spender's allowance over the calling contract's tokens
func (c *Caller) Approve(spender common.Address, amount *big.Int) error {
	return c.callBool("approve", spender, amount)
}

func (c *Caller) callBool(method string, args ...interface{}) error {
	out, err := c.call(method, args...)
	if err != nil {
		return err
	}
	if ok := diamond.Arg[bool](out, 0); !ok {
		return diamond.Revertf("ERC20: %s returned false", method)
	}
	return nil
}

func (c *Caller) call(method string, args ...interface{}) ([]interface{}, error) {
	input, err := ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	ret, err := c.host.Call(c.from, c.token, new(big.Int), input)
	if err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return nil, diamond.Revertf("ERC20: call to non-contract %s", c.token.Hex())
	}
	out, err := ABI.Unpack(method, ret)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}
