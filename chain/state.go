package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	diamond "github.com/hashleap/diamond"
)

// maxCallDepth mirrors the EVM call-depth limit
const maxCallDepth = 1024

// ErrCallDepth reverts calls nested too deeply
var ErrCallDepth = diamond.Revert("max call depth exceeded")

// ErrInsufficientFunds reverts value transfers the sender cannot cover
var ErrInsufficientFunds = diamond.Revert("insufficient funds for transfer")

// worldState is the committed ledger state
type worldState struct {
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	code     map[common.Address]diamond.Contract
	storage  map[common.Address]map[common.Hash]diamond.Slot
}

func newWorldState() *worldState {
	return &worldState{
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		code:     make(map[common.Address]diamond.Contract),
		storage:  make(map[common.Address]map[common.Hash]diamond.Slot),
	}
}

// frame is a copy-on-write overlay over its parent (or the world state at
// the top). Every message call runs in its own frame; a successful call
// merges into its parent, a failed one is dropped.
type frame struct {
	parent *frame
	world  *worldState
	block  blockContext
	depth  int

	balances map[common.Address]*big.Int
	code     map[common.Address]diamond.Contract
	storage  map[common.Address]map[common.Hash]diamond.Slot
	logs     []*types.Log
}

type blockContext struct {
	number    uint64
	timestamp uint64
}

func newFrame(world *worldState, block blockContext) *frame {
	return &frame{
		world:    world,
		block:    block,
		balances: make(map[common.Address]*big.Int),
		code:     make(map[common.Address]diamond.Contract),
		storage:  make(map[common.Address]map[common.Hash]diamond.Slot),
	}
}

func (f *frame) child() *frame {
	c := newFrame(f.world, f.block)
	c.parent = f
	c.depth = f.depth + 1
	return c
}

// merge folds a successful child frame into f
func (f *frame) merge(c *frame) {
	for k, v := range c.balances {
		f.balances[k] = v
	}
	for k, v := range c.code {
		f.code[k] = v
	}
	for addr, slots := range c.storage {
		if f.storage[addr] == nil {
			f.storage[addr] = make(map[common.Hash]diamond.Slot, len(slots))
		}
		for pos, slot := range slots {
			f.storage[addr][pos] = slot
		}
	}
	f.logs = append(f.logs, c.logs...)
}

// commit writes a top-level frame into the world state
func (f *frame) commit() {
	for k, v := range f.balances {
		f.world.balances[k] = v
	}
	for k, v := range f.code {
		f.world.code[k] = v
	}
	for addr, slots := range f.storage {
		if f.world.storage[addr] == nil {
			f.world.storage[addr] = make(map[common.Hash]diamond.Slot, len(slots))
		}
		for pos, slot := range slots {
			f.world.storage[addr][pos] = slot
		}
	}
}

func (f *frame) lookupSlot(addr common.Address, pos common.Hash) (diamond.Slot, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if slot, ok := cur.storage[addr][pos]; ok {
			return slot, true
		}
	}
	slot, ok := f.world.storage[addr][pos]
	return slot, ok
}

func (f *frame) codeAt(addr common.Address) diamond.Contract {
	for cur := f; cur != nil; cur = cur.parent {
		if c, ok := cur.code[addr]; ok {
			return c
		}
	}
	return f.world.code[addr]
}

func (f *frame) setBalance(addr common.Address, v *big.Int) {
	f.balances[addr] = v
}

func (f *frame) transfer(from, to common.Address, amount *big.Int) error {
	if diamond.IsZero(amount) {
		return nil
	}
	fromBalance := f.Balance(from)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds.WithDetails(map[string]interface{}{
			"account": from.Hex(),
			"balance": fromBalance.String(),
			"amount":  amount.String(),
		})
	}
	f.setBalance(from, new(big.Int).Sub(fromBalance, amount))
	f.setBalance(to, new(big.Int).Add(f.Balance(to), amount))
	return nil
}

// ============================================================================
// diamond.Host
// ============================================================================

func (f *frame) Timestamp() uint64 {
	return f.block.timestamp
}

func (f *frame) BlockNumber() uint64 {
	return f.block.number
}

func (f *frame) HasCode(addr common.Address) bool {
	return f.codeAt(addr) != nil
}

func (f *frame) Balance(addr common.Address) *big.Int {
	for cur := f; cur != nil; cur = cur.parent {
		if b, ok := cur.balances[addr]; ok {
			return new(big.Int).Set(b)
		}
	}
	if b, ok := f.world.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Slot returns a frame-local copy of the slot. Slots obtained before a
// nested call that touches the same position must be fetched again
// afterwards.
func (f *frame) Slot(addr common.Address, pos common.Hash, init func() diamond.Slot) diamond.Slot {
	if slot, ok := f.storage[addr][pos]; ok {
		return slot
	}
	var slot diamond.Slot
	if existing, ok := f.lookupSlot(addr, pos); ok {
		slot = existing.Clone()
	} else {
		slot = init()
	}
	if f.storage[addr] == nil {
		f.storage[addr] = make(map[common.Hash]diamond.Slot)
	}
	f.storage[addr][pos] = slot
	return slot
}

func (f *frame) Call(from, to common.Address, value *big.Int, input []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if f.depth >= maxCallDepth {
		return nil, ErrCallDepth
	}
	c := f.child()
	if err := c.transfer(from, to, value); err != nil {
		return nil, err
	}
	ret, err := c.run(&diamond.Env{Self: to, Code: to, Caller: from, Value: value}, input)
	if err != nil {
		return nil, err
	}
	f.merge(c)
	return ret, nil
}

func (f *frame) DelegateCall(env *diamond.Env, code common.Address, input []byte) ([]byte, error) {
	if f.depth >= maxCallDepth {
		return nil, ErrCallDepth
	}
	c := f.child()
	ret, err := c.run(env.Delegate(code), input)
	if err != nil {
		return nil, err
	}
	f.merge(c)
	return ret, nil
}

func (f *frame) Emit(addr common.Address, topics []common.Hash, data []byte) {
	f.logs = append(f.logs, &types.Log{
		Address: addr,
		Topics:  append([]common.Hash(nil), topics...),
		Data:    append([]byte(nil), data...),
	})
}

// run executes the code at env.Code in this frame. Calls to accounts
// without code succeed with empty output, as on Ethereum.
func (f *frame) run(env *diamond.Env, input []byte) ([]byte, error) {
	env.Host = f
	code := f.codeAt(env.Code)
	if code == nil {
		return nil, nil
	}
	return code.Run(env, input)
}
