package diamond

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Contract is code deployed at a ledger address.
//
// Run executes a message call. input is the raw calldata (selector plus
// ABI-encoded arguments); the returned bytes are the ABI-encoded outputs.
// Returning an error reverts the whole transaction.
type Contract interface {
	Run(env *Env, input []byte) ([]byte, error)
}

// Slot is a namespaced storage record owned by one contract address.
// Clone must return a deep copy; the ledger clones committed slots before
// handing them to a transaction so that reverted transactions leave no trace.
type Slot interface {
	Clone() Slot
}

// Host is the execution environment a contract runs against.
// The in-process ledger implements it; every call into a Host happens
// inside a single atomic transaction.
type Host interface {
	// Timestamp returns the block timestamp in unix seconds.
	Timestamp() uint64

	// BlockNumber returns the number of the block being built.
	BlockNumber() uint64

	// HasCode reports whether a contract is deployed at addr.
	HasCode(addr common.Address) bool

	// Balance returns the native balance of addr.
	Balance(addr common.Address) *big.Int

	// Slot returns the mutable storage slot of addr at position, creating
	// it with init when absent.
	Slot(addr common.Address, position common.Hash, init func() Slot) Slot

	// Call sends value and input from one account to another. When the
	// target carries code it runs with from as the caller.
	Call(from, to common.Address, value *big.Int, input []byte) ([]byte, error)

	// DelegateCall runs the code deployed at code inside env's storage
	// context, keeping caller and value.
	DelegateCall(env *Env, code common.Address, input []byte) ([]byte, error)

	// Emit appends a log entry for addr.
	Emit(addr common.Address, topics []common.Hash, data []byte)
}

// Env is a call frame
type Env struct {
	Host Host

	// Self is the storage context (msg.address). For delegate calls this is
	// the diamond, not the facet.
	Self common.Address

	// Code is the address whose code is running.
	Code common.Address

	// Caller is msg.sender.
	Caller common.Address

	// Value is msg.value; never nil.
	Value *big.Int
}

// Delegate derives the frame a delegate call into code runs in
func (e *Env) Delegate(code common.Address) *Env {
	return &Env{
		Host:   e.Host,
		Self:   e.Self,
		Code:   code,
		Caller: e.Caller,
		Value:  e.Value,
	}
}

// LoadSlot fetches the typed slot of env's storage context at position
func LoadSlot[T Slot](env *Env, position common.Hash, init func() T) T {
	return env.Host.Slot(env.Self, position, func() Slot { return init() }).(T)
}

// StoragePosition derives a namespaced storage position from a label
func StoragePosition(label string) common.Hash {
	return keccakHash(label)
}
