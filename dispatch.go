package diamond

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Handler implements one ABI method. args are the unpacked inputs in
// declaration order; the returned values are packed as the method outputs.
type Handler func(env *Env, args []interface{}) ([]interface{}, error)

// Dispatcher routes calldata to handlers by selector.
// It is the Contract implementation shared by every facet.
type Dispatcher struct {
	abi      *abi.ABI
	handlers map[[4]byte]dispatchEntry
	receive  Handler
}

type dispatchEntry struct {
	method  abi.Method
	handler Handler
}

// NewDispatcher binds handlers to the methods of parsed.
// Handlers are keyed by the go-ethereum method name, so the second
// overload of "transfer" is "transfer0". Every ABI method must have a
// handler and every handler must name an ABI method.
func NewDispatcher(parsed *abi.ABI, handlers map[string]Handler) (*Dispatcher, error) {
	d := &Dispatcher{
		abi:      parsed,
		handlers: make(map[[4]byte]dispatchEntry, len(handlers)),
	}
	for name, method := range parsed.Methods {
		h, ok := handlers[name]
		if !ok {
			return nil, fmt.Errorf("no handler for method %s", method.Sig)
		}
		var id [4]byte
		copy(id[:], method.ID)
		d.handlers[id] = dispatchEntry{method: method, handler: h}
	}
	for name := range handlers {
		if _, ok := parsed.Methods[name]; !ok {
			return nil, fmt.Errorf("handler %s has no ABI method", name)
		}
	}
	return d, nil
}

// MustDispatcher is NewDispatcher that panics on a binding mismatch
func MustDispatcher(parsed *abi.ABI, handlers map[string]Handler) *Dispatcher {
	d, err := NewDispatcher(parsed, handlers)
	if err != nil {
		panic(fmt.Sprintf("diamond: %v", err))
	}
	return d
}

// OnReceive installs the handler for calls with empty calldata.
// Without one, plain value transfers revert.
func (d *Dispatcher) OnReceive(h Handler) *Dispatcher {
	d.receive = h
	return d
}

// ABI returns the contract interface
func (d *Dispatcher) ABI() *abi.ABI {
	return d.abi
}

// Run implements Contract
func (d *Dispatcher) Run(env *Env, input []byte) ([]byte, error) {
	if len(input) == 0 {
		if d.receive == nil {
			return nil, Revert("")
		}
		_, err := d.receive(env, nil)
		return nil, err
	}
	if len(input) < 4 {
		return nil, ErrFunctionNotFound
	}

	var id [4]byte
	copy(id[:], input[:4])
	entry, ok := d.handlers[id]
	if !ok {
		return nil, ErrFunctionNotFound
	}
	if !IsZero(env.Value) && !isPayable(entry.method) {
		return nil, ErrNonPayable
	}

	args, err := entry.method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, NewError(ErrCodeInvalidCall, fmt.Sprintf("%s: %v", entry.method.Sig, err), nil)
	}

	outs, err := entry.handler(env, args)
	if err != nil {
		var revert *Error
		if errors.As(err, &revert) {
			return nil, revert
		}
		return nil, Revert(err.Error())
	}

	return entry.method.Outputs.Pack(outs...)
}

func isPayable(m abi.Method) bool {
	return m.Payable || m.StateMutability == "payable"
}

// Arg converts an unpacked argument to T.
// Tuple arguments arrive as anonymous structs and are converted field by
// field through abi.ConvertType.
func Arg[T any](args []interface{}, i int) T {
	var zero T
	if i >= len(args) {
		return zero
	}
	if v, ok := args[i].(T); ok {
		return v
	}
	return *abi.ConvertType(args[i], new(T)).(*T)
}
