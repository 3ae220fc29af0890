package diamond

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Error represents a reverted contract call.
//
// A revert carries either a reason string (Solidity's Error(string)) or a
// custom error identified by its name. Both travel as ABI-encoded revert
// data so that a node and the in-process ledger surface identical errors.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a revert with the same code and message.
// Details are ignored.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Revert error codes
const (
	ErrCodeReverted    = "execution reverted"
	ErrCodeCustom      = "custom error"
	ErrCodePanic       = "panic"
	ErrCodeInvalidCall = "invalid call"
)

// Revert builds a reason-string revert.
func Revert(reason string) *Error {
	return &Error{Code: ErrCodeReverted, Message: reason}
}

// Revertf builds a reason-string revert from a format.
func Revertf(format string, args ...interface{}) *Error {
	return Revert(fmt.Sprintf(format, args...))
}

// CustomError builds a revert for a parameterless custom error such as
// PlanNotFound().
func CustomError(name string) *Error {
	return &Error{Code: ErrCodeCustom, Message: name}
}

// NewError creates a new revert error with details
func NewError(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	return NewError(e.Code, e.Message, details)
}

// Routing, cut and ownership reverts
var (
	ErrNotContractOwner   = Revert("LibDiamond: Must be contract owner")
	ErrFunctionNotFound   = Revert("Diamond: Function does not exist")
	ErrNoSelectors        = Revert("LibDiamondCut: No selectors in facet to cut")
	ErrAddFacetZero       = Revert("LibDiamondCut: Add facet can't be address(0)")
	ErrReplaceFacetZero   = Revert("LibDiamondCut: Replace facet can't be address(0)")
	ErrRemoveFacetNotZero = Revert("LibDiamondCut: Remove facet address must be address(0)")
	ErrFunctionExists     = Revert("LibDiamondCut: Can't add function that already exists")
	ErrReplaceSame        = Revert("LibDiamondCut: Can't replace function with same function")
	ErrReplaceMissing     = Revert("LibDiamondCut: Can't replace function that doesn't exist")
	ErrReplaceImmutable   = Revert("LibDiamondCut: Can't replace immutable function")
	ErrRemoveMissing      = Revert("LibDiamondCut: Can't remove function that doesn't exist")
	ErrRemoveImmutable    = Revert("LibDiamondCut: Can't remove immutable function")
	ErrIncorrectAction    = Revert("LibDiamondCut: Incorrect FacetCutAction")
	ErrFacetHasNoCode     = Revert("LibDiamondCut: New facet has no code")
	ErrInitZeroCalldata   = Revert("LibDiamondCut: _init is address(0) but_calldata is not empty")
	ErrInitEmptyCalldata  = Revert("LibDiamondCut: _calldata is empty but _init is not address(0)")
	ErrInitHasNoCode      = Revert("LibDiamondCut: _init address has no code")
	ErrInitReverted       = Revert("LibDiamondCut: _init function reverted")
	ErrOwnerZeroAddress   = Revert("Ownable: new owner is the zero address")
	ErrNonPayable         = Revert("Diamond: function is not payable")
)

var (
	errorSigID = crypto.Keccak256([]byte("Error(string)"))[:4]
	panicSigID = crypto.Keccak256([]byte("Panic(uint256)"))[:4]
)

// RevertData encodes err the way the EVM returns revert payloads.
func RevertData(err error) []byte {
	var e *Error
	if !errors.As(err, &e) {
		e = Revert(err.Error())
	}
	switch e.Code {
	case ErrCodeCustom:
		return crypto.Keccak256([]byte(e.Message + "()"))[:4]
	default:
		str, _ := abi.NewType("string", "", nil)
		packed, packErr := abi.Arguments{{Type: str}}.Pack(e.Message)
		if packErr != nil {
			return append([]byte{}, errorSigID...)
		}
		return append(append([]byte{}, errorSigID...), packed...)
	}
}

// DecodeRevert turns revert data back into an *Error. Custom errors are
// resolved against the supplied ABIs; unknown selectors are reported with
// their hex id.
func DecodeRevert(data []byte, abis ...*abi.ABI) *Error {
	if len(data) < 4 {
		return Revert("")
	}
	switch {
	case bytes.Equal(data[:4], errorSigID):
		reason, err := abi.UnpackRevert(data)
		if err != nil {
			return NewError(ErrCodeInvalidCall, "malformed revert reason", map[string]interface{}{"data": fmt.Sprintf("%x", data)})
		}
		return Revert(reason)
	case bytes.Equal(data[:4], panicSigID):
		code := new(big.Int).SetBytes(data[4:])
		return NewError(ErrCodePanic, fmt.Sprintf("0x%x", code), nil)
	}
	for _, parsed := range abis {
		if parsed == nil {
			continue
		}
		for name, abiErr := range parsed.Errors {
			if bytes.Equal(abiErr.ID[:4], data[:4]) {
				return CustomError(name)
			}
		}
	}
	return NewError(ErrCodeCustom, fmt.Sprintf("0x%x", data[:4]), nil)
}
