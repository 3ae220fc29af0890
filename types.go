package diamond

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// FacetCutAction selects what a cut entry does to its selectors
type FacetCutAction uint8

const (
	Add FacetCutAction = iota
	Replace
	Remove
)

func (a FacetCutAction) String() string {
	switch a {
	case Add:
		return "add"
	case Replace:
		return "replace"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// ParseFacetCutAction parses "add", "replace" or "remove" (case-insensitive)
func ParseFacetCutAction(s string) (FacetCutAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return Add, nil
	case "replace":
		return Replace, nil
	case "remove":
		return Remove, nil
	}
	return 0, fmt.Errorf("unknown facet cut action: %q", s)
}

// FacetCut is one entry of a diamondCut batch. Field names follow the ABI
// tuple components so values pack and unpack without conversion.
type FacetCut struct {
	FacetAddress      common.Address
	Action            uint8
	FunctionSelectors [][4]byte
}

// Facet is a loupe record: a facet address and the selectors routed to it
type Facet struct {
	FacetAddress      common.Address
	FunctionSelectors [][4]byte
}

// SelectorHex renders a selector as 0x-prefixed hex
func SelectorHex(sel [4]byte) string {
	return "0x" + hex.EncodeToString(sel[:])
}

// ParseSelector parses a 0x-prefixed (or bare) 4-byte hex selector
func ParseSelector(s string) ([4]byte, error) {
	var sel [4]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	if len(raw) != 4 {
		return sel, fmt.Errorf("invalid selector %q: want 4 bytes, got %d", s, len(raw))
	}
	copy(sel[:], raw)
	return sel, nil
}
