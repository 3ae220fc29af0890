// Package selectors derives function-selector tables from contract
// interfaces and composes them into diamond cut proposals.
package selectors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	diamond "github.com/hashleap/diamond"
)

// Initializer is the signature excluded from every table: facets may
// carry an init(bytes) that must never be routed.
const Initializer = "init(bytes)"

// Entry pairs a selector with its canonical signature
type Entry struct {
	Selector  [4]byte
	Signature string
	Name      string
}

// Table is an ordered set of selectors
type Table struct {
	entries []Entry
}

// FromABI builds the table of every method of parsed except the
// initializer, ordered by canonical signature.
func FromABI(parsed *abi.ABI) Table {
	entries := make([]Entry, 0, len(parsed.Methods))
	for _, method := range parsed.Methods {
		if method.Sig == Initializer {
			continue
		}
		var sel [4]byte
		copy(sel[:], method.ID)
		entries = append(entries, Entry{Selector: sel, Signature: method.Sig, Name: method.RawName})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Signature < entries[j].Signature
	})
	return Table{entries: entries}
}

// FromJSON parses an ABI document and builds its table
func FromJSON(abiJSON []byte) (Table, error) {
	parsed, err := abi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return FromABI(&parsed), nil
}

// Get keeps only the selectors named by signatures. A signature may be
// canonical ("transfer(address,uint256)") or a bare method name, which
// matches every overload. Names absent from the table are ignored.
func (t Table) Get(signatures ...string) Table {
	want := normalizeAll(signatures)
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if want.matches(e) {
			out = append(out, e)
		}
	}
	return Table{entries: out}
}

// Remove drops the selectors named by signatures. Names absent from the
// table are ignored.
func (t Table) Remove(signatures ...string) Table {
	drop := normalizeAll(signatures)
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if !drop.matches(e) {
			out = append(out, e)
		}
	}
	return Table{entries: out}
}

// Selectors returns the raw selector list, suitable for a FacetCut
func (t Table) Selectors() [][4]byte {
	out := make([][4]byte, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Selector
	}
	return out
}

// Entries returns a copy of the table entries
func (t Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of selectors
func (t Table) Len() int {
	return len(t.entries)
}

// Signature looks up the canonical signature of sel
func (t Table) Signature(sel [4]byte) (string, bool) {
	for _, e := range t.entries {
		if e.Selector == sel {
			return e.Signature, true
		}
	}
	return "", false
}

// Cut builds a cut entry for facet carrying the table's selectors.
// Remove cuts always target the zero address.
func (t Table) Cut(facet common.Address, action diamond.FacetCutAction) diamond.FacetCut {
	if action == diamond.Remove {
		facet = common.Address{}
	}
	return diamond.FacetCut{
		FacetAddress:      facet,
		Action:            uint8(action),
		FunctionSelectors: t.Selectors(),
	}
}

// FromSignature hashes a canonical function signature into its selector.
// A leading "function " and whitespace are tolerated.
func FromSignature(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(normalize(signature)))[:4])
	return sel
}

// RemoveSignatures filters a raw selector list by signatures parsed
// independently of any ABI.
func RemoveSignatures(selectors [][4]byte, signatures ...string) [][4]byte {
	drop := make(map[[4]byte]struct{}, len(signatures))
	for _, sig := range signatures {
		drop[FromSignature(sig)] = struct{}{}
	}
	out := make([][4]byte, 0, len(selectors))
	for _, sel := range selectors {
		if _, ok := drop[sel]; !ok {
			out = append(out, sel)
		}
	}
	return out
}

// FindFacetPosition returns the index of facet in a loupe facets() result
func FindFacetPosition(facets []diamond.Facet, facet common.Address) (int, error) {
	for i, f := range facets {
		if f.FacetAddress == facet {
			return i, nil
		}
	}
	return -1, fmt.Errorf("could not find facet address %s in facets", facet.Hex())
}

type nameSet map[string]struct{}

func normalizeAll(signatures []string) nameSet {
	set := make(nameSet, len(signatures))
	for _, s := range signatures {
		set[normalize(s)] = struct{}{}
	}
	return set
}

func (s nameSet) matches(e Entry) bool {
	if _, ok := s[e.Signature]; ok {
		return true
	}
	_, ok := s[e.Name]
	return ok
}

func normalize(signature string) string {
	signature = strings.TrimSpace(signature)
	signature = strings.TrimPrefix(signature, "function ")
	return strings.Join(strings.Fields(signature), "")
}
