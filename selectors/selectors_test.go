package selectors

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diamond "github.com/hashleap/diamond"
)

var testABI = []byte(`[
	{"inputs":[],"name":"owner","outputs":[{"type":"address","name":""}],"stateMutability":"view","type":"function"},
	{"inputs":[{"type":"address","name":"to"}],"name":"transferOwnership","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"type":"bytes","name":"data"}],"name":"init","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"type":"uint256","name":"a"}],"name":"pay","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"type":"uint256","name":"a"},{"type":"string","name":"b"}],"name":"pay","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`)

func TestFromJSON(t *testing.T) {
	table, err := FromJSON(testABI)
	require.NoError(t, err)

	t.Run("excludes initializer", func(t *testing.T) {
		assert.Equal(t, 4, table.Len())
		_, ok := table.Signature(FromSignature("init(bytes)"))
		assert.False(t, ok)
	})

	t.Run("ordered by signature", func(t *testing.T) {
		entries := table.Entries()
		require.Len(t, entries, 4)
		assert.Equal(t, "owner()", entries[0].Signature)
		assert.Equal(t, "pay(uint256)", entries[1].Signature)
		assert.Equal(t, "pay(uint256,string)", entries[2].Signature)
		assert.Equal(t, "transferOwnership(address)", entries[3].Signature)
	})

	t.Run("selectors match keccak of signature", func(t *testing.T) {
		assert.Equal(t, [4]byte{0x8d, 0xa5, 0xcb, 0x5b}, FromSignature("owner()"))
		assert.Equal(t, [4]byte{0xf2, 0xfd, 0xe3, 0x8b}, FromSignature("transferOwnership(address)"))
		sig, ok := table.Signature([4]byte{0x8d, 0xa5, 0xcb, 0x5b})
		assert.True(t, ok)
		assert.Equal(t, "owner()", sig)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := FromJSON([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestGetAndRemove(t *testing.T) {
	table, err := FromJSON(testABI)
	require.NoError(t, err)

	t.Run("get keeps listed signatures", func(t *testing.T) {
		got := table.Get("owner()", "transferOwnership(address)")
		assert.Equal(t, [][4]byte{FromSignature("owner()"), FromSignature("transferOwnership(address)")}, got.Selectors())
	})

	t.Run("get ignores unknown signatures", func(t *testing.T) {
		got := table.Get("owner()", "doesNotExist(uint8)")
		assert.Equal(t, 1, got.Len())
	})

	t.Run("bare name matches all overloads", func(t *testing.T) {
		assert.Equal(t, 2, table.Get("pay").Len())
		assert.Equal(t, 2, table.Remove("pay").Len())
	})

	t.Run("remove unknown is a no-op", func(t *testing.T) {
		assert.Equal(t, table.Selectors(), table.Remove("nope()").Selectors())
	})

	t.Run("whitespace and function keyword tolerated", func(t *testing.T) {
		got := table.Remove("function pay(uint256, string)")
		assert.Equal(t, 3, got.Len())
	})
}

func TestRemoveSignatures(t *testing.T) {
	in := [][4]byte{FromSignature("owner()"), FromSignature("pay(uint256)"), FromSignature("x()")}
	out := RemoveSignatures(in, "pay(uint256)", "unknown()")
	assert.Equal(t, [][4]byte{FromSignature("owner()"), FromSignature("x()")}, out)
}

func TestCut(t *testing.T) {
	table, err := FromJSON(testABI)
	require.NoError(t, err)
	facet := common.HexToAddress("0x1000000000000000000000000000000000000001")

	add := table.Cut(facet, diamond.Add)
	assert.Equal(t, facet, add.FacetAddress)
	assert.Equal(t, uint8(diamond.Add), add.Action)
	assert.Len(t, add.FunctionSelectors, 4)

	remove := table.Cut(facet, diamond.Remove)
	assert.Equal(t, common.Address{}, remove.FacetAddress)
}

func TestFindFacetPosition(t *testing.T) {
	a := common.HexToAddress("0xa")
	b := common.HexToAddress("0xb")
	facets := []diamond.Facet{{FacetAddress: a}, {FacetAddress: b}}

	pos, err := FindFacetPosition(facets, b)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	_, err = FindFacetPosition(facets, common.HexToAddress("0xc"))
	assert.Error(t, err)
}
