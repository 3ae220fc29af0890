package spotpayment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
)

// StoragePosition is the namespace of the spot payment state
var StoragePosition = diamond.StoragePosition("hashleap.spotpayment.storage")

type spotStorage struct {
	// TokenAddresses maps a token symbol to its contract
	TokenAddresses map[string]common.Address
	// Totals is the amount moved per token; native payments are keyed by
	// the zero address
	Totals map[common.Address]*big.Int
}

func newSpotStorage() *spotStorage {
	return &spotStorage{
		TokenAddresses: make(map[string]common.Address),
		Totals:         make(map[common.Address]*big.Int),
	}
}

func (s *spotStorage) Clone() diamond.Slot {
	c := &spotStorage{
		TokenAddresses: make(map[string]common.Address, len(s.TokenAddresses)),
		Totals:         make(map[common.Address]*big.Int, len(s.Totals)),
	}
	for k, v := range s.TokenAddresses {
		c.TokenAddresses[k] = v
	}
	for k, v := range s.Totals {
		c.Totals[k] = new(big.Int).Set(v)
	}
	return c
}

func load(env *diamond.Env) *spotStorage {
	return diamond.LoadSlot(env, StoragePosition, newSpotStorage)
}

func (s *spotStorage) addTotal(token common.Address, amount *big.Int) {
	total, ok := s.Totals[token]
	if !ok {
		total = new(big.Int)
	}
	s.Totals[token] = new(big.Int).Add(total, amount)
}

func (s *spotStorage) total(token common.Address) *big.Int {
	if total, ok := s.Totals[token]; ok {
		return new(big.Int).Set(total)
	}
	return new(big.Int)
}
