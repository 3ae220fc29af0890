package crosschain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
)

// StoragePosition is the namespace of the cross-chain payment state
var StoragePosition = diamond.StoragePosition("hashleap.crosschain.storage")

type crossChainStorage struct {
	// Gateways maps a chain name to its Axelar gateway
	Gateways map[string]common.Address
	Totals   map[common.Address]*big.Int
}

func newCrossChainStorage() *crossChainStorage {
	return &crossChainStorage{
		Gateways: make(map[string]common.Address),
		Totals:   make(map[common.Address]*big.Int),
	}
}

func (s *crossChainStorage) Clone() diamond.Slot {
	c := &crossChainStorage{
		Gateways: make(map[string]common.Address, len(s.Gateways)),
		Totals:   make(map[common.Address]*big.Int, len(s.Totals)),
	}
	for k, v := range s.Gateways {
		c.Gateways[k] = v
	}
	for k, v := range s.Totals {
		c.Totals[k] = new(big.Int).Set(v)
	}
	return c
}

func load(env *diamond.Env) *crossChainStorage {
	return diamond.LoadSlot(env, StoragePosition, newCrossChainStorage)
}
