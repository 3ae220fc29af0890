package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/hashleap/diamond/erc20"
	"github.com/hashleap/diamond/facets/crosschain"
)

// Event is a decoded diamond log
type Event struct {
	Name        string                 `json:"name"`
	Signature   string                 `json:"signature"`
	Address     common.Address         `json:"address"`
	BlockNumber uint64                 `json:"blockNumber"`
	TxHash      common.Hash            `json:"txHash"`
	Index       uint                   `json:"logIndex"`
	Fields      map[string]interface{} `json:"fields"`
}

var eventsByTopic = func() map[common.Hash]abi.Event {
	out := make(map[common.Hash]abi.Event)
	abis := make([]*abi.ABI, 0, len(knownABIs)+2)
	abis = append(abis, knownABIs...)
	abis = append(abis, erc20.ABI, crosschain.GatewayABI)
	for _, parsed := range abis {
		for _, ev := range parsed.Events {
			out[ev.ID] = ev
		}
	}
	return out
}()

// ErrUnknownEvent is returned for logs no known ABI declares
var ErrUnknownEvent = errors.New("unknown event")

// DecodeEvent decodes a log emitted by the diamond, a payment token or
// the development gateway
func DecodeEvent(l types.Log) (*Event, error) {
	if len(l.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	ev, ok := eventsByTopic[l.Topics[0]]
	if !ok {
		return nil, fmt.Errorf("%w: topic %s", ErrUnknownEvent, l.Topics[0].Hex())
	}

	fields := make(map[string]interface{})
	if len(l.Data) > 0 {
		if err := ev.Inputs.NonIndexed().UnpackIntoMap(fields, l.Data); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", ev.Name, err)
		}
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to decode %s topics: %w", ev.Name, err)
	}

	return &Event{
		Name:        ev.Name,
		Signature:   ev.Sig,
		Address:     l.Address,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		Index:       l.Index,
		Fields:      fields,
	}, nil
}

func (d *Diamond) query(fromBlock uint64, names []string) (ethereum.FilterQuery, error) {
	q := ethereum.FilterQuery{
		Addresses: []common.Address{d.address},
		FromBlock: new(big.Int).SetUint64(fromBlock),
	}
	if len(names) == 0 {
		return q, nil
	}
	var ids []common.Hash
	for _, name := range names {
		found := false
		for id, ev := range eventsByTopic {
			if ev.Name == name {
				ids = append(ids, id)
				found = true
			}
		}
		if !found {
			return q, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
		}
	}
	q.Topics = [][]common.Hash{ids}
	return q, nil
}

// FilterEvents returns the diamond's past events from fromBlock,
// optionally restricted to the given event names
func (d *Diamond) FilterEvents(ctx context.Context, fromBlock uint64, names ...string) ([]Event, error) {
	q, err := d.query(fromBlock, names)
	if err != nil {
		return nil, err
	}
	logs, err := d.backend.FilterLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs: %w", err)
	}
	out := make([]Event, 0, len(logs))
	for _, l := range logs {
		ev, err := DecodeEvent(l)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, nil
}

// WatchEvents streams new diamond events into sink until the
// subscription is closed or ctx is done. Undecodable logs are skipped.
func (d *Diamond) WatchEvents(ctx context.Context, sink chan<- Event, names ...string) (event.Subscription, error) {
	q, err := d.query(0, names)
	if err != nil {
		return nil, err
	}
	q.FromBlock = nil

	logs := make(chan types.Log, 64)
	sub, err := d.backend.SubscribeFilterLogs(ctx, q, logs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to logs: %w", err)
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case l := <-logs:
				ev, err := DecodeEvent(l)
				if err != nil {
					continue
				}
				select {
				case sink <- *ev:
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}), nil
}
