package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
)

// ============================================================================
// go-ethereum backend surface
// ============================================================================

var (
	_ ethereum.ContractCaller    = (*Chain)(nil)
	_ ethereum.LogFilterer       = (*Chain)(nil)
	_ ethereum.TransactionSender = (*Chain)(nil)
	_ ethereum.GasPricer         = (*Chain)(nil)
	_ ethereum.GasEstimator      = (*Chain)(nil)
)

// ErrContractCreation is returned for signed transactions without a
// recipient. Contracts are native code and must be installed with Deploy.
var ErrContractCreation = errors.New("contract creation transactions are not supported; use Deploy")

// ChainID returns the ledger's chain id
func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

// BlockNumber returns the latest block number
func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	return c.Head(), nil
}

// BalanceAt returns the native balance of account. Only the latest state
// is kept, so blockNumber is ignored.
func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return c.Balance(account), nil
}

// CodeAt returns a stand-in for the code at account: contracts are native
// Go values, so a non-empty marker reports presence.
func (c *Chain) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	if !c.HasCode(account) {
		return nil, nil
	}
	return crypto.Keccak256(account.Bytes()), nil
}

// PendingNonceAt returns the next nonce of account
func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.Nonce(account), nil
}

// NonceAt returns the next nonce of account
func (c *Chain) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	return c.Nonce(account), nil
}

// SuggestGasPrice returns zero; the ledger does not charge for gas
func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int), nil
}

// EstimateGas runs msg against the latest state and reports the fixed gas
// limit, or the revert.
func (c *Chain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if msg.To == nil {
		return 0, ErrContractCreation
	}
	if _, err := c.StaticCall(msg.From, *msg.To, msg.Value, msg.Data); err != nil {
		return 0, asRevert(err)
	}
	return GasLimit, nil
}

// CallContract executes a read-only call
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, ErrContractCreation
	}
	ret, err := c.StaticCall(msg.From, *msg.To, msg.Value, msg.Data)
	if err != nil {
		return nil, asRevert(err)
	}
	return ret, nil
}

// SendTransaction applies a signed legacy or dynamic-fee transaction.
// The receipt is available immediately; reverts are reported through
// the receipt status, as on a node.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if tx.To() == nil {
		return ErrContractCreation
	}
	if tx.ChainId().Sign() != 0 && tx.ChainId().Cmp(c.chainID) != 0 {
		return fmt.Errorf("invalid chain id %s, want %s", tx.ChainId(), c.chainID)
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if expected := c.Nonce(from); tx.Nonce() != expected {
		return fmt.Errorf("invalid nonce for %s: have %d, want %d", from.Hex(), tx.Nonce(), expected)
	}

	_, _, _ = c.apply(message{
		from:  from,
		to:    tx.To(),
		value: tx.Value(),
		input: tx.Data(),
		hash:  tx.Hash(),
	})
	return nil
}

// TransactionReceipt returns the receipt of a mined transaction
func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// FilterLogs returns past logs matching q
func (c *Chain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []types.Log
	for _, l := range c.logs {
		if matchLog(l, q) {
			out = append(out, *l)
		}
	}
	return out, nil
}

// SubscribeFilterLogs streams logs matching q as transactions are mined
func (c *Chain) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	batches := make(chan []*types.Log, 16)
	sub := c.logFeed.Subscribe(batches)

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case logs := <-batches:
				for _, l := range logs {
					if !matchLog(l, q) {
						continue
					}
					select {
					case ch <- *l:
					case <-quit:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
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

func matchLog(l *types.Log, q ethereum.FilterQuery) bool {
	if q.BlockHash != nil && l.BlockHash != *q.BlockHash {
		return false
	}
	if q.FromBlock != nil && q.FromBlock.Sign() >= 0 && l.BlockNumber < q.FromBlock.Uint64() {
		return false
	}
	if q.ToBlock != nil && q.ToBlock.Sign() >= 0 && l.BlockNumber > q.ToBlock.Uint64() {
		return false
	}
	if len(q.Addresses) > 0 {
		found := false
		for _, addr := range q.Addresses {
			if addr == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, alternatives := range q.Topics {
		if len(alternatives) == 0 {
			continue
		}
		if i >= len(l.Topics) {
			return false
		}
		found := false
		for _, topic := range alternatives {
			if topic == l.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
