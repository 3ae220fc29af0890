package diamond

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CutCache makes upgrade submission idempotent by caching the receipt of
// each applied cut and tracking cuts currently being submitted.
// A retried or concurrently submitted identical proposal waits for, and
// then shares, the first submission's receipt instead of sending a second
// diamondCut that would revert with "Can't add function that already
// exists".
//
// Only the latest applied cut of each diamond keeps its receipt: Supersede
// drops the receipts of earlier cuts so that re-applying an older proposal
// is submitted again.
type CutCache struct {
	mu       sync.Mutex
	results  *expirable.LRU[string, *types.Receipt]
	inFlight map[string]chan struct{}
	latest   map[common.Address]string
}

// NewCutCache creates a cache holding up to size receipts for ttl
func NewCutCache(size int, ttl time.Duration) *CutCache {
	return &CutCache{
		results:  expirable.NewLRU[string, *types.Receipt](size, nil, ttl),
		inFlight: make(map[string]chan struct{}),
		latest:   make(map[common.Address]string),
	}
}

// CutKey identifies a cut proposal: the diamond it targets plus the
// ABI-encoded diamondCut call.
func CutKey(diamondAddr common.Address, cuts []FacetCut, init common.Address, calldata []byte) (string, error) {
	packed, err := DiamondCutABI.Pack("diamondCut", cuts, init, calldata)
	if err != nil {
		return "", fmt.Errorf("failed to pack cut: %w", err)
	}
	return crypto.Keccak256Hash(diamondAddr.Bytes(), packed).Hex(), nil
}

// CutStatus represents the result of checking the cache.
type CutStatus int

const (
	// CutNotFound means no cached receipt and no in-flight submission.
	CutNotFound CutStatus = iota
	// CutCached means a receipt was found.
	CutCached
	// CutInFlight means another caller is submitting this cut.
	CutInFlight
)

// CheckAndMark atomically checks the cache and marks the key as in-flight if needed.
// Returns:
// - CutCached + receipt if the cut was already applied
// - CutInFlight + wait channel if another caller is submitting it
// - CutNotFound + done channel if this caller should submit (now marked in-flight)
func (c *CutCache) CheckAndMark(key string) (CutStatus, *types.Receipt, chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if receipt, ok := c.results.Get(key); ok {
		return CutCached, receipt, nil
	}
	if done, exists := c.inFlight[key]; exists {
		return CutInFlight, nil, done
	}

	done := make(chan struct{})
	c.inFlight[key] = done
	return CutNotFound, nil, done
}

// WaitForResult waits for an in-flight submission, respecting context cancellation.
// Returns nil if the submission failed.
func (c *CutCache) WaitForResult(ctx context.Context, key string, done chan struct{}) (*types.Receipt, error) {
	select {
	case <-done:
		return c.Get(key), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns a cached receipt or nil
func (c *CutCache) Get(key string) *types.Receipt {
	receipt, _ := c.results.Get(key)
	return receipt
}

// Complete caches the receipt of an applied cut and releases waiters
func (c *CutCache) Complete(key string, receipt *types.Receipt, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results.Add(key, receipt)
	delete(c.inFlight, key)
	close(done)
}

// Fail drops the in-flight marker without caching, so the cut can be
// retried.
func (c *CutCache) Fail(key string, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, key)
	close(done)
}

// Supersede records key as the latest applied cut of diamondAddr and
// evicts the receipt of the cut it replaces.
func (c *CutCache) Supersede(diamondAddr common.Address, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.latest[diamondAddr]; ok && prev != key {
		c.results.Remove(prev)
	}
	c.latest[diamondAddr] = key
}

// Do runs submit at most once per key among concurrent callers and
// within the TTL. shared is true when the receipt came from another
// submission.
func (c *CutCache) Do(ctx context.Context, key string, submit func(context.Context) (*types.Receipt, error)) (receipt *types.Receipt, shared bool, err error) {
	for {
		status, cached, done := c.CheckAndMark(key)
		switch status {
		case CutCached:
			return cached, true, nil
		case CutInFlight:
			receipt, err := c.WaitForResult(ctx, key, done)
			if err != nil {
				return nil, false, err
			}
			if receipt != nil {
				return receipt, true, nil
			}
			// the other submission failed; try ourselves
			continue
		}

		receipt, err := submit(ctx)
		if err != nil || receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
			c.Fail(key, done)
			if err == nil {
				err = fmt.Errorf("cut transaction %s reverted", receiptHash(receipt))
			}
			return receipt, false, err
		}
		c.Complete(key, receipt, done)
		return receipt, false, nil
	}
}

func receiptHash(r *types.Receipt) string {
	if r == nil {
		return "<nil>"
	}
	return r.TxHash.Hex()
}
