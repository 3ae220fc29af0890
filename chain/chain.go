// Package chain is an in-process, single-node ledger that executes
// diamond contracts with Ethereum call semantics: ABI-encoded calldata,
// atomic transactions, receipts and logs. It implements the go-ethereum
// backend interfaces used by the typed client, so code written against
// ethclient runs unchanged against it.
package chain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/metrics"
)

// DefaultChainID is the chain id of a ledger created without WithChainID
const DefaultChainID = 31337

// GasLimit is the gas reported for every transaction. Gas is not metered.
const GasLimit = 3_000_000

// Chain is the ledger
type Chain struct {
	mu sync.Mutex

	chainID *big.Int
	world   *worldState
	number  uint64
	now     uint64

	logs     []*types.Log
	receipts map[common.Hash]*types.Receipt

	logFeed event.Feed
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option configures a Chain
type Option func(*Chain)

// WithChainID sets the chain id used for signing and ChainID()
func WithChainID(id int64) Option {
	return func(c *Chain) {
		c.chainID = big.NewInt(id)
	}
}

// WithLogger sets the logger for transaction tracing
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithGenesisTime sets the initial block timestamp
func WithGenesisTime(t time.Time) Option {
	return func(c *Chain) {
		c.now = uint64(t.Unix())
	}
}

// WithMetrics records transaction outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Chain) {
		c.metrics = m
	}
}

// New creates an empty ledger
func New(opts ...Option) *Chain {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Chain{
		chainID:  big.NewInt(DefaultChainID),
		world:    newWorldState(),
		now:      uint64(time.Now().Unix()),
		receipts: make(map[common.Hash]*types.Receipt),
		logger:   discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ============================================================================
// Accounts and clock
// ============================================================================

// Fund credits native balance to addr outside of any transaction
func (c *Chain) Fund(addr common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.world.balances[addr]
	if !ok {
		current = new(big.Int)
	}
	c.world.balances[addr] = new(big.Int).Add(current, amount)
}

// Balance returns the committed native balance of addr
func (c *Chain) Balance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.world.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Nonce returns the next nonce of addr
func (c *Chain) Nonce(addr common.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.nonces[addr]
}

// HasCode reports whether a contract is deployed at addr
func (c *Chain) HasCode(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.code[addr] != nil
}

// Now returns the timestamp of the next block
func (c *Chain) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(int64(c.now), 0)
}

// SetTime moves the clock to t. The clock never runs backwards.
func (c *Chain) SetTime(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := uint64(t.Unix())
	if ts < c.now {
		return fmt.Errorf("cannot move clock backwards from %d to %d", c.now, ts)
	}
	c.now = ts
	return nil
}

// Advance moves the clock forward by d
func (c *Chain) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += uint64(d / time.Second)
}

// Head returns the number of the latest block
func (c *Chain) Head() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.number
}

// ============================================================================
// Execution
// ============================================================================

type message struct {
	from      common.Address
	to        *common.Address
	value     *big.Int
	input     []byte
	code      diamond.Contract
	construct func(*diamond.Env) error
	hash      common.Hash
}

// Deploy installs code at the address derived from from's nonce and runs
// the optional constructor in the new contract's storage context.
func (c *Chain) Deploy(from common.Address, code diamond.Contract, construct func(*diamond.Env) error) (common.Address, *types.Receipt, error) {
	receipt, _, err := c.apply(message{
		from:      from,
		value:     new(big.Int),
		code:      code,
		construct: construct,
	})
	if err != nil {
		return common.Address{}, receipt, err
	}
	return receipt.ContractAddress, receipt, nil
}

// Transact applies an unsigned transaction from from. A reverted
// transaction is still mined: the receipt has status 0 and err carries the
// revert.
func (c *Chain) Transact(from, to common.Address, value *big.Int, input []byte) (*types.Receipt, []byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	return c.apply(message{from: from, to: &to, value: value, input: input})
}

// StaticCall executes a call against the latest state and discards every
// effect.
func (c *Chain) StaticCall(from, to common.Address, value *big.Int, input []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f := newFrame(c.world, blockContext{number: c.number + 1, timestamp: c.now})
	return f.Call(from, to, value, input)
}

func (c *Chain) apply(msg message) (*types.Receipt, []byte, error) {
	c.mu.Lock()

	nonce := c.world.nonces[msg.from]
	if msg.hash == (common.Hash{}) {
		msg.hash = unsignedTxHash(msg.from, nonce)
	}
	c.number++
	block := blockContext{number: c.number, timestamp: c.now}
	f := newFrame(c.world, block)

	var (
		ret      []byte
		err      error
		contract common.Address
	)
	if msg.to == nil {
		contract = crypto.CreateAddress(msg.from, nonce)
		err = f.create(msg, contract)
	} else {
		ret, err = f.Call(msg.from, *msg.to, msg.value, msg.input)
	}
	c.world.nonces[msg.from] = nonce + 1

	receipt := &types.Receipt{
		Type:              types.LegacyTxType,
		CumulativeGasUsed: GasLimit,
		GasUsed:           GasLimit,
		TxHash:            msg.hash,
		BlockHash:         blockHash(block.number),
		BlockNumber:       new(big.Int).SetUint64(block.number),
		TransactionIndex:  0,
		Logs:              []*types.Log{},
	}
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
		err = asRevert(err)
	} else {
		f.commit()
		receipt.Status = types.ReceiptStatusSuccessful
		receipt.ContractAddress = contract
		for i, l := range f.logs {
			l.BlockNumber = block.number
			l.BlockHash = receipt.BlockHash
			l.TxHash = msg.hash
			l.TxIndex = 0
			l.Index = uint(i)
		}
		receipt.Logs = f.logs
		c.logs = append(c.logs, f.logs...)
	}
	c.receipts[msg.hash] = receipt
	c.mu.Unlock()

	c.trace(msg, receipt, err)
	if len(receipt.Logs) > 0 {
		c.logFeed.Send(receipt.Logs)
	}
	return receipt, ret, err
}

func (f *frame) create(msg message, addr common.Address) error {
	if f.codeAt(addr) != nil {
		return diamond.Revert("contract address collision")
	}
	f.code[addr] = msg.code
	if err := f.transfer(msg.from, addr, msg.value); err != nil {
		return err
	}
	if msg.construct == nil {
		return nil
	}
	return msg.construct(&diamond.Env{
		Host:   f,
		Self:   addr,
		Code:   addr,
		Caller: msg.from,
		Value:  msg.value,
	})
}

func (c *Chain) trace(msg message, receipt *types.Receipt, err error) {
	fields := logrus.Fields{
		"tx":     msg.hash.Hex(),
		"from":   msg.from.Hex(),
		"block":  receipt.BlockNumber.Uint64(),
		"status": receipt.Status,
	}
	if msg.to != nil {
		fields["to"] = msg.to.Hex()
	} else {
		fields["created"] = receipt.ContractAddress.Hex()
	}
	if len(msg.input) >= 4 {
		fields["selector"] = diamond.SelectorHex([4]byte(msg.input[:4]))
	}

	status := "success"
	if err != nil {
		status = "reverted"
		c.logger.WithFields(fields).WithError(err).Debug("transaction reverted")
	} else {
		c.logger.WithFields(fields).Debug("transaction applied")
	}
	if c.metrics != nil {
		c.metrics.TransactionsTotal.WithLabelValues(status).Inc()
		c.metrics.BlockHeight.Set(float64(receipt.BlockNumber.Uint64()))
	}
}

func asRevert(err error) error {
	var revert *diamond.Error
	if errors.As(err, &revert) {
		return revert
	}
	return diamond.Revert(err.Error())
}

func unsignedTxHash(from common.Address, nonce uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return crypto.Keccak256Hash([]byte("unsigned"), from.Bytes(), buf[:])
}

func blockHash(number uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], number)
	return crypto.Keccak256Hash([]byte("block"), buf[:])
}
