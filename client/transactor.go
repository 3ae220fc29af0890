package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hashleap/diamond/chain"
)

// ============================================================================
// In-process transactor
// ============================================================================

// ChainTransactor sends unsigned developer transactions to the in-process
// chain
type ChainTransactor struct {
	chain *chain.Chain
	from  common.Address
}

// NewChainTransactor creates a transactor sending as from
func NewChainTransactor(c *chain.Chain, from common.Address) *ChainTransactor {
	return &ChainTransactor{chain: c, from: from}
}

// From returns the sending account
func (t *ChainTransactor) From() common.Address {
	return t.from
}

// Transact implements Transactor
func (t *ChainTransactor) Transact(ctx context.Context, to common.Address, value *big.Int, input []byte) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	receipt, _, err := t.chain.Transact(t.from, to, value, input)
	return receipt, err
}

// ============================================================================
// Signing transactor
// ============================================================================

// SendBackend is what KeyedTransactor needs from a node
type SendBackend interface {
	ethereum.ContractCaller
	ethereum.TransactionSender
	ethereum.GasPricer
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// DefaultGasLimit is used for every signed transaction
const DefaultGasLimit = 800_000

// receiptPollInterval is how often a pending receipt is polled
const receiptPollInterval = 200 * time.Millisecond

// KeyedTransactor signs legacy transactions with a caller-supplied key.
// The key is held in memory only.
type KeyedTransactor struct {
	backend SendBackend
	key     *ecdsa.PrivateKey
	from    common.Address
	gas     uint64
}

// NewKeyedTransactor parses a hex private key, with or without 0x
func NewKeyedTransactor(backend SendBackend, privateKeyHex string) (*KeyedTransactor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeyedTransactorFromKey(backend, key), nil
}

// NewKeyedTransactorFromKey wraps an already parsed key
func NewKeyedTransactorFromKey(backend SendBackend, key *ecdsa.PrivateKey) *KeyedTransactor {
	return &KeyedTransactor{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		gas:     DefaultGasLimit,
	}
}

// From returns the signer address
func (t *KeyedTransactor) From() common.Address {
	return t.from
}

// Transact signs, sends and waits for the transaction to be mined. For a
// failed receipt the call is replayed to recover the revert reason.
func (t *KeyedTransactor) Transact(ctx context.Context, to common.Address, value *big.Int, input []byte) (*types.Receipt, error) {
	if value == nil {
		value = new(big.Int)
	}
	chainID, err := t.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	nonce, err := t.backend.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      t.gas,
		To:       &to,
		Value:    value,
		Data:     input,
	}), types.LatestSignerForChainID(chainID), t.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := t.backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := t.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return receipt, nil
	}

	msg := ethereum.CallMsg{From: t.from, To: &to, Value: value, Data: input}
	parent := new(big.Int).Sub(receipt.BlockNumber, big.NewInt(1))
	if _, callErr := t.backend.CallContract(ctx, msg, parent); callErr != nil {
		return receipt, callErr
	}
	return receipt, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
}

func (t *KeyedTransactor) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := t.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
