package crosschain_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/chain"
	"github.com/hashleap/diamond/deploy"
	"github.com/hashleap/diamond/erc20"
	"github.com/hashleap/diamond/facets/crosschain"
)

var (
	owner     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	stranger  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	recipient = common.HexToAddress("0x270Fe7cB0F0a98e4c9ABe1E2b1B82eB9aC848cDA")
)

type fixture struct {
	t       *testing.T
	chain   *chain.Chain
	diamond common.Address
	token   common.Address
	gateway common.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	c := chain.New()
	d := deploy.New(c, owner)
	dep, err := d.DeployDiamond(ctx)
	require.NoError(t, err)
	_, err = d.AddFacet(ctx, dep, "CrossChainPaymentFacet", crosschain.NewFacet(), deploy.FacetOptions{})
	require.NoError(t, err)

	token, _, err := c.Deploy(owner, erc20.NewToken("USD Coin", "USDC", 6), nil)
	require.NoError(t, err)
	gateway, _, err := c.Deploy(owner, crosschain.NewGateway(), nil)
	require.NoError(t, err)

	return &fixture{t: t, chain: c, diamond: dep.Diamond, token: token, gateway: gateway}
}

func (f *fixture) send(from common.Address, method string, args ...interface{}) (*types.Receipt, error) {
	f.t.Helper()
	input, err := crosschain.ABI.Pack(method, args...)
	require.NoError(f.t, err)
	receipt, _, err := f.chain.Transact(from, f.diamond, nil, input)
	return receipt, err
}

func (f *fixture) call(to common.Address, parsed interface {
	Pack(string, ...interface{}) ([]byte, error)
	Unpack(string, []byte) ([]interface{}, error)
}, method string, args ...interface{}) interface{} {
	f.t.Helper()
	input, err := parsed.Pack(method, args...)
	require.NoError(f.t, err)
	ret, err := f.chain.StaticCall(owner, to, nil, input)
	require.NoError(f.t, err)
	out, err := parsed.Unpack(method, ret)
	require.NoError(f.t, err)
	return out[0]
}

func (f *fixture) tokenTx(from common.Address, method string, args ...interface{}) {
	f.t.Helper()
	input, err := erc20.ABI.Pack(method, args...)
	require.NoError(f.t, err)
	_, _, err = f.chain.Transact(from, f.token, nil, input)
	require.NoError(f.t, err)
}

func (f *fixture) transfer(from common.Address, sourceChain string, amount int64, token common.Address) (*types.Receipt, error) {
	return f.send(from, "transfer", sourceChain, "avalanche", recipient, "USDC", big.NewInt(amount), token, "#cc01", []string{"test"})
}

func TestAxelarContract(t *testing.T) {
	f := newFixture(t)

	t.Run("owner only", func(t *testing.T) {
		_, err := f.send(stranger, "setAxelarContract", "binance", f.gateway)
		assert.ErrorIs(t, err, diamond.ErrNotContractOwner)
	})

	t.Run("chain name required", func(t *testing.T) {
		_, err := f.send(owner, "setAxelarContract", "", f.gateway)
		assert.ErrorIs(t, err, crosschain.ErrEmptyChain)
	})

	t.Run("set and get", func(t *testing.T) {
		assert.Equal(t, common.Address{}, f.call(f.diamond, crosschain.ABI, "getAxelarContract", "binance"))
		_, err := f.send(owner, "setAxelarContract", "binance", f.gateway)
		require.NoError(t, err)
		assert.Equal(t, f.gateway, f.call(f.diamond, crosschain.ABI, "getAxelarContract", "binance"))
		assert.Equal(t, common.Address{}, f.call(f.diamond, crosschain.ABI, "getAxelarContract", "avalanche"))
	})
}

func TestTransfer(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		_, err := f.send(owner, "setAxelarContract", "binance", f.gateway)
		require.NoError(t, err)
		f.tokenTx(owner, "mint", owner, big.NewInt(5000))
		f.tokenTx(owner, "approve", f.diamond, big.NewInt(2000))
		return f
	}

	t.Run("source chain must be configured", func(t *testing.T) {
		f := setup(t)
		_, err := f.transfer(owner, "polygon", 1000, f.token)
		assert.ErrorIs(t, err, crosschain.ErrGatewayNotSet)
	})

	t.Run("token must be a contract", func(t *testing.T) {
		f := setup(t)
		_, err := f.transfer(owner, "binance", 1000, common.Address{})
		assert.ErrorIs(t, err, crosschain.ErrWrongTokenContract)
		_, err = f.transfer(owner, "binance", 1000, stranger)
		assert.ErrorIs(t, err, crosschain.ErrWrongTokenContract)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := setup(t)
		_, err := f.transfer(owner, "binance", 0, f.token)
		assert.ErrorIs(t, err, crosschain.ErrZeroAmount)
	})

	t.Run("hands tokens to the gateway", func(t *testing.T) {
		f := setup(t)
		receipt, err := f.transfer(owner, "binance", 1000, f.token)
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(4000), f.call(f.token, erc20.ABI, "balanceOf", owner))
		assert.Equal(t, big.NewInt(1000), f.call(f.token, erc20.ABI, "balanceOf", f.diamond))
		assert.Equal(t, big.NewInt(1000), f.call(f.token, erc20.ABI, "allowance", f.diamond, f.gateway))
		assert.Equal(t, big.NewInt(1), f.call(f.gateway, crosschain.GatewayABI, "sentCount"))
		assert.Equal(t, big.NewInt(1000), f.call(f.diamond, crosschain.ABI, "getTotalBridged", f.token))

		var sent, success *types.Log
		for _, l := range receipt.Logs {
			switch {
			case l.Address == f.gateway && l.Topics[0] == crosschain.GatewayABI.Events["TokenSent"].ID:
				sent = l
			case l.Address == f.diamond && l.Topics[0] == crosschain.ABI.Events["TransferSuccess"].ID:
				success = l
			}
		}
		require.NotNil(t, sent)
		require.NotNil(t, success)

		out, err := crosschain.GatewayABI.Events["TokenSent"].Inputs.NonIndexed().Unpack(sent.Data)
		require.NoError(t, err)
		assert.Equal(t, "avalanche", out[0])
		assert.Equal(t, recipient.Hex(), out[1])
		assert.Equal(t, "USDC", out[2])
		assert.Equal(t, common.BytesToAddress(sent.Topics[1].Bytes()), f.diamond)

		assert.Equal(t, owner, common.BytesToAddress(success.Topics[1].Bytes()))
		assert.Equal(t, recipient, common.BytesToAddress(success.Topics[2].Bytes()))
	})

	t.Run("failed pull leaves no trace", func(t *testing.T) {
		f := setup(t)
		_, err := f.transfer(owner, "binance", 2001, f.token)
		assert.ErrorIs(t, err, erc20.ErrInsufficientAllowance)
		assert.Equal(t, big.NewInt(5000), f.call(f.token, erc20.ABI, "balanceOf", owner))
		assert.Equal(t, 0, f.call(f.gateway, crosschain.GatewayABI, "sentCount").(*big.Int).Sign())
		assert.Equal(t, 0, f.call(f.diamond, crosschain.ABI, "getTotalBridged", f.token).(*big.Int).Sign())
	})
}
