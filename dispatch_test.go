package diamond_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/chain"
)

func noop(*diamond.Env, []interface{}) ([]interface{}, error) { return nil, nil }

func TestNewDispatcher(t *testing.T) {
	t.Run("missing handler", func(t *testing.T) {
		_, err := diamond.NewDispatcher(counterABI, map[string]diamond.Handler{"count": noop})
		assert.Error(t, err)
	})

	t.Run("handler without method", func(t *testing.T) {
		_, err := diamond.NewDispatcher(counterABI, map[string]diamond.Handler{
			"count": noop, "increment": noop, "add": noop, "version": noop, "deposit": noop, "burn": noop,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "burn")
	})

	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() {
			diamond.MustDispatcher(counterABI, nil)
		})
	})
}

func TestDispatcherRun(t *testing.T) {
	c := chain.New()
	c.Fund(owner, big.NewInt(1_000))
	counter, _, err := c.Deploy(owner, newCounterFacet(7), nil)
	require.NoError(t, err)

	pack := func(method string, args ...interface{}) []byte {
		input, err := counterABI.Pack(method, args...)
		require.NoError(t, err)
		return input
	}

	t.Run("packs outputs", func(t *testing.T) {
		ret, err := c.StaticCall(owner, counter, nil, pack("version"))
		require.NoError(t, err)
		out, err := counterABI.Unpack("version", ret)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(7), out[0])
	})

	t.Run("unknown selector", func(t *testing.T) {
		_, err := c.StaticCall(owner, counter, nil, []byte{0xde, 0xad, 0xbe, 0xef})
		assert.ErrorIs(t, err, diamond.ErrFunctionNotFound)
	})

	t.Run("value to non-payable method", func(t *testing.T) {
		_, _, err := c.Transact(owner, counter, big.NewInt(1), pack("increment"))
		assert.ErrorIs(t, err, diamond.ErrNonPayable)
	})

	t.Run("value to payable method", func(t *testing.T) {
		_, _, err := c.Transact(owner, counter, big.NewInt(10), pack("deposit"))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(10), c.Balance(counter))
	})

	t.Run("malformed arguments", func(t *testing.T) {
		sel := counterABI.Methods["add"].ID
		_, _, err := c.Transact(owner, counter, nil, sel)
		var revert *diamond.Error
		require.ErrorAs(t, err, &revert)
		assert.Equal(t, diamond.ErrCodeInvalidCall, revert.Code)
	})

	t.Run("custom error from handler", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 100)
		_, _, err := c.Transact(owner, counter, nil, pack("add", huge))
		assert.ErrorIs(t, err, diamond.CustomError("Overflow"))
	})

	t.Run("plain value without receive", func(t *testing.T) {
		_, _, err := c.Transact(owner, counter, big.NewInt(1), nil)
		assert.ErrorIs(t, err, diamond.Revert(""))
	})

	t.Run("receive handler", func(t *testing.T) {
		var got *big.Int
		d := diamond.MustDispatcher(counterABI, map[string]diamond.Handler{
			"count": noop, "increment": noop, "add": noop, "version": noop, "deposit": noop,
		}).OnReceive(func(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
			got = new(big.Int).Set(env.Value)
			return nil, nil
		})
		addr, _, err := c.Deploy(owner, d, nil)
		require.NoError(t, err)

		_, _, err = c.Transact(owner, addr, big.NewInt(3), nil)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(3), got)
	})

	t.Run("plain error becomes reason", func(t *testing.T) {
		d := diamond.MustDispatcher(counterABI, map[string]diamond.Handler{
			"count": noop, "add": noop, "version": noop, "deposit": noop,
			"increment": func(*diamond.Env, []interface{}) ([]interface{}, error) {
				return nil, errors.New("counter frozen")
			},
		})
		addr, _, err := c.Deploy(owner, d, nil)
		require.NoError(t, err)

		_, _, err = c.Transact(owner, addr, nil, pack("increment"))
		assert.ErrorIs(t, err, diamond.Revert("counter frozen"))
	})
}

func TestArg(t *testing.T) {
	args := []interface{}{common.HexToAddress("0x1"), big.NewInt(5), [4]byte{1, 2, 3, 4}}

	assert.Equal(t, common.HexToAddress("0x1"), diamond.Arg[common.Address](args, 0))
	assert.Equal(t, big.NewInt(5), diamond.Arg[*big.Int](args, 1))
	assert.Equal(t, [4]byte{1, 2, 3, 4}, diamond.Arg[[4]byte](args, 2))
	assert.Nil(t, diamond.Arg[*big.Int](args, 9))
}

func TestRevertData(t *testing.T) {
	t.Run("reason string", func(t *testing.T) {
		data := diamond.RevertData(diamond.Revert("insufficient balance"))
		assert.Equal(t, crypto.Keccak256([]byte("Error(string)"))[:4], data[:4])
		assert.ErrorIs(t, diamond.DecodeRevert(data), diamond.Revert("insufficient balance"))
	})

	t.Run("plain error", func(t *testing.T) {
		data := diamond.RevertData(errors.New("boom"))
		assert.ErrorIs(t, diamond.DecodeRevert(data), diamond.Revert("boom"))
	})

	t.Run("custom error", func(t *testing.T) {
		data := diamond.RevertData(diamond.CustomError("Overflow"))
		assert.Equal(t, crypto.Keccak256([]byte("Overflow()"))[:4], data)
		assert.ErrorIs(t, diamond.DecodeRevert(data, nil, counterABI), diamond.CustomError("Overflow"))
	})

	t.Run("unknown custom error", func(t *testing.T) {
		decoded := diamond.DecodeRevert([]byte{0xaa, 0xbb, 0xcc, 0xdd})
		assert.Equal(t, diamond.ErrCodeCustom, decoded.Code)
		assert.Equal(t, "0xaabbccdd", decoded.Message)
	})

	t.Run("panic", func(t *testing.T) {
		data := append(crypto.Keccak256([]byte("Panic(uint256)"))[:4], common.LeftPadBytes([]byte{0x11}, 32)...)
		decoded := diamond.DecodeRevert(data)
		assert.Equal(t, diamond.ErrCodePanic, decoded.Code)
		assert.Equal(t, "0x11", decoded.Message)
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, diamond.DecodeRevert(nil), diamond.Revert(""))
	})

	t.Run("malformed reason", func(t *testing.T) {
		data := append(crypto.Keccak256([]byte("Error(string)"))[:4], 0x01)
		assert.Equal(t, diamond.ErrCodeInvalidCall, diamond.DecodeRevert(data).Code)
	})
}

func TestErrorIs(t *testing.T) {
	withDetails := diamond.ErrFunctionExists.WithDetails(map[string]interface{}{"selector": "0x01020304"})

	assert.ErrorIs(t, withDetails, diamond.ErrFunctionExists)
	assert.NotErrorIs(t, withDetails, diamond.ErrReplaceSame)
	assert.NotErrorIs(t, diamond.CustomError("X"), diamond.Revert("X"))
	assert.Equal(t, "execution reverted: Diamond: Function does not exist", diamond.ErrFunctionNotFound.Error())
	assert.Nil(t, diamond.ErrFunctionExists.Details)
}

func TestSelectors(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		sel, err := diamond.ParseSelector("0x1F931C1C")
		require.NoError(t, err)
		assert.Equal(t, "0x1f931c1c", diamond.SelectorHex(sel))

		bare, err := diamond.ParseSelector(" 1f931c1c ")
		require.NoError(t, err)
		assert.Equal(t, sel, bare)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "0x12", "0x1234567890", "0xzzzzzzzz"} {
			_, err := diamond.ParseSelector(s)
			assert.Error(t, err, s)
		}
	})
}

func TestFacetCutAction(t *testing.T) {
	tests := []struct {
		in   string
		want diamond.FacetCutAction
	}{
		{"add", diamond.Add},
		{"Replace", diamond.Replace},
		{" REMOVE ", diamond.Remove},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := diamond.ParseFacetCutAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := diamond.ParseFacetCutAction("upgrade")
	assert.Error(t, err)
	assert.Equal(t, "replace", diamond.Replace.String())
	assert.Equal(t, "action(9)", diamond.FacetCutAction(9).String())
}
