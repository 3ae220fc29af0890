package subscription_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/chain"
	"github.com/hashleap/diamond/deploy"
	"github.com/hashleap/diamond/erc20"
	"github.com/hashleap/diamond/facets/subscription"
)

var (
	owner      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	planOwner  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	subscriber = common.HexToAddress("0x3000000000000000000000000000000000000003")
	other      = common.HexToAddress("0x4000000000000000000000000000000000000004")

	genesis = time.Unix(1_700_000_000, 0)
	day     = 24 * time.Hour
)

type fixture struct {
	t       *testing.T
	chain   *chain.Chain
	diamond common.Address
	token   common.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	c := chain.New(chain.WithGenesisTime(genesis))
	d := deploy.New(c, owner)
	dep, err := d.DeployDiamond(ctx)
	require.NoError(t, err)

	calldata, err := subscription.DefaultConfig().Calldata()
	require.NoError(t, err)
	_, err = d.AddFacet(ctx, dep, "SubscriptionFacet", subscription.NewFacet(), deploy.FacetOptions{
		InitCode:     subscription.NewInitializer(),
		InitCalldata: calldata,
	})
	require.NoError(t, err)

	token, _, err := c.Deploy(owner, erc20.NewToken("Test", "TST", 18), nil)
	require.NoError(t, err)

	return &fixture{t: t, chain: c, diamond: dep.Diamond, token: token}
}

func (f *fixture) send(from common.Address, method string, args ...interface{}) (*types.Receipt, error) {
	f.t.Helper()
	input, err := subscription.ABI.Pack(method, args...)
	require.NoError(f.t, err)
	receipt, _, err := f.chain.Transact(from, f.diamond, nil, input)
	return receipt, err
}

func (f *fixture) mustSend(from common.Address, method string, args ...interface{}) *types.Receipt {
	f.t.Helper()
	receipt, err := f.send(from, method, args...)
	require.NoError(f.t, err)
	return receipt
}

func (f *fixture) view(method string, args ...interface{}) []interface{} {
	f.t.Helper()
	input, err := subscription.ABI.Pack(method, args...)
	require.NoError(f.t, err)
	ret, err := f.chain.StaticCall(other, f.diamond, nil, input)
	require.NoError(f.t, err)
	out, err := subscription.ABI.Unpack(method, ret)
	require.NoError(f.t, err)
	return out
}

func (f *fixture) viewBool(method string, args ...interface{}) bool {
	f.t.Helper()
	return f.view(method, args...)[0].(bool)
}

func (f *fixture) token20(from common.Address, method string, args ...interface{}) {
	f.t.Helper()
	input, err := erc20.ABI.Pack(method, args...)
	require.NoError(f.t, err)
	_, _, err = f.chain.Transact(from, f.token, nil, input)
	require.NoError(f.t, err)
}

func (f *fixture) balanceOf(account common.Address) int64 {
	f.t.Helper()
	input, err := erc20.ABI.Pack("balanceOf", account)
	require.NoError(f.t, err)
	ret, err := f.chain.StaticCall(account, f.token, nil, input)
	require.NoError(f.t, err)
	out, err := erc20.ABI.Unpack("balanceOf", ret)
	require.NoError(f.t, err)
	return out[0].(*big.Int).Int64()
}

// fundSubscriber mints and approves 2200 units to the diamond
func (f *fixture) fundSubscriber(who common.Address) {
	f.t.Helper()
	f.token20(who, "mint", who, big.NewInt(2200))
	f.token20(who, "approve", f.diamond, big.NewInt(2200))
}

func (f *fixture) createPlan(from common.Address, fee int64, duration, interval uint16) {
	f.t.Helper()
	f.mustSend(from, "createPlan", big.NewInt(fee), true, duration, interval, title("Test plan"))
}

func title(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

func id(n int64) *big.Int {
	return big.NewInt(n)
}

func TestCreatePlan(t *testing.T) {
	t.Run("paused owner", func(t *testing.T) {
		f := newFixture(t)
		f.mustSend(owner, "pauseSubscriptionOwner", planOwner)
		_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, uint16(365), uint16(30), title("p"))
		assert.ErrorIs(t, err, subscription.ErrPausedSubscriptionOwner)
	})

	t.Run("blacklisted owner", func(t *testing.T) {
		f := newFixture(t)
		f.mustSend(owner, "removeSubscriptionOwner", planOwner)
		_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, uint16(365), uint16(30), title("p"))
		assert.ErrorIs(t, err, subscription.ErrBlockedSubscriptionOwner)
	})

	t.Run("duration bounds", func(t *testing.T) {
		f := newFixture(t)
		for _, duration := range []uint16{6, 366} {
			_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, duration, uint16(1), title("p"))
			assert.ErrorIs(t, err, subscription.ErrInvalidDuration, "duration %d", duration)
		}
		for _, duration := range []uint16{7, 365} {
			_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, duration, uint16(7), title("p"))
			assert.NoError(t, err, "duration %d", duration)
		}
	})

	t.Run("payment interval", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, uint16(30), uint16(0), title("p"))
		assert.ErrorIs(t, err, subscription.ErrInvalidInterval)
		_, err = f.send(planOwner, "createPlan", big.NewInt(1000), true, uint16(30), uint16(31), title("p"))
		assert.ErrorIs(t, err, subscription.ErrInvalidInterval)
	})

	t.Run("records the plan", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.viewBool("isPlanActiveForOwner", planOwner, id(0)))

		receipt := f.mustSend(planOwner, "createPlan", big.NewInt(1200), true, uint16(365), uint16(7), title("Test plan"))
		require.Len(t, receipt.Logs, 1)
		assert.Equal(t, subscription.ABI.Events["NewPlan"].ID, receipt.Logs[0].Topics[0])

		plan := f.view("getPlan", id(0))
		assert.Equal(t, planOwner, plan[0])
		assert.Equal(t, big.NewInt(1200), plan[1])
		assert.Equal(t, true, plan[2])
		assert.Equal(t, uint16(365), plan[3])
		assert.Equal(t, uint16(7), plan[4])
		assert.Equal(t, title("Test plan"), plan[5])
		assert.Equal(t, true, plan[6])

		assert.True(t, f.viewBool("isPlanActive", id(0)))
		assert.True(t, f.viewBool("isPlanActiveForOwner", planOwner, id(0)))
		assert.False(t, f.viewBool("isPlanActiveForOwner", other, id(0)))
	})

	t.Run("identifiers are sequential", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1000, 365, 7)
		f.createPlan(other, 1000, 365, 7)
		f.createPlan(planOwner, 1000, 365, 7)

		assert.Equal(t, big.NewInt(3), f.view("getPlanCount")[0])
		ids := f.view("getPlansByOwner", planOwner)[0].([]*big.Int)
		require.Len(t, ids, 2)
		assert.Equal(t, int64(0), ids[0].Int64())
		assert.Equal(t, int64(2), ids[1].Int64())
	})
}

func TestStopPlan(t *testing.T) {
	f := newFixture(t)
	f.createPlan(planOwner, 1000, 365, 7)
	f.createPlan(planOwner, 1200, 365, 14)
	f.createPlan(planOwner, 1200, 365, 14)

	t.Run("not the plan owner", func(t *testing.T) {
		_, err := f.send(other, "stopPlan", id(1))
		assert.ErrorIs(t, err, subscription.ErrNotSubscriptionOwner)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := f.send(planOwner, "stopPlan", id(9))
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("stops only that plan", func(t *testing.T) {
		f.mustSend(planOwner, "stopPlan", id(1))
		assert.True(t, f.viewBool("isPlanActive", id(0)))
		assert.False(t, f.viewBool("isPlanActive", id(1)))
		assert.True(t, f.viewBool("isPlanActive", id(2)))
		assert.False(t, f.viewBool("isPlanActiveForOwner", planOwner, id(1)))
	})

	t.Run("stopped plan stays readable", func(t *testing.T) {
		plan := f.view("getPlan", id(1))
		assert.Equal(t, planOwner, plan[0])
		assert.Equal(t, false, plan[6])
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.send(subscriber, "subscribe", id(10), common.Address{})
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("paused plan owner", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.mustSend(owner, "pauseSubscriptionOwner", planOwner)
		_, err := f.send(subscriber, "subscribe", id(0), f.token)
		assert.ErrorIs(t, err, subscription.ErrPausedSubscriptionOwner)
	})

	t.Run("stopped plan", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.mustSend(planOwner, "stopPlan", id(0))
		_, err := f.send(subscriber, "subscribe", id(0), f.token)
		assert.ErrorIs(t, err, subscription.ErrPlanInactive)
	})

	t.Run("charges the first interval", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(subscriber)

		receipt := f.mustSend(subscriber, "subscribe", id(0), f.token)

		assert.Equal(t, int64(2154), f.balanceOf(subscriber))
		assert.Equal(t, int64(46), f.balanceOf(planOwner))
		assert.True(t, f.viewBool("isPlanSubscribed", id(0), subscriber))

		var charged bool
		for _, l := range receipt.Logs {
			if l.Address == f.diamond && l.Topics[0] == subscription.ABI.Events["ChargeSuccess"].ID {
				charged = true
			}
		}
		assert.True(t, charged)

		sub := f.view("getSubscription", id(0), subscriber)
		assert.Equal(t, f.token, sub[0])
		assert.Equal(t, big.NewInt(genesis.Unix()), sub[1])
		assert.Equal(t, true, sub[3])
		assert.Equal(t, []common.Address{subscriber}, f.view("getSubscribers", id(0))[0])
	})

	t.Run("already subscribed", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(planOwner)
		f.fundSubscriber(subscriber)

		f.mustSend(planOwner, "subscribe", id(0), f.token)
		f.mustSend(subscriber, "subscribe", id(0), f.token)
		_, err := f.send(subscriber, "subscribe", id(0), f.token)
		assert.ErrorIs(t, err, subscription.ErrAlreadySubscribed)
	})

	t.Run("payout address must be the plan owner", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(subscriber)

		_, err := f.send(subscriber, "subscribe0", id(0), f.token, other)
		assert.ErrorIs(t, err, subscription.ErrPayoutMismatch)

		f.mustSend(subscriber, "subscribe0", id(0), f.token, planOwner)
		assert.Equal(t, int64(46), f.balanceOf(planOwner))
	})

	t.Run("failed payment leaves no subscription", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.token20(subscriber, "mint", subscriber, big.NewInt(2200))

		_, err := f.send(subscriber, "subscribe", id(0), f.token)
		assert.ErrorIs(t, err, erc20.ErrInsufficientAllowance)
		assert.False(t, f.viewBool("isPlanSubscribed", id(0), subscriber))
		assert.Equal(t, int64(2200), f.balanceOf(subscriber))
	})
}

func TestChargeFee(t *testing.T) {
	t.Run("paused plan owner", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.mustSend(owner, "pauseSubscriptionOwner", planOwner)
		_, err := f.send(owner, "chargeFee", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrPausedSubscriptionOwner)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.send(owner, "chargeFee", id(10), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("not subscribed", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		_, err := f.send(owner, "chargeFee", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrNotSubscribed)
	})

	t.Run("only the diamond owner", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		_, err := f.send(planOwner, "chargeFee", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, diamond.ErrNotContractOwner)
	})

	t.Run("collects the next interval", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(subscriber)
		f.mustSend(subscriber, "subscribe", id(0), f.token)
		assert.Equal(t, int64(2154), f.balanceOf(subscriber))

		f.mustSend(owner, "chargeFee", id(0), f.token, subscriber)
		assert.Equal(t, int64(2108), f.balanceOf(subscriber))
		assert.Equal(t, int64(92), f.balanceOf(planOwner))
	})
}

func TestChargeWindow(t *testing.T) {
	setup := func(t *testing.T, duration uint16) *fixture {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, duration, 14)
		f.fundSubscriber(subscriber)
		f.mustSend(subscriber, "subscribe", id(0), f.token)
		return f
	}

	t.Run("interval must elapse", func(t *testing.T) {
		f := setup(t, 365)

		f.chain.Advance(13 * day)
		_, err := f.send(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrDuplicatePayment)

		f.chain.Advance(day)
		f.mustSend(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)
		assert.Equal(t, int64(2108), f.balanceOf(subscriber))

		_, err = f.send(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrDuplicatePayment)
	})

	t.Run("grace allows early charges", func(t *testing.T) {
		f := setup(t, 365)
		f.mustSend(owner, "setChargeGrace", uint32(3*24*3600))

		f.chain.Advance(11 * day)
		f.mustSend(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)

		sub := f.view("getSubscription", id(0), subscriber)
		assert.Equal(t, big.NewInt(genesis.Add(14*day).Unix()), sub[2], "early charge pays for the upcoming period")
	})

	t.Run("caller must own the plan", func(t *testing.T) {
		f := setup(t, 365)
		f.chain.Advance(14 * day)
		_, err := f.send(other, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrNotSubscriptionOwner)
	})

	t.Run("token must match", func(t *testing.T) {
		f := setup(t, 365)
		f.chain.Advance(14 * day)
		_, err := f.send(planOwner, "chargeFeeBySubscriptionOwner", id(0), other, subscriber)
		assert.ErrorIs(t, err, subscription.ErrTokenMismatch)
	})

	t.Run("term end requires renewal", func(t *testing.T) {
		f := setup(t, 28)

		f.chain.Advance(14 * day)
		f.mustSend(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)

		f.chain.Advance(14 * day)
		_, err := f.send(planOwner, "chargeFeeBySubscriptionOwner", id(0), f.token, subscriber)
		assert.ErrorIs(t, err, subscription.ErrRenewalRequired)

		f.mustSend(subscriber, "renewSubscription", id(0))
		assert.Equal(t, int64(2200-3*600), f.balanceOf(subscriber))

		_, err = f.send(subscriber, "renewSubscription", id(0))
		assert.ErrorIs(t, err, subscription.ErrDuplicatePayment)

		f.chain.Advance(14 * day)
		_, err = f.send(subscriber, "renewSubscription", id(0))
		assert.ErrorIs(t, err, subscription.ErrRenewalNotDue)
	})
}

func TestProtocolFee(t *testing.T) {
	f := newFixture(t)

	t.Run("owner only", func(t *testing.T) {
		_, err := f.send(planOwner, "setBaseContractFee", uint8(10))
		assert.ErrorIs(t, err, diamond.ErrNotContractOwner)
	})

	t.Run("bounded", func(t *testing.T) {
		_, err := f.send(owner, "setBaseContractFee", uint8(101))
		assert.ErrorIs(t, err, subscription.ErrFeeTooHigh)
	})

	t.Run("set and get", func(t *testing.T) {
		assert.Equal(t, uint8(0), f.view("getBaseContractFee")[0])
		f.mustSend(owner, "setBaseContractFee", uint8(10))
		assert.Equal(t, uint8(10), f.view("getBaseContractFee")[0])
		assert.Equal(t, uint8(10), f.view("getProtocolFee")[0])
	})

	t.Run("share is retained by the diamond", func(t *testing.T) {
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(subscriber)
		f.mustSend(subscriber, "subscribe", id(0), f.token)

		assert.Equal(t, int64(2154), f.balanceOf(subscriber))
		assert.Equal(t, int64(42), f.balanceOf(planOwner))
		assert.Equal(t, int64(4), f.balanceOf(f.diamond))
		assert.Equal(t, big.NewInt(4), f.view("getProtocolRevenue", f.token)[0])
		assert.Equal(t, big.NewInt(4), f.view("erc20Balance", f.token)[0])
	})
}

func TestCancellation(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.createPlan(planOwner, 1200, 365, 14)
		f.fundSubscriber(planOwner)
		f.fundSubscriber(subscriber)
		f.mustSend(planOwner, "subscribe", id(0), f.token)
		f.mustSend(subscriber, "subscribe", id(0), f.token)
		return f
	}

	t.Run("unknown plan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.send(subscriber, "cancelSubscription", id(0))
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
		_, err = f.send(planOwner, "forcedCancellation", id(0), other)
		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
	})

	t.Run("not subscribed", func(t *testing.T) {
		f := setup(t)
		_, err := f.send(other, "cancelSubscription", id(0))
		assert.ErrorIs(t, err, subscription.ErrNotSubscribed)
		_, err = f.send(planOwner, "forcedCancellation", id(0), other)
		assert.ErrorIs(t, err, subscription.ErrNotSubscribed)
	})

	t.Run("by subscriber", func(t *testing.T) {
		f := setup(t)
		f.mustSend(subscriber, "cancelSubscription", id(0))
		assert.True(t, f.viewBool("isPlanSubscribed", id(0), planOwner))
		assert.False(t, f.viewBool("isPlanSubscribed", id(0), subscriber))
		assert.Equal(t, []common.Address{planOwner}, f.view("getSubscribers", id(0))[0])
	})

	t.Run("forced by plan owner", func(t *testing.T) {
		f := setup(t)
		_, err := f.send(other, "forcedCancellation", id(0), subscriber)
		assert.ErrorIs(t, err, subscription.ErrNotSubscriptionOwner)

		f.mustSend(planOwner, "forcedCancellation", id(0), subscriber)
		assert.True(t, f.viewBool("isPlanSubscribed", id(0), planOwner))
		assert.False(t, f.viewBool("isPlanSubscribed", id(0), subscriber))
	})

	t.Run("resubscribe after cancellation", func(t *testing.T) {
		f := setup(t)
		f.mustSend(subscriber, "cancelSubscription", id(0))
		f.mustSend(subscriber, "subscribe", id(0), f.token)
		assert.True(t, f.viewBool("isPlanSubscribed", id(0), subscriber))
		assert.Equal(t, int64(2200-2*46), f.balanceOf(subscriber))
	})

	t.Run("unknown plan is not subscribed", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.viewBool("isPlanSubscribed", id(0), subscriber))
		assert.False(t, f.viewBool("isPlanActive", id(0)))
	})
}

func TestSubscriptionOwners(t *testing.T) {
	t.Run("owner only", func(t *testing.T) {
		f := newFixture(t)
		for _, method := range []string{"pauseSubscriptionOwner", "restoreSubscriptionOwner", "removeSubscriptionOwner"} {
			_, err := f.send(other, method, planOwner)
			assert.ErrorIs(t, err, diamond.ErrNotContractOwner, method)
		}
	})

	t.Run("pause and restore", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.viewBool("isSubscriptionOwnerPaused", planOwner))
		f.mustSend(owner, "pauseSubscriptionOwner", planOwner)
		assert.True(t, f.viewBool("isSubscriptionOwnerPaused", planOwner))
		f.mustSend(owner, "restoreSubscriptionOwner", planOwner)
		assert.False(t, f.viewBool("isSubscriptionOwnerPaused", planOwner))
		f.createPlan(planOwner, 1000, 365, 30)
	})

	t.Run("removal stops every plan of the owner", func(t *testing.T) {
		f := newFixture(t)
		f.createPlan(planOwner, 1000, 365, 30)
		f.createPlan(other, 1000, 365, 30)
		f.createPlan(planOwner, 1000, 365, 30)

		assert.False(t, f.viewBool("isSubscriptionOwnerblackListed", planOwner))
		f.mustSend(owner, "removeSubscriptionOwner", planOwner)

		assert.False(t, f.viewBool("isPlanActive", id(0)))
		assert.True(t, f.viewBool("isPlanActive", id(1)))
		assert.False(t, f.viewBool("isPlanActive", id(2)))
		assert.True(t, f.viewBool("isPlanActiveForOwner", other, id(1)))
		assert.True(t, f.viewBool("isSubscriptionOwnerblackListed", planOwner))

		f.mustSend(owner, "restoreSubscriptionOwner", planOwner)
		_, err := f.send(planOwner, "createPlan", big.NewInt(1000), true, uint16(365), uint16(30), title("p"))
		assert.ErrorIs(t, err, subscription.ErrBlockedSubscriptionOwner)
	})
}

func TestBalances(t *testing.T) {
	t.Run("native withdrawal", func(t *testing.T) {
		f := newFixture(t)
		f.chain.Fund(other, big.NewInt(100))
		_, _, err := f.chain.Transact(other, f.diamond, big.NewInt(10), nil)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(10), f.view("nativeBalance")[0])

		_, err = f.send(other, "transferBalance", owner, big.NewInt(1))
		assert.ErrorIs(t, err, diamond.ErrNotContractOwner)

		_, err = f.send(owner, "transferBalance", common.Address{}, big.NewInt(1))
		assert.ErrorIs(t, err, subscription.ErrZeroAddressTransfer)

		_, err = f.send(owner, "transferBalance", owner, big.NewInt(11))
		assert.ErrorIs(t, err, subscription.ErrInsufficientBalance)
		assert.Equal(t, big.NewInt(10), f.view("nativeBalance")[0])

		f.mustSend(owner, "transferBalance", owner, big.NewInt(10))
		assert.Equal(t, 0, f.view("nativeBalance")[0].(*big.Int).Sign())
		assert.Equal(t, big.NewInt(10), f.chain.Balance(owner))
	})

	t.Run("token withdrawal", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, 0, f.view("erc20Balance", f.token)[0].(*big.Int).Sign())
		f.token20(owner, "mint", f.diamond, big.NewInt(11))
		assert.Equal(t, big.NewInt(11), f.view("erc20Balance", f.token)[0])

		_, err := f.send(other, "transferERC20Balance", f.token, owner, big.NewInt(1))
		assert.ErrorIs(t, err, diamond.ErrNotContractOwner)

		_, err = f.send(owner, "transferERC20Balance", f.token, common.Address{}, big.NewInt(1))
		assert.ErrorIs(t, err, subscription.ErrZeroAddressTransfer)

		_, err = f.send(owner, "transferERC20Balance", f.token, owner, big.NewInt(12))
		assert.ErrorIs(t, err, subscription.ErrInsufficientTokenBalance)

		f.mustSend(owner, "transferERC20Balance", f.token, owner, big.NewInt(11))
		assert.Equal(t, int64(0), f.balanceOf(f.diamond))
		assert.Equal(t, int64(11), f.balanceOf(owner))
	})
}

func TestInitializer(t *testing.T) {
	f := newFixture(t)

	t.Run("defaults", func(t *testing.T) {
		bounds := f.view("getDurationBounds")
		assert.Equal(t, uint16(subscription.DefaultMinDuration), bounds[0])
		assert.Equal(t, uint16(subscription.DefaultMaxDuration), bounds[1])
		assert.Equal(t, uint32(0), f.view("getChargeGrace")[0])
	})

	t.Run("interface registered", func(t *testing.T) {
		input, err := diamond.DiamondLoupeABI.Pack("supportsInterface", subscription.InterfaceID)
		require.NoError(t, err)
		ret, err := f.chain.StaticCall(other, f.diamond, nil, input)
		require.NoError(t, err)
		out, err := diamond.DiamondLoupeABI.Unpack("supportsInterface", ret)
		require.NoError(t, err)
		assert.Equal(t, true, out[0])
	})

	t.Run("bounds are adjustable", func(t *testing.T) {
		_, err := f.send(owner, "setDurationBounds", uint16(30), uint16(7))
		assert.ErrorIs(t, err, subscription.ErrInvalidDuration)

		f.mustSend(owner, "setDurationBounds", uint16(1), uint16(730))
		f.createPlan(planOwner, 1000, 730, 1)
	})
}
