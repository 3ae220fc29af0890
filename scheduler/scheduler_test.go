package scheduler_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashleap/diamond/chain"
	"github.com/hashleap/diamond/client"
	"github.com/hashleap/diamond/deploy"
	"github.com/hashleap/diamond/erc20"
	"github.com/hashleap/diamond/facets/subscription"
	"github.com/hashleap/diamond/metrics"
	"github.com/hashleap/diamond/scheduler"
)

var (
	owner     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	planOwner = common.HexToAddress("0x2000000000000000000000000000000000000002")
	alice     = common.HexToAddress("0x3000000000000000000000000000000000000003")
	bob       = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

type fixture struct {
	chain   *chain.Chain
	owner   *client.Diamond
	token   common.Address
	diamond common.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	c := chain.New(chain.WithGenesisTime(time.Unix(1_700_000_000, 0)))
	d := deploy.New(c, owner)
	dep, err := d.DeployDiamond(ctx)
	require.NoError(t, err)
	require.NoError(t, d.DeployPayments(ctx, dep, subscription.DefaultConfig()))
	token, _, err := c.Deploy(owner, erc20.NewToken("Test", "TST", 18), nil)
	require.NoError(t, err)

	return &fixture{
		chain:   c,
		owner:   client.New(dep.Diamond, c, client.WithTransactor(client.NewChainTransactor(c, planOwner))),
		token:   token,
		diamond: dep.Diamond,
	}
}

func (f *fixture) token20(t *testing.T, from common.Address, method string, args ...interface{}) {
	t.Helper()
	input, err := erc20.ABI.Pack(method, args...)
	require.NoError(t, err)
	_, _, err = f.chain.Transact(from, f.token, nil, input)
	require.NoError(t, err)
}

func (f *fixture) subscribe(t *testing.T, who common.Address, planID *big.Int) {
	t.Helper()
	f.token20(t, who, "mint", who, big.NewInt(10_000))
	f.token20(t, who, "approve", f.diamond, big.NewInt(10_000))
	c := client.New(f.diamond, f.chain, client.WithTransactor(client.NewChainTransactor(f.chain, who)))
	_, err := c.Subscribe(context.Background(), planID, f.token)
	require.NoError(t, err)
}

func (f *fixture) plan(t *testing.T, autoRenew bool, duration, interval uint16) *big.Int {
	t.Helper()
	id, _, err := f.owner.CreatePlan(context.Background(), client.PlanParams{
		Fee:             big.NewInt(1200),
		AutoRenew:       autoRenew,
		Duration:        duration,
		PaymentInterval: interval,
		Title:           "plan",
	})
	require.NoError(t, err)
	return id
}

func TestRenewerRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	renewing := f.plan(t, true, 365, 14)
	manual := f.plan(t, false, 365, 14)
	short := f.plan(t, true, 14, 14)
	f.subscribe(t, alice, renewing)
	f.subscribe(t, bob, renewing)
	f.subscribe(t, alice, manual)
	f.subscribe(t, bob, short)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	r := scheduler.NewRenewer(f.owner, planOwner, scheduler.WithClock(f.chain), scheduler.WithMetrics(m))

	t.Run("nothing due yet", func(t *testing.T) {
		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, report.RunID)
		assert.Equal(t, 3, report.Count(scheduler.NotDue))
		assert.Equal(t, 0, report.Count(scheduler.Charged))
	})

	f.chain.Advance(14 * 24 * time.Hour)

	t.Run("charges open windows", func(t *testing.T) {
		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Count(scheduler.Charged))
		assert.Equal(t, 1, report.Count(scheduler.RenewalRequired))

		for _, res := range report.Results {
			if res.Outcome == scheduler.RenewalRequired {
				assert.Equal(t, bob, res.Subscriber)
				assert.Equal(t, short.Int64(), res.PlanID.Int64())
			}
		}
	})

	t.Run("charged subscriptions are not due again", func(t *testing.T) {
		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Count(scheduler.Charged))
		assert.Equal(t, 2, report.Count(scheduler.NotDue))
	})

	f.chain.Advance(14 * 24 * time.Hour)

	t.Run("failed charges are reported", func(t *testing.T) {
		f.token20(t, alice, "approve", f.diamond, big.NewInt(0))

		report, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Count(scheduler.Charged))
		require.Equal(t, 1, report.Count(scheduler.Failed))
		for _, res := range report.Results {
			if res.Outcome == scheduler.Failed {
				assert.Equal(t, alice, res.Subscriber)
				assert.ErrorIs(t, res.Err, erc20.ErrInsufficientAllowance)
			}
		}
	})

	t.Run("metrics", func(t *testing.T) {
		assert.Equal(t, float64(4), testutil.ToFloat64(m.RenewalRunsTotal.WithLabelValues("ok")))
		assert.Equal(t, float64(3), testutil.ToFloat64(m.ChargesTotal.WithLabelValues("charged")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ChargesTotal.WithLabelValues("failed")))
	})
}

func TestScheduler(t *testing.T) {
	f := newFixture(t)
	r := scheduler.NewRenewer(f.owner, planOwner)

	t.Run("invalid schedule", func(t *testing.T) {
		_, err := scheduler.New(r, "not a cron")
		assert.Error(t, err)
	})

	t.Run("default schedule", func(t *testing.T) {
		s, err := scheduler.New(r, "")
		require.NoError(t, err)
		assert.Equal(t, scheduler.DefaultSchedule, s.Spec())
	})

	t.Run("start and stop", func(t *testing.T) {
		s, err := scheduler.New(r, "*/5 * * * *")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, s.Start(ctx))
		assert.ErrorIs(t, s.Start(ctx), scheduler.ErrAlreadyStarted)

		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
		defer stopCancel()
		assert.NoError(t, s.Stop(stopCtx))
		assert.NoError(t, s.Stop(stopCtx))
	})
}
