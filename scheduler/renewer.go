// Package scheduler runs recurring subscription charges on a cron
// schedule for one plan owner.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hashleap/diamond/client"
	"github.com/hashleap/diamond/metrics"
)

// Outcome of one subscription in a renewal run
type Outcome string

const (
	Charged         Outcome = "charged"
	NotDue          Outcome = "not_due"
	RenewalRequired Outcome = "renewal_required"
	Failed          Outcome = "failed"
)

// Clock supplies the time charges are evaluated at. The in-process chain
// satisfies it with its block clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Result is the outcome for one subscriber of one plan
type Result struct {
	PlanID     *big.Int
	Subscriber common.Address
	Outcome    Outcome
	Err        error
}

// Report summarizes a renewal run
type Report struct {
	RunID   string
	Started time.Time
	Results []Result
}

// Count returns how many results had outcome o
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Renewer charges the auto-renew subscriptions of the plan owner behind
// the client's transactor
type Renewer struct {
	diamond *client.Diamond
	owner   common.Address
	clock   Clock
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

// RenewerOption configures a Renewer
type RenewerOption func(*Renewer)

// WithClock overrides the wall clock
func WithClock(c Clock) RenewerOption {
	return func(r *Renewer) {
		r.clock = c
	}
}

// WithLogger sets the run logger
func WithLogger(logger logrus.FieldLogger) RenewerOption {
	return func(r *Renewer) {
		r.logger = logger
	}
}

// WithMetrics records charge outcomes and run durations
func WithMetrics(m *metrics.Metrics) RenewerOption {
	return func(r *Renewer) {
		r.metrics = m
	}
}

// NewRenewer creates a renewer for the plans of owner. d must carry a
// transactor sending as owner.
func NewRenewer(d *client.Diamond, owner common.Address, opts ...RenewerOption) *Renewer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Renewer{
		diamond: d,
		owner:   owner,
		clock:   systemClock{},
		logger:  discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every subscriber of every active auto-renew plan of the
// owner and charges those whose payment window is open. Individual charge
// failures are reported in the result; err is set only when the plan
// state could not be read.
func (r *Renewer) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New().String(), Started: time.Now()}
	log := r.logger.WithField("run", report.RunID)

	err := r.run(ctx, report, log)
	status := "ok"
	if err != nil {
		status = "error"
		log.WithError(err).Error("renewal run failed")
	} else {
		log.WithFields(logrus.Fields{
			"charged":          report.Count(Charged),
			"not_due":          report.Count(NotDue),
			"renewal_required": report.Count(RenewalRequired),
			"failed":           report.Count(Failed),
		}).Info("renewal run completed")
	}
	if r.metrics != nil {
		r.metrics.RenewalRunsTotal.WithLabelValues(status).Inc()
		r.metrics.RenewalRunSeconds.Observe(time.Since(report.Started).Seconds())
	}
	return report, err
}

func (r *Renewer) run(ctx context.Context, report *Report, log logrus.FieldLogger) error {
	grace, err := r.diamond.GetChargeGrace(ctx)
	if err != nil {
		return fmt.Errorf("failed to read charge grace: %w", err)
	}
	ids, err := r.diamond.GetPlansByOwner(ctx, r.owner)
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		plan, err := r.diamond.GetPlan(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read plan %s: %w", id, err)
		}
		if !plan.Active || !plan.AutoRenew {
			continue
		}
		subscribers, err := r.diamond.GetSubscribers(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list subscribers of plan %s: %w", id, err)
		}

		for _, subscriber := range subscribers {
			sub, ok, err := r.diamond.GetSubscription(ctx, id, subscriber)
			if err != nil {
				return fmt.Errorf("failed to read subscription of %s: %w", subscriber.Hex(), err)
			}
			if !ok {
				continue
			}

			res := Result{PlanID: id, Subscriber: subscriber}
			open, covered := plan.Chargeable(sub, uint64(r.clock.Now().Unix()), grace)
			switch {
			case !open:
				res.Outcome = NotDue
			case !covered:
				res.Outcome = RenewalRequired
			default:
				if _, err := r.diamond.ChargeFeeBySubscriptionOwner(ctx, id, sub.Token, subscriber); err != nil {
					res.Outcome = Failed
					res.Err = err
					log.WithFields(logrus.Fields{
						"plan":       id.String(),
						"subscriber": subscriber.Hex(),
					}).WithError(err).Warn("charge failed")
				} else {
					res.Outcome = Charged
					log.WithFields(logrus.Fields{
						"plan":       id.String(),
						"subscriber": subscriber.Hex(),
					}).Debug("subscription charged")
				}
			}
			if r.metrics != nil {
				r.metrics.ChargesTotal.WithLabelValues(string(res.Outcome)).Inc()
			}
			report.Results = append(report.Results, res)
		}
	}
	return nil
}
