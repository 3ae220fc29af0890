package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs renewals at five past every hour
const DefaultSchedule = "5 * * * *"

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("scheduler already started")

// Scheduler triggers a Renewer on a cron schedule. Overlapping runs are
// skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	renewer *Renewer
	spec    string
	started bool
	logger  logrus.FieldLogger
}

// New creates a scheduler; spec is a standard five-field cron expression
func New(renewer *Renewer, spec string) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid renewal schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		renewer: renewer,
		spec:    spec,
		logger:  renewer.logger,
	}, nil
}

// Start registers the renewal job and starts the cron loop. Runs use ctx
// and stop when it is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		_, _ = s.renewer.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule renewals: %w", err)
	}
	s.cron.Start()
	s.started = true
	s.logger.WithField("schedule", s.spec).Info("renewal scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running renewal to finish or
// ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("renewal scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Spec returns the cron expression
func (s *Scheduler) Spec() string {
	return s.spec
}
