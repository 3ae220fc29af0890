package subscription

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChargeAmount(t *testing.T) {
	tests := []struct {
		name     string
		fee      int64
		duration uint16
		interval uint16
		want     int64
	}{
		{"two weeks of a year", 1200, 365, 14, 46},
		{"weekly", 1000, 365, 7, 19},
		{"whole term", 500, 30, 30, 500},
		{"truncated to zero", 10, 365, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Plan{Fee: big.NewInt(tt.fee), Duration: tt.duration, PaymentInterval: tt.interval}
			assert.Equal(t, tt.want, p.ChargeAmount().Int64())
		})
	}
}

func TestChargeable(t *testing.T) {
	const start = 1_000_000
	p := &Plan{Fee: big.NewInt(1200), Duration: 28, PaymentInterval: 14}
	sub := &Subscription{Start: start, LastCharge: start}

	tests := []struct {
		name        string
		lastCharge  uint64
		now         uint64
		grace       uint32
		wantOpen    bool
		wantCovered bool
	}{
		{"before due", start, start + 13*Day, 0, false, true},
		{"at due", start, start + 14*Day, 0, true, true},
		{"inside grace", start, start + 12*Day, 2 * Day, true, true},
		{"outside grace", start, start + 11*Day, 2 * Day, false, true},
		{"last period paid", start + 14*Day, start + 28*Day, 0, true, false},
		{"late charge past term", start, start + 15*Day, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub.LastCharge = tt.lastCharge
			open, covered := p.Chargeable(sub, tt.now, tt.grace)
			assert.Equal(t, tt.wantOpen, open)
			assert.Equal(t, tt.wantCovered, covered)
		})
	}
}

func TestPeriodStart(t *testing.T) {
	p := &Plan{Duration: 365, PaymentInterval: 30}
	sub := &Subscription{Start: 0, LastCharge: 0}

	t.Run("early charge pays the upcoming period", func(t *testing.T) {
		assert.Equal(t, uint64(30*Day), p.PeriodStart(sub, 28*Day))
	})

	t.Run("late charge starts now", func(t *testing.T) {
		assert.Equal(t, uint64(40*Day), p.PeriodStart(sub, 40*Day))
	})
}

func TestStorageClone(t *testing.T) {
	s := newSubscriptionStorage()
	s.Plans = append(s.Plans, &Plan{Owner: [20]byte{1}, Fee: big.NewInt(10), Active: true})
	s.addSubscription(0, [20]byte{2}, &Subscription{Start: 1, LastCharge: 1})
	s.ProtocolRevenue[[20]byte{3}] = big.NewInt(5)

	c := s.Clone().(*subscriptionStorage)
	c.Plans[0].Active = false
	c.Plans[0].Fee.SetInt64(99)
	c.Subscriptions[0][[20]byte{2}].LastCharge = 7
	c.removeSubscription(0, [20]byte{2})
	c.ProtocolRevenue[[20]byte{3}].SetInt64(6)

	assert.True(t, s.Plans[0].Active)
	assert.Equal(t, int64(10), s.Plans[0].Fee.Int64())
	assert.Equal(t, uint64(1), s.Subscriptions[0][[20]byte{2}].LastCharge)
	assert.Len(t, s.Subscribers[0], 1)
	assert.Equal(t, int64(5), s.ProtocolRevenue[[20]byte{3}].Int64())
}
