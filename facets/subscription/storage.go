package subscription

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
)

// StoragePosition is the namespace of the billing state inside the diamond
var StoragePosition = diamond.StoragePosition("hashleap.subscription.storage")

// Day is the unit of plan durations and payment intervals, in seconds
const Day = 24 * 60 * 60

// Default plan duration bounds, in days
const (
	DefaultMinDuration = 7
	DefaultMaxDuration = 365
)

// Plan is a subscription offering
type Plan struct {
	Owner           common.Address
	Fee             *big.Int
	AutoRenew       bool
	Duration        uint16
	PaymentInterval uint16
	Title           [32]byte
	Active          bool
}

// ChargeAmount is the amount collected per payment interval:
// fee * paymentInterval / duration, truncated.
func (p *Plan) ChargeAmount() *big.Int {
	amount := new(big.Int).Mul(p.Fee, big.NewInt(int64(p.PaymentInterval)))
	return amount.Quo(amount, big.NewInt(int64(p.Duration)))
}

// Subscription is one subscriber's record on a plan. LastCharge is the
// start of the most recently paid period.
type Subscription struct {
	Token      common.Address
	Start      uint64
	LastCharge uint64
}

type ownerStatus struct {
	Paused      bool
	Blacklisted bool
}

type subscriptionStorage struct {
	Plans         []*Plan
	Subscriptions map[uint64]map[common.Address]*Subscription
	Subscribers   map[uint64][]common.Address
	PlansByOwner  map[common.Address][]uint64
	Owners        map[common.Address]ownerStatus

	BaseContractFee uint8
	MinDuration     uint16
	MaxDuration     uint16
	ChargeGrace     uint32

	ProtocolRevenue map[common.Address]*big.Int
}

func newSubscriptionStorage() *subscriptionStorage {
	return &subscriptionStorage{
		Subscriptions:   make(map[uint64]map[common.Address]*Subscription),
		Subscribers:     make(map[uint64][]common.Address),
		PlansByOwner:    make(map[common.Address][]uint64),
		Owners:          make(map[common.Address]ownerStatus),
		MinDuration:     DefaultMinDuration,
		MaxDuration:     DefaultMaxDuration,
		ProtocolRevenue: make(map[common.Address]*big.Int),
	}
}

func (s *subscriptionStorage) Clone() diamond.Slot {
	c := &subscriptionStorage{
		Plans:           make([]*Plan, len(s.Plans)),
		Subscriptions:   make(map[uint64]map[common.Address]*Subscription, len(s.Subscriptions)),
		Subscribers:     make(map[uint64][]common.Address, len(s.Subscribers)),
		PlansByOwner:    make(map[common.Address][]uint64, len(s.PlansByOwner)),
		Owners:          make(map[common.Address]ownerStatus, len(s.Owners)),
		BaseContractFee: s.BaseContractFee,
		MinDuration:     s.MinDuration,
		MaxDuration:     s.MaxDuration,
		ChargeGrace:     s.ChargeGrace,
		ProtocolRevenue: make(map[common.Address]*big.Int, len(s.ProtocolRevenue)),
	}
	for i, p := range s.Plans {
		plan := *p
		plan.Fee = new(big.Int).Set(p.Fee)
		c.Plans[i] = &plan
	}
	for id, subs := range s.Subscriptions {
		m := make(map[common.Address]*Subscription, len(subs))
		for addr, sub := range subs {
			cp := *sub
			m[addr] = &cp
		}
		c.Subscriptions[id] = m
	}
	for id, addrs := range s.Subscribers {
		c.Subscribers[id] = append([]common.Address(nil), addrs...)
	}
	for owner, ids := range s.PlansByOwner {
		c.PlansByOwner[owner] = append([]uint64(nil), ids...)
	}
	for k, v := range s.Owners {
		c.Owners[k] = v
	}
	for k, v := range s.ProtocolRevenue {
		c.ProtocolRevenue[k] = new(big.Int).Set(v)
	}
	return c
}

func load(env *diamond.Env) *subscriptionStorage {
	return diamond.LoadSlot(env, StoragePosition, newSubscriptionStorage)
}

// plan resolves a plan id or reverts PlanNotFound
func (s *subscriptionStorage) plan(id *big.Int) (uint64, *Plan, error) {
	if id == nil || !id.IsUint64() || id.Uint64() >= uint64(len(s.Plans)) {
		return 0, nil, ErrPlanNotFound
	}
	return id.Uint64(), s.Plans[id.Uint64()], nil
}

func (s *subscriptionStorage) subscription(planID uint64, subscriber common.Address) (*Subscription, bool) {
	sub, ok := s.Subscriptions[planID][subscriber]
	return sub, ok
}

func (s *subscriptionStorage) addSubscription(planID uint64, subscriber common.Address, sub *Subscription) {
	if s.Subscriptions[planID] == nil {
		s.Subscriptions[planID] = make(map[common.Address]*Subscription)
	}
	s.Subscriptions[planID][subscriber] = sub
	s.Subscribers[planID] = append(s.Subscribers[planID], subscriber)
}

func (s *subscriptionStorage) removeSubscription(planID uint64, subscriber common.Address) {
	delete(s.Subscriptions[planID], subscriber)
	addrs := s.Subscribers[planID]
	for i, addr := range addrs {
		if addr == subscriber {
			s.Subscribers[planID] = append(addrs[:i:i], addrs[i+1:]...)
			break
		}
	}
}

// checkOwner reverts when a plan owner is blacklisted or paused
func (s *subscriptionStorage) checkOwner(owner common.Address) error {
	status := s.Owners[owner]
	if status.Blacklisted {
		return ErrBlockedSubscriptionOwner
	}
	if status.Paused {
		return ErrPausedSubscriptionOwner
	}
	return nil
}

func (s *subscriptionStorage) validDuration(duration uint16) bool {
	return duration >= s.MinDuration && duration <= s.MaxDuration
}
