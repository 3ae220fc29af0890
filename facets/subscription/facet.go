// Package subscription implements the plan registry and recurring billing
// facet of the diamond.
//
// Plan owners publish plans; subscribers pay each payment interval in an
// ERC-20 token they approved to the diamond. A protocol share of every
// charge, set by the diamond owner as a percentage, is retained by the
// diamond.
package subscription

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/erc20"
)

// MaxBaseContractFee is the highest protocol share, in percent
const MaxBaseContractFee = 100

// Facet is the SubscriptionFacet contract
type Facet struct {
	*diamond.Dispatcher
}

// NewFacet creates the facet code
func NewFacet() *Facet {
	f := &Facet{}
	f.Dispatcher = diamond.MustDispatcher(ABI, map[string]diamond.Handler{
		"createPlan":                     f.createPlan,
		"stopPlan":                       f.stopPlan,
		"subscribe":                      f.subscribe,
		"subscribe0":                     f.subscribeWithOwner,
		"chargeFee":                      f.chargeFee,
		"chargeFeeBySubscriptionOwner":   f.chargeFeeBySubscriptionOwner,
		"renewSubscription":              f.renewSubscription,
		"cancelSubscription":             f.cancelSubscription,
		"forcedCancellation":             f.forcedCancellation,
		"pauseSubscriptionOwner":         f.pauseSubscriptionOwner,
		"restoreSubscriptionOwner":       f.restoreSubscriptionOwner,
		"removeSubscriptionOwner":        f.removeSubscriptionOwner,
		"setBaseContractFee":             f.setBaseContractFee,
		"getBaseContractFee":             f.getBaseContractFee,
		"setProtocolFee":                 f.setBaseContractFee,
		"getProtocolFee":                 f.getBaseContractFee,
		"setDurationBounds":              f.setDurationBounds,
		"getDurationBounds":              f.getDurationBounds,
		"setChargeGrace":                 f.setChargeGrace,
		"getChargeGrace":                 f.getChargeGrace,
		"transferBalance":                f.transferBalance,
		"transferERC20Balance":           f.transferERC20Balance,
		"nativeBalance":                  f.nativeBalance,
		"erc20Balance":                   f.erc20Balance,
		"getProtocolRevenue":             f.getProtocolRevenue,
		"getPlan":                        f.getPlan,
		"getPlanCount":                   f.getPlanCount,
		"getPlansByOwner":                f.getPlansByOwner,
		"getSubscribers":                 f.getSubscribers,
		"getSubscription":                f.getSubscription,
		"isPlanActive":                   f.isPlanActive,
		"isPlanActiveForOwner":           f.isPlanActiveForOwner,
		"isPlanSubscribed":               f.isPlanSubscribed,
		"isSubscriptionOwnerPaused":      f.isSubscriptionOwnerPaused,
		"isSubscriptionOwnerblackListed": f.isSubscriptionOwnerBlacklisted,
	})
	return f
}

// ============================================================================
// Plans
// ============================================================================

func (f *Facet) createPlan(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	fee := diamond.Arg[*big.Int](args, 0)
	autoRenew := diamond.Arg[bool](args, 1)
	duration := diamond.Arg[uint16](args, 2)
	interval := diamond.Arg[uint16](args, 3)
	title := diamond.Arg[[32]byte](args, 4)

	s := load(env)
	if err := s.checkOwner(env.Caller); err != nil {
		return nil, err
	}
	if !s.validDuration(duration) {
		return nil, ErrInvalidDuration.WithDetails(map[string]interface{}{
			"duration": duration,
			"min":      s.MinDuration,
			"max":      s.MaxDuration,
		})
	}
	if interval == 0 || interval > duration {
		return nil, ErrInvalidInterval
	}

	id := uint64(len(s.Plans))
	s.Plans = append(s.Plans, &Plan{
		Owner:           env.Caller,
		Fee:             new(big.Int).Set(fee),
		AutoRenew:       autoRenew,
		Duration:        duration,
		PaymentInterval: interval,
		Title:           title,
		Active:          true,
	})
	s.PlansByOwner[env.Caller] = append(s.PlansByOwner[env.Caller], id)

	planID := new(big.Int).SetUint64(id)
	if err := diamond.EmitEvent(env, ABI, "NewPlan", planID, env.Caller, fee, autoRenew, duration, interval, title); err != nil {
		return nil, err
	}
	return []interface{}{planID}, nil
}

func (f *Facet) stopPlan(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	_, plan, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	if plan.Owner != env.Caller {
		return nil, ErrNotSubscriptionOwner
	}
	plan.Active = false
	return nil, diamond.EmitEvent(env, ABI, "PlanStopped", diamond.Arg[*big.Int](args, 0), plan.Owner)
}

// ============================================================================
// Subscriptions
// ============================================================================

func (f *Facet) subscribe(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return nil, f.doSubscribe(env, diamond.Arg[*big.Int](args, 0), diamond.Arg[common.Address](args, 1), nil)
}

func (f *Facet) subscribeWithOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	payout := diamond.Arg[common.Address](args, 2)
	return nil, f.doSubscribe(env, diamond.Arg[*big.Int](args, 0), diamond.Arg[common.Address](args, 1), &payout)
}

func (f *Facet) doSubscribe(env *diamond.Env, rawID *big.Int, token common.Address, payout *common.Address) error {
	s := load(env)
	id, plan, err := s.plan(rawID)
	if err != nil {
		return err
	}
	if payout != nil && *payout != plan.Owner {
		return ErrPayoutMismatch
	}
	if err := s.checkOwner(plan.Owner); err != nil {
		return err
	}
	if !plan.Active {
		return ErrPlanInactive
	}
	if _, ok := s.subscription(id, env.Caller); ok {
		return ErrAlreadySubscribed
	}
	if token == (common.Address{}) {
		return ErrInvalidToken
	}

	now := env.Host.Timestamp()
	s.addSubscription(id, env.Caller, &Subscription{Token: token, Start: now, LastCharge: now})
	return collect(env, s, id, plan, env.Caller, token)
}

// chargeFee is the diamond owner's administrative charge: it collects the
// next period immediately, without waiting for the payment window.
func (f *Facet) chargeFee(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	s := load(env)
	id, plan, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(plan.Owner); err != nil {
		return nil, err
	}
	return nil, charge(env, s, id, plan, diamond.Arg[common.Address](args, 1), diamond.Arg[common.Address](args, 2), false)
}

func (f *Facet) chargeFeeBySubscriptionOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	id, plan, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	if plan.Owner != env.Caller {
		return nil, ErrNotSubscriptionOwner
	}
	if err := s.checkOwner(plan.Owner); err != nil {
		return nil, err
	}
	return nil, charge(env, s, id, plan, diamond.Arg[common.Address](args, 1), diamond.Arg[common.Address](args, 2), true)
}

func charge(env *diamond.Env, s *subscriptionStorage, id uint64, plan *Plan, token, subscriber common.Address, window bool) error {
	if !plan.Active {
		return ErrPlanInactive
	}
	sub, ok := s.subscription(id, subscriber)
	if !ok {
		return ErrNotSubscribed
	}
	if token != sub.Token {
		return ErrTokenMismatch
	}

	now := env.Host.Timestamp()
	if window && now+uint64(s.ChargeGrace) < plan.DueAt(sub) {
		return ErrDuplicatePayment.WithDetails(map[string]interface{}{
			"due": plan.DueAt(sub),
			"now": now,
		})
	}
	periodStart := plan.PeriodStart(sub, now)
	if !plan.Covers(sub, periodStart) {
		return ErrRenewalRequired
	}
	sub.LastCharge = periodStart
	return collect(env, s, id, plan, subscriber, token)
}

func (f *Facet) renewSubscription(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	id, plan, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(plan.Owner); err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}
	sub, ok := s.subscription(id, env.Caller)
	if !ok {
		return nil, ErrNotSubscribed
	}

	now := env.Host.Timestamp()
	open, covered := plan.Chargeable(sub, now, s.ChargeGrace)
	if !open {
		return nil, ErrDuplicatePayment
	}
	if covered {
		return nil, ErrRenewalNotDue
	}

	sub.Start = now
	sub.LastCharge = now
	if err := diamond.EmitEvent(env, ABI, "SubscriptionRenewed", new(big.Int).SetUint64(id), env.Caller, new(big.Int).SetUint64(now)); err != nil {
		return nil, err
	}
	return nil, collect(env, s, id, plan, env.Caller, sub.Token)
}

func (f *Facet) cancelSubscription(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	id, _, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	return nil, cancel(env, s, id, env.Caller, false)
}

func (f *Facet) forcedCancellation(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	id, plan, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	if plan.Owner != env.Caller {
		return nil, ErrNotSubscriptionOwner
	}
	return nil, cancel(env, s, id, diamond.Arg[common.Address](args, 1), true)
}

func cancel(env *diamond.Env, s *subscriptionStorage, id uint64, subscriber common.Address, forced bool) error {
	if _, ok := s.subscription(id, subscriber); !ok {
		return ErrNotSubscribed
	}
	s.removeSubscription(id, subscriber)
	return diamond.EmitEvent(env, ABI, "SubscriptionCancelled", new(big.Int).SetUint64(id), subscriber, forced)
}

// collect moves one interval's charge from subscriber: the plan owner's
// payout first, then the protocol share to the diamond. State is updated
// before the token calls.
func collect(env *diamond.Env, s *subscriptionStorage, id uint64, plan *Plan, subscriber, token common.Address) error {
	amount := plan.ChargeAmount()
	protocolFee := new(big.Int).Mul(amount, big.NewInt(int64(s.BaseContractFee)))
	protocolFee.Quo(protocolFee, big.NewInt(100))
	payout := new(big.Int).Sub(amount, protocolFee)
	owner := plan.Owner

	if protocolFee.Sign() > 0 {
		revenue, ok := s.ProtocolRevenue[token]
		if !ok {
			revenue = new(big.Int)
		}
		s.ProtocolRevenue[token] = new(big.Int).Add(revenue, protocolFee)
	}

	now := new(big.Int).SetUint64(env.Host.Timestamp())
	if err := diamond.EmitEvent(env, ABI, "ChargeSuccess", new(big.Int).SetUint64(id), subscriber, token, amount, protocolFee, now); err != nil {
		return err
	}

	tok := erc20.At(env, token)
	if err := tok.TransferFrom(subscriber, owner, payout); err != nil {
		return err
	}
	if protocolFee.Sign() > 0 {
		return tok.TransferFrom(subscriber, env.Self, protocolFee)
	}
	return nil
}

// ============================================================================
// Subscription owners
// ============================================================================

func (f *Facet) pauseSubscriptionOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return nil, setOwnerStatus(env, diamond.Arg[common.Address](args, 0), func(st *ownerStatus) {
		st.Paused = true
	})
}

func (f *Facet) restoreSubscriptionOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return nil, setOwnerStatus(env, diamond.Arg[common.Address](args, 0), func(st *ownerStatus) {
		st.Paused = false
	})
}

// removeSubscriptionOwner blacklists owner for good and stops every plan
// they own
func (f *Facet) removeSubscriptionOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	owner := diamond.Arg[common.Address](args, 0)
	err := setOwnerStatus(env, owner, func(st *ownerStatus) {
		st.Blacklisted = true
	})
	if err != nil {
		return nil, err
	}

	s := load(env)
	for _, id := range s.PlansByOwner[owner] {
		plan := s.Plans[id]
		if !plan.Active {
			continue
		}
		plan.Active = false
		if err := diamond.EmitEvent(env, ABI, "PlanStopped", new(big.Int).SetUint64(id), owner); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func setOwnerStatus(env *diamond.Env, owner common.Address, update func(*ownerStatus)) error {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return err
	}
	s := load(env)
	status := s.Owners[owner]
	update(&status)
	s.Owners[owner] = status
	return diamond.EmitEvent(env, ABI, "SubscriptionOwnerStatusChanged", owner, status.Paused, status.Blacklisted)
}

// ============================================================================
// Protocol parameters
// ============================================================================

func (f *Facet) setBaseContractFee(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	fee := diamond.Arg[uint8](args, 0)
	if fee > MaxBaseContractFee {
		return nil, ErrFeeTooHigh
	}
	s := load(env)
	previous := s.BaseContractFee
	s.BaseContractFee = fee
	return nil, diamond.EmitEvent(env, ABI, "BaseContractFeeUpdated", previous, fee)
}

func (f *Facet) getBaseContractFee(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).BaseContractFee}, nil
}

func (f *Facet) setDurationBounds(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	return nil, setDurationBounds(load(env), diamond.Arg[uint16](args, 0), diamond.Arg[uint16](args, 1))
}

func setDurationBounds(s *subscriptionStorage, minDuration, maxDuration uint16) error {
	if minDuration == 0 || minDuration > maxDuration {
		return ErrInvalidDuration
	}
	s.MinDuration = minDuration
	s.MaxDuration = maxDuration
	return nil
}

func (f *Facet) getDurationBounds(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	s := load(env)
	return []interface{}{s.MinDuration, s.MaxDuration}, nil
}

func (f *Facet) setChargeGrace(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	load(env).ChargeGrace = diamond.Arg[uint32](args, 0)
	return nil, nil
}

func (f *Facet) getChargeGrace(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).ChargeGrace}, nil
}

// ============================================================================
// Balances
// ============================================================================

func (f *Facet) transferBalance(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	to := diamond.Arg[common.Address](args, 0)
	amount := diamond.Arg[*big.Int](args, 1)
	if to == (common.Address{}) {
		return nil, ErrZeroAddressTransfer
	}
	if env.Host.Balance(env.Self).Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}
	if err := diamond.EmitEvent(env, ABI, "BalanceWithdrawn", common.Address{}, to, amount); err != nil {
		return nil, err
	}
	_, err := env.Host.Call(env.Self, to, amount, nil)
	return nil, err
}

func (f *Facet) transferERC20Balance(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	if err := diamond.EnforceIsContractOwner(env); err != nil {
		return nil, err
	}
	token := diamond.Arg[common.Address](args, 0)
	to := diamond.Arg[common.Address](args, 1)
	amount := diamond.Arg[*big.Int](args, 2)
	if to == (common.Address{}) {
		return nil, ErrZeroAddressTransfer
	}
	tok := erc20.At(env, token)
	balance, err := tok.BalanceOf(env.Self)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientTokenBalance
	}
	if err := diamond.EmitEvent(env, ABI, "BalanceWithdrawn", token, to, amount); err != nil {
		return nil, err
	}
	return nil, tok.Transfer(to, amount)
}

func (f *Facet) nativeBalance(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{env.Host.Balance(env.Self)}, nil
}

func (f *Facet) erc20Balance(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	balance, err := erc20.At(env, diamond.Arg[common.Address](args, 0)).BalanceOf(env.Self)
	if err != nil {
		return nil, err
	}
	return []interface{}{balance}, nil
}

func (f *Facet) getProtocolRevenue(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	revenue, ok := load(env).ProtocolRevenue[diamond.Arg[common.Address](args, 0)]
	if !ok {
		revenue = new(big.Int)
	}
	return []interface{}{new(big.Int).Set(revenue)}, nil
}

// ============================================================================
// Views
// ============================================================================

func (f *Facet) getPlan(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	_, plan, err := load(env).plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	return []interface{}{
		plan.Owner,
		new(big.Int).Set(plan.Fee),
		plan.AutoRenew,
		plan.Duration,
		plan.PaymentInterval,
		plan.Title,
		plan.Active,
	}, nil
}

func (f *Facet) getPlanCount(env *diamond.Env, _ []interface{}) ([]interface{}, error) {
	return []interface{}{big.NewInt(int64(len(load(env).Plans)))}, nil
}

func (f *Facet) getPlansByOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	ids := load(env).PlansByOwner[diamond.Arg[common.Address](args, 0)]
	out := make([]*big.Int, len(ids))
	for i, id := range ids {
		out[i] = new(big.Int).SetUint64(id)
	}
	return []interface{}{out}, nil
}

func (f *Facet) getSubscribers(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	s := load(env)
	id, _, err := s.plan(diamond.Arg[*big.Int](args, 0))
	if err != nil {
		return nil, err
	}
	return []interface{}{append([]common.Address{}, s.Subscribers[id]...)}, nil
}

func (f *Facet) getSubscription(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	sub, ok := subscriptionOf(load(env), diamond.Arg[*big.Int](args, 0), diamond.Arg[common.Address](args, 1))
	if !ok {
		return []interface{}{common.Address{}, new(big.Int), new(big.Int), false}, nil
	}
	return []interface{}{
		sub.Token,
		new(big.Int).SetUint64(sub.Start),
		new(big.Int).SetUint64(sub.LastCharge),
		true,
	}, nil
}

func (f *Facet) isPlanActive(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	_, plan, err := load(env).plan(diamond.Arg[*big.Int](args, 0))
	return []interface{}{err == nil && plan.Active}, nil
}

func (f *Facet) isPlanActiveForOwner(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	owner := diamond.Arg[common.Address](args, 0)
	_, plan, err := load(env).plan(diamond.Arg[*big.Int](args, 1))
	return []interface{}{err == nil && plan.Active && plan.Owner == owner}, nil
}

func (f *Facet) isPlanSubscribed(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	_, ok := subscriptionOf(load(env), diamond.Arg[*big.Int](args, 0), diamond.Arg[common.Address](args, 1))
	return []interface{}{ok}, nil
}

func (f *Facet) isSubscriptionOwnerPaused(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).Owners[diamond.Arg[common.Address](args, 0)].Paused}, nil
}

func (f *Facet) isSubscriptionOwnerBlacklisted(env *diamond.Env, args []interface{}) ([]interface{}, error) {
	return []interface{}{load(env).Owners[diamond.Arg[common.Address](args, 0)].Blacklisted}, nil
}

func subscriptionOf(s *subscriptionStorage, rawID *big.Int, subscriber common.Address) (*Subscription, bool) {
	id, _, err := s.plan(rawID)
	if err != nil {
		return nil, false
	}
	return s.subscription(id, subscriber)
}
