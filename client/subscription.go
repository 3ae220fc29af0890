package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashleap/diamond/facets/subscription"
)

// PlanParams describes a new plan
type PlanParams struct {
	Fee             *big.Int
	AutoRenew       bool
	Duration        uint16
	PaymentInterval uint16
	Title           string
}

// Title32 pads or truncates a plan title to bytes32
func Title32(title string) [32]byte {
	var out [32]byte
	copy(out[:], title)
	return out
}

// CreatePlan publishes a plan owned by the transactor and returns its id
func (d *Diamond) CreatePlan(ctx context.Context, p PlanParams) (*big.Int, *types.Receipt, error) {
	receipt, err := d.transact(ctx, subscription.ABI, nil, "createPlan", p.Fee, p.AutoRenew, p.Duration, p.PaymentInterval, Title32(p.Title))
	if err != nil {
		return nil, receipt, err
	}
	for _, l := range receipt.Logs {
		ev, err := DecodeEvent(*l)
		if err != nil || ev.Name != "NewPlan" {
			continue
		}
		if id, ok := ev.Fields["planId"].(*big.Int); ok {
			return id, receipt, nil
		}
	}
	return nil, receipt, fmt.Errorf("NewPlan event missing from receipt %s", receipt.TxHash.Hex())
}

// StopPlan deactivates a plan of the transactor
func (d *Diamond) StopPlan(ctx context.Context, planID *big.Int) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "stopPlan", planID)
}

// Subscribe joins a plan paying in token
func (d *Diamond) Subscribe(ctx context.Context, planID *big.Int, token common.Address) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "subscribe", planID, token)
}

// ChargeFeeBySubscriptionOwner charges subscriber's next period
func (d *Diamond) ChargeFeeBySubscriptionOwner(ctx context.Context, planID *big.Int, token, subscriber common.Address) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "chargeFeeBySubscriptionOwner", planID, token, subscriber)
}

// ChargeFee is the diamond owner's administrative charge
func (d *Diamond) ChargeFee(ctx context.Context, planID *big.Int, token, subscriber common.Address) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "chargeFee", planID, token, subscriber)
}

// RenewSubscription starts a new term for the transactor
func (d *Diamond) RenewSubscription(ctx context.Context, planID *big.Int) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "renewSubscription", planID)
}

// CancelSubscription leaves a plan
func (d *Diamond) CancelSubscription(ctx context.Context, planID *big.Int) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "cancelSubscription", planID)
}

// SetBaseContractFee sets the protocol share in percent
func (d *Diamond) SetBaseContractFee(ctx context.Context, fee uint8) (*types.Receipt, error) {
	return d.transact(ctx, subscription.ABI, nil, "setBaseContractFee", fee)
}

// GetPlan reads a plan
func (d *Diamond) GetPlan(ctx context.Context, planID *big.Int) (*subscription.Plan, error) {
	out, err := d.call(ctx, subscription.ABI, "getPlan", planID)
	if err != nil {
		return nil, err
	}
	return &subscription.Plan{
		Owner:           out[0].(common.Address),
		Fee:             out[1].(*big.Int),
		AutoRenew:       out[2].(bool),
		Duration:        out[3].(uint16),
		PaymentInterval: out[4].(uint16),
		Title:           out[5].([32]byte),
		Active:          out[6].(bool),
	}, nil
}

// GetPlanCount returns the number of plans ever created
func (d *Diamond) GetPlanCount(ctx context.Context) (*big.Int, error) {
	out, err := d.call(ctx, subscription.ABI, "getPlanCount")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// GetPlansByOwner lists the plan ids of owner
func (d *Diamond) GetPlansByOwner(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	out, err := d.call(ctx, subscription.ABI, "getPlansByOwner", owner)
	if err != nil {
		return nil, err
	}
	return out[0].([]*big.Int), nil
}

// GetSubscribers lists the current subscribers of a plan
func (d *Diamond) GetSubscribers(ctx context.Context, planID *big.Int) ([]common.Address, error) {
	out, err := d.call(ctx, subscription.ABI, "getSubscribers", planID)
	if err != nil {
		return nil, err
	}
	return out[0].([]common.Address), nil
}

// GetSubscription reads subscriber's record; ok is false when there is none
func (d *Diamond) GetSubscription(ctx context.Context, planID *big.Int, subscriber common.Address) (sub *subscription.Subscription, ok bool, err error) {
	out, err := d.call(ctx, subscription.ABI, "getSubscription", planID, subscriber)
	if err != nil {
		return nil, false, err
	}
	if !out[3].(bool) {
		return nil, false, nil
	}
	return &subscription.Subscription{
		Token:      out[0].(common.Address),
		Start:      out[1].(*big.Int).Uint64(),
		LastCharge: out[2].(*big.Int).Uint64(),
	}, true, nil
}

// IsPlanSubscribed reports whether subscriber is on the plan
func (d *Diamond) IsPlanSubscribed(ctx context.Context, planID *big.Int, subscriber common.Address) (bool, error) {
	out, err := d.call(ctx, subscription.ABI, "isPlanSubscribed", planID, subscriber)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// GetChargeGrace returns how early, in seconds, a period may be charged
func (d *Diamond) GetChargeGrace(ctx context.Context) (uint32, error) {
	out, err := d.call(ctx, subscription.ABI, "getChargeGrace")
	if err != nil {
		return 0, err
	}
	return out[0].(uint32), nil
}
