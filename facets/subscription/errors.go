package subscription

import diamond "github.com/hashleap/diamond"

// Custom errors
var (
	ErrPlanNotFound             = diamond.CustomError("PlanNotFound")
	ErrNotSubscriptionOwner     = diamond.CustomError("NotSubscriptionOwner")
	ErrPausedSubscriptionOwner  = diamond.CustomError("PausedSubscriptionOwner")
	ErrBlockedSubscriptionOwner = diamond.CustomError("BlockedSubscriptionOwner")
	ErrInvalidDuration          = diamond.CustomError("InvalidDuration")
	ErrZeroAddressTransfer      = diamond.CustomError("ZeroAddressTransfer")
)

// Reason-string reverts
var (
	ErrAlreadySubscribed        = diamond.Revert("Plan: already subscribed")
	ErrNotSubscribed            = diamond.Revert("Plan: not subscribed")
	ErrPlanInactive             = diamond.Revert("Plan: not active")
	ErrPayoutMismatch           = diamond.Revert("Plan: payout address is not the plan owner")
	ErrTokenMismatch            = diamond.Revert("Plan: token does not match subscription")
	ErrInvalidToken             = diamond.Revert("Plan: invalid token")
	ErrRenewalNotDue            = diamond.Revert("Plan: renewal not due")
	ErrDuplicatePayment         = diamond.Revert("Duplicate subscription payment")
	ErrRenewalRequired          = diamond.Revert("Plan Renewal required")
	ErrInvalidInterval          = diamond.Revert("Subscription: invalid payment interval")
	ErrFeeTooHigh               = diamond.Revert("Subscription: fee exceeds 100")
	ErrInsufficientBalance      = diamond.Revert("Insufficient balance in the contract")
	ErrInsufficientTokenBalance = diamond.Revert("Insufficient token balance in the contract")
)
