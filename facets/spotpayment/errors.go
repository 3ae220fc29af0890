package spotpayment

import diamond "github.com/hashleap/diamond"

var (
	ErrSameAccount        = diamond.Revert("Same account transfer is not allowed")
	ErrZeroAmount         = diamond.Revert("Amount must be greater than zero")
	ErrZeroRecipient      = diamond.Revert("Recipient is the zero address")
	ErrInvalidTokenType   = diamond.Revert("Invalid token type")
	ErrNoValue            = diamond.Revert("No eth was sent")
	ErrInsufficientValue  = diamond.Revert("Insufficient tokens sent")
	ErrExcessValue        = diamond.Revert("Excess tokens sent")
	ErrWrongTokenContract = diamond.Revert("Wrong token contract")
	ErrUnexpectedValue    = diamond.Revert("Eth sent with a token payment")
	ErrInsufficientFunds  = diamond.Revert("Insufficient token balance")
	ErrAllowance          = diamond.Revert("Insufficient allowance")
	ErrEmptySymbol        = diamond.Revert("Token symbol is empty")
)
