package crosschain

import diamond "github.com/hashleap/diamond"

var (
	ErrGatewayNotSet      = diamond.Revert("Source chain address not set")
	ErrWrongTokenContract = diamond.Revert("Wrong token contract")
	ErrZeroAmount         = diamond.Revert("Amount must be greater than zero")
	ErrZeroRecipient      = diamond.Revert("Recipient is the zero address")
	ErrEmptyChain         = diamond.Revert("Chain name is empty")
)
