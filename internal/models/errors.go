package models

import "errors"

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDrawNotFound       = errors.New("draw not found")
	ErrBetNotFound        = errors.New("bet not found")
	ErrWithdrawNotFound   = errors.New("withdraw request not found")
	ErrInvalidCompartment = errors.New("invalid compartment")
	ErrInvalidBetType     = errors.New("invalid bet type")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrAlreadyProcessed   = errors.New("already processed")

	ErrBankLocked           = errors.New("bank funds are still inside the lock-in window")
	ErrDrawNotReady         = errors.New("draw is not ready for settlement")
	ErrLiveDrawExists       = errors.New("a live draw already exists")
	ErrBelowMinimumWithdraw = errors.New("amount is below the minimum withdraw")
	ErrInvalidPolicy        = errors.New("invalid interest policy")
	ErrAccountExists        = errors.New("account already exists")
	ErrEmailTaken           = errors.New("email already registered")
)
