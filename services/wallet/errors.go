package wallet

import "errors"

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInsufficientBalance is returned when a debit would drive the wallet
	// balance negative.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrUserNotFound is returned when the wallet owner does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotPendingReview is returned when settlement finds the task no
	// longer pending review.
	ErrTaskNotPendingReview = errors.New("task is not pending review")
)
