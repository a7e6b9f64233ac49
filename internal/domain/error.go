package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Payment workflow errors. Unavailable is transient and must be retried
	// by the caller; rejected is permanent for the attempt.
	ErrGatewayUnavailable     = errors.New("payment gateway unavailable")
	ErrGatewayRejected        = errors.New("payment gateway rejected the request")
	ErrDuplicateReference     = errors.New("payment reference already exists")
	ErrUnknownReference       = errors.New("unknown payment reference")
	ErrInitializationConflict = errors.New("payment initialization conflict")
	ErrVerificationPending    = errors.New("payment verification still pending")
	ErrAmountMismatch         = errors.New("verified amount does not match ledger amount")

	// Subscription errors
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrSubscriptionExpired  = errors.New("subscription has expired")
)
