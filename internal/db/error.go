package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var e *DuplicateKeyError
	return errors.As(err, &e)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// InvalidStateError reports a guarded transition whose precondition no
// longer holds, e.g. finalizing an already finalized claim.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// InsufficientBalanceError reports a debit larger than the held balance,
// for shares as well as reserve funds.
type InsufficientBalanceError struct {
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Message
}

func IsInsufficientBalanceError(err error) bool {
	var e *InsufficientBalanceError
	return errors.As(err, &e)
}

// Error code references: https://www.mongodb.com/docs/manual/reference/error-codes/
func IsWriteConflictError(err error) bool {
	var cmdErr *mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 112
	}
	return false
}

func IsTransactionAbortedError(err error) bool {
	var cmdErr *mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 251
	}
	return false
}
