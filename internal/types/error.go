package types

import (
	"errors"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// generic service errors
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	ValidationError      ErrorCode = "VALIDATION_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
	BadRequest           ErrorCode = "BAD_REQUEST"
	Forbidden            ErrorCode = "FORBIDDEN"
	Unauthorized         ErrorCode = "UNAUTHORIZED"
	RequestTimeout       ErrorCode = "REQUEST_TIMEOUT"

	// input validation
	ZeroAmount      ErrorCode = "ZERO_AMOUNT"
	InvalidAmount   ErrorCode = "INVALID_AMOUNT"
	InvalidDuration ErrorCode = "INVALID_DURATION"
	InvalidSplit    ErrorCode = "INVALID_SPLIT"
	InvalidQuorum   ErrorCode = "INVALID_QUORUM"

	// authorization
	ChainNotAllowlisted    ErrorCode = "CHAIN_NOT_ALLOWLISTED"
	SourceNotAllowlisted   ErrorCode = "SOURCE_NOT_ALLOWLISTED"
	SenderNotAllowlisted   ErrorCode = "SENDER_NOT_ALLOWLISTED"
	ReceiverNotAllowlisted ErrorCode = "RECEIVER_NOT_ALLOWLISTED"

	// temporal / state
	StillLocked        ErrorCode = "STILL_LOCKED"
	WithdrawPending    ErrorCode = "WITHDRAW_PENDING"
	VotingStillOpen    ErrorCode = "VOTING_STILL_OPEN"
	ClaimFinalized     ErrorCode = "CLAIM_FINALIZED"
	AlreadyFinalized   ErrorCode = "ALREADY_FINALIZED"
	AlreadyVoted       ErrorCode = "ALREADY_VOTED"
	DuplicatePolicyRef ErrorCode = "DUPLICATE_POLICY_REF"

	// resource
	InsufficientFee     ErrorCode = "INSUFFICIENT_FEE"
	InsufficientPremium ErrorCode = "INSUFFICIENT_PREMIUM"
	InsufficientReserve ErrorCode = "INSUFFICIENT_RESERVE"
	InsufficientShares  ErrorCode = "INSUFFICIENT_SHARES"

	// relay fee estimation
	EstimationUnavailable ErrorCode = "ESTIMATION_UNAVAILABLE"
)

// Error represents an error with an HTTP status code and an application-specific error code.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

const UninitializedStatusCode = 0

func (e *Error) Error() string {
	return e.Err.Error()
}

// NewError creates a new Error with the provided status code, error code, and underlying error.
// If the status code is not provided (0), it defaults to http.StatusInternalServerError(500).
// If the error code is empty, it defaults to INTERNAL_SERVICE_ERROR.
func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	if statusCode == UninitializedStatusCode {
		statusCode = http.StatusInternalServerError
	}
	if errorCode == "" {
		errorCode = InternalServiceError
	}
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}
