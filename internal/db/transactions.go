package db

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	defaultMaxAttempts    = 4 // max attempt INCLUDES the first execution
	defaultInitialBackoff = 100 * time.Millisecond
	defaultBackoffFactor  = 2
)

// txWithRetries runs fn inside a session transaction, retrying transient
// failures (network, timeout, write conflict, aborted) with exponential
// backoff. Non-transient errors surface immediately.
func (db *Database) txWithRetries(
	ctx context.Context,
	fn func(sessCtx mongo.SessionContext) (interface{}, error),
) (interface{}, error) {
	var (
		result  interface{}
		err     error
		backoff = defaultInitialBackoff
	)

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		session, sessionErr := db.Client.StartSession()
		if sessionErr != nil {
			return nil, sessionErr
		}

		result, err = session.WithTransaction(ctx, fn)
		session.EndSession(ctx)

		if err != nil {
			if shouldRetry(err) && attempt < defaultMaxAttempts {
				log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).
					Msg("retrying transaction after transient error")
				time.Sleep(backoff)
				backoff *= defaultBackoffFactor
				continue
			}
			return nil, err
		}
		break
	}
	return result, nil
}

// Network-related and timeout errors, write conflicts and aborted
// transactions are generally transient and worth retrying. Anything else,
// duplicated keys included, is not.
func shouldRetry(err error) bool {
	if mongo.IsNetworkError(err) {
		return true
	}
	if mongo.IsTimeout(err) {
		return true
	}
	if IsWriteConflictError(err) {
		return true
	}
	if IsTransactionAbortedError(err) {
		return true
	}
	return false
}
