package relay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crosscover-protocol/settlement-api-service/internal/clients/feeoracle"
	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/crosscover-protocol/settlement-api-service/internal/db"
	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"github.com/crosscover-protocol/settlement-api-service/internal/observability/metrics"
	"github.com/crosscover-protocol/settlement-api-service/internal/relay/client"
	"github.com/crosscover-protocol/settlement-api-service/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sender is the outbound half of the channel, the only relay surface the
// service layer depends on.
type Sender interface {
	QuoteFee(ctx context.Context, destChainSelector uint64, encodedReceiver string, payload interface{}) (uint64, *types.Error)
	Send(
		ctx context.Context, destChainSelector uint64, encodedReceiver string,
		kind MessageKind, payload interface{}, feeBudget uint64,
	) (string, *types.Error)
}

// Channel wraps the external message relay with allowlist authentication on
// both directions and a fee check at send time. Delivery downstream of Send
// is at-least-once and unordered; receivers own idempotency.
type Channel struct {
	cfg         *config.Config
	dbClient    db.DBClient
	queueClient client.QueueClient
	feeOracle   feeoracle.FeeOracleClientInterface
}

var _ Sender = (*Channel)(nil)

func NewChannel(
	cfg *config.Config, dbClient db.DBClient, queueClient client.QueueClient,
	feeOracle feeoracle.FeeOracleClientInterface,
) *Channel {
	return &Channel{
		cfg:         cfg,
		dbClient:    dbClient,
		queueClient: queueClient,
		feeOracle:   feeOracle,
	}
}

// QuoteFee is a pure estimation and fails with EstimationUnavailable when
// the oracle cannot be reached. Callers fall back to the configured
// constant; the authoritative check happens inside Send.
func (c *Channel) QuoteFee(
	ctx context.Context, destChainSelector uint64, encodedReceiver string, payload interface{},
) (uint64, *types.Error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, types.NewInternalServiceError(err)
	}

	gasLimit, err := c.dbClient.GetGasLimit(ctx, destChainSelector)
	if err != nil {
		return 0, types.NewInternalServiceError(err)
	}

	return c.feeOracle.QuoteFee(ctx, destChainSelector, len(raw), gasLimit)
}

func (c *Channel) deliveryFee(
	ctx context.Context, destChainSelector uint64, encodedReceiver string, payload interface{},
) uint64 {
	fee, quoteErr := c.QuoteFee(ctx, destChainSelector, encodedReceiver, payload)
	if quoteErr != nil {
		log.Ctx(ctx).Debug().Err(quoteErr).
			Uint64("destChainSelector", destChainSelector).
			Msg("fee estimation unavailable, applying fallback fee")
		return c.cfg.Protocol.FallbackFee
	}
	return fee
}

func (c *Channel) Send(
	ctx context.Context, destChainSelector uint64, encodedReceiver string,
	kind MessageKind, payload interface{}, feeBudget uint64,
) (string, *types.Error) {
	chainAllowed, err := c.dbClient.IsChainAllowlisted(ctx, model.AllowlistDest, destChainSelector)
	if err != nil {
		return "", types.NewInternalServiceError(err)
	}
	if !chainAllowed {
		return "", types.NewErrorWithMsg(
			http.StatusForbidden, types.ChainNotAllowlisted, "destination chain is not allowlisted",
		)
	}

	receiverAllowed, err := c.dbClient.IsCounterpartyAllowlisted(
		ctx, model.AllowlistDest, destChainSelector, encodedReceiver,
	)
	if err != nil {
		return "", types.NewInternalServiceError(err)
	}
	if !receiverAllowed {
		return "", types.NewErrorWithMsg(
			http.StatusForbidden, types.ReceiverNotAllowlisted, "receiver is not allowlisted on the destination chain",
		)
	}

	fee := c.deliveryFee(ctx, destChainSelector, encodedReceiver, payload)
	if feeBudget < fee {
		return "", types.NewErrorWithMsg(
			http.StatusBadRequest, types.InsufficientFee, "fee budget is below the relay delivery cost",
		)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewInternalServiceError(err)
	}

	env := &Envelope{
		MessageID:           uuid.NewString(),
		Kind:                kind,
		SourceChainSelector: c.cfg.Protocol.LocalChainSelector,
		EncodedSender:       c.cfg.Protocol.LocalSender,
		Payload:             raw,
	}
	body, err := env.Encode()
	if err != nil {
		return "", types.NewInternalServiceError(err)
	}

	gasLimit, err := c.dbClient.GetGasLimit(ctx, destChainSelector)
	if err != nil {
		return "", types.NewInternalServiceError(err)
	}
	headers := map[string]interface{}{
		"dest_receiver": encodedReceiver,
	}
	if gasLimit > 0 {
		headers["gas_limit"] = int64(gasLimit)
	}

	queueName := c.cfg.Relay.QueueNameForChain(destChainSelector)
	if err := c.queueClient.Publish(ctx, queueName, body, headers); err != nil {
		return "", types.NewInternalServiceError(err)
	}

	// Audit record is observability, not part of delivery; a write failure
	// must not unsend the message.
	auditErr := c.dbClient.SaveRelayMessage(ctx, &model.RelayMessageDocument{
		MessageID:     env.MessageID,
		Direction:     model.RelayMessageSent,
		Kind:          kind.ToString(),
		ChainSelector: destChainSelector,
		Counterparty:  encodedReceiver,
		Payload:       string(raw),
		Timestamp:     timeNow(),
	})
	if auditErr != nil {
		log.Ctx(ctx).Warn().Err(auditErr).Str("messageId", env.MessageID).
			Msg("failed to record sent relay message")
	}

	metrics.RecordRelayMessageSent(kind.ToString())
	log.Ctx(ctx).Info().
		Str("messageId", env.MessageID).
		Str("kind", kind.ToString()).
		Uint64("destChainSelector", destChainSelector).
		Msg("relay message sent")
	return env.MessageID, nil
}

// Authenticate runs the receive-side allowlist checks. It must pass before
// any business logic touches the payload: authentication strictly precedes
// mutation.
func (c *Channel) Authenticate(ctx context.Context, env *Envelope) *types.Error {
	sourceAllowed, err := c.dbClient.IsChainAllowlisted(ctx, model.AllowlistSource, env.SourceChainSelector)
	if err != nil {
		return types.NewInternalServiceError(err)
	}
	if !sourceAllowed {
		metrics.RecordRelayMessageRejected(env.Kind.ToString(), types.SourceNotAllowlisted.String())
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.SourceNotAllowlisted, "source chain is not allowlisted",
		)
	}

	senderAllowed, err := c.dbClient.IsCounterpartyAllowlisted(
		ctx, model.AllowlistSource, env.SourceChainSelector, env.EncodedSender,
	)
	if err != nil {
		return types.NewInternalServiceError(err)
	}
	if !senderAllowed {
		metrics.RecordRelayMessageRejected(env.Kind.ToString(), types.SenderNotAllowlisted.String())
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.SenderNotAllowlisted, "sender is not allowlisted on the source chain",
		)
	}

	auditErr := c.dbClient.SaveRelayMessage(ctx, &model.RelayMessageDocument{
		MessageID:     env.MessageID,
		Direction:     model.RelayMessageReceived,
		Kind:          env.Kind.ToString(),
		ChainSelector: env.SourceChainSelector,
		Counterparty:  env.EncodedSender,
		Payload:       string(env.Payload),
		Timestamp:     timeNow(),
	})
	if auditErr != nil {
		log.Ctx(ctx).Warn().Err(auditErr).Str("messageId", env.MessageID).
			Msg("failed to record received relay message")
	}

	metrics.RecordRelayMessageReceived(env.Kind.ToString())
	return nil
}
