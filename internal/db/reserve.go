package db

import (
	"context"
	"errors"
	"time"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) GetReserveState(ctx context.Context) (*model.ReserveStateDocument, error) {
	var state model.ReserveStateDocument
	err := db.collection(model.ReserveStateCollection).
		FindOne(ctx, bson.M{"_id": model.ReserveStateDocID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.ReserveStateDocument{ID: model.ReserveStateDocID}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (db *Database) CreditReserve(ctx context.Context, amount uint64) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.collection(model.ReserveStateCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.ReserveStateDocID},
		bson.M{"$inc": bson.M{"balance": int64(amount)}},
		upsert,
	)
	return err
}

// ExecutePayout debits the reserve and records the disbursement. The
// claim-keyed payout record turns replayed payout messages into duplicate
// key errors before any balance moves twice, and reserve depletion aborts
// the transaction with nothing written.
func (db *Database) ExecutePayout(
	ctx context.Context, claimID uint64, claimant string, amount uint64, executedAt time.Time,
) error {
	_, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.PayoutCollection).InsertOne(sessCtx, model.PayoutDocument{
			ClaimID:    claimID,
			Claimant:   claimant,
			Amount:     amount,
			ExecutedAt: executedAt,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &DuplicateKeyError{Message: "payout already executed for claim"}
			}
			return nil, err
		}

		coll := db.collection(model.ReserveStateCollection)
		var state model.ReserveStateDocument
		err = coll.FindOne(sessCtx, bson.M{"_id": model.ReserveStateDocID}).Decode(&state)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		if state.Balance < amount {
			return nil, &InsufficientBalanceError{Message: "reserve balance is short of the payout amount"}
		}

		_, err = coll.UpdateOne(
			sessCtx,
			bson.M{"_id": model.ReserveStateDocID},
			bson.M{"$inc": bson.M{"balance": -int64(amount), "executed_payouts": 1}},
		)
		return nil, err
	})
	return err
}
