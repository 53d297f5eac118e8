package db

import (
	"context"
	"errors"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetVotingPower overwrites the account's mirrored power and moves the
// running total by the delta. Overwriting, rather than adding, is what makes
// replayed sync messages carrying the same absolute value harmless.
func (db *Database) SetVotingPower(ctx context.Context, account string, power uint64) error {
	_, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		coll := db.collection(model.VotingPowerCollection)

		var prev model.VotingPowerDocument
		err := coll.FindOne(sessCtx, bson.M{"_id": account}).Decode(&prev)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		upsert := options.Update().SetUpsert(true)
		_, err = coll.UpdateOne(
			sessCtx,
			bson.M{"_id": account},
			bson.M{"$set": bson.M{"power": int64(power)}},
			upsert,
		)
		if err != nil {
			return nil, err
		}

		delta := int64(power) - int64(prev.Power)
		_, err = coll.UpdateOne(
			sessCtx,
			bson.M{"_id": model.TotalPowerDocID},
			bson.M{"$inc": bson.M{"power": delta}},
			upsert,
		)
		return nil, err
	})
	return err
}

func (db *Database) GetVotingPower(ctx context.Context, account string) (uint64, error) {
	var doc model.VotingPowerDocument
	err := db.collection(model.VotingPowerCollection).
		FindOne(ctx, bson.M{"_id": account}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Power, nil
}

func (db *Database) GetTotalVotingPower(ctx context.Context) (uint64, error) {
	return db.GetVotingPower(ctx, model.TotalPowerDocID)
}
