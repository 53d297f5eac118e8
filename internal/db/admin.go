package db

import (
	"context"
	"errors"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) GetProtocolParams(ctx context.Context) (*model.ProtocolParamsDocument, error) {
	var params model.ProtocolParamsDocument
	err := db.collection(model.ProtocolParamsCollection).
		FindOne(ctx, bson.M{"_id": model.ProtocolParamsDocID}).Decode(&params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Message: "protocol params not seeded"}
		}
		return nil, err
	}
	return &params, nil
}

// UpdateSplit swaps the premium split atomically; every premium payment sees
// one split or the other, never a mix.
func (db *Database) UpdateSplit(ctx context.Context, bpsToPool, bpsToReserve uint64) error {
	_, err := db.collection(model.ProtocolParamsCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.ProtocolParamsDocID},
		bson.M{"$set": bson.M{"bps_to_pool": int64(bpsToPool), "bps_to_reserve": int64(bpsToReserve)}},
	)
	return err
}

func (db *Database) UpdateGovernanceParams(ctx context.Context, votingPeriodSecs, quorumBps uint64) error {
	_, err := db.collection(model.ProtocolParamsCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.ProtocolParamsDocID},
		bson.M{"$set": bson.M{"voting_period_secs": int64(votingPeriodSecs), "quorum_bps": int64(quorumBps)}},
	)
	return err
}

func (db *Database) SetChainAllowlist(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, enabled bool,
) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.collection(model.ChainAllowlistCollection).UpdateOne(
		ctx,
		bson.M{"direction": direction.ToString(), "chain_selector": int64(chainSelector)},
		bson.M{"$set": bson.M{"enabled": enabled}},
		upsert,
	)
	return err
}

func (db *Database) SetCounterpartyAllowlist(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
	counterparty string, enabled bool,
) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.collection(model.CounterpartyAllowlistCollection).UpdateOne(
		ctx,
		bson.M{
			"direction":      direction.ToString(),
			"chain_selector": int64(chainSelector),
			"counterparty":   counterparty,
		},
		bson.M{"$set": bson.M{"enabled": enabled}},
		upsert,
	)
	return err
}

func (db *Database) IsChainAllowlisted(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64,
) (bool, error) {
	var doc model.ChainAllowlistDocument
	err := db.collection(model.ChainAllowlistCollection).FindOne(
		ctx,
		bson.M{"direction": direction.ToString(), "chain_selector": int64(chainSelector)},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return doc.Enabled, nil
}

func (db *Database) IsCounterpartyAllowlisted(
	ctx context.Context, direction model.AllowlistDirection, chainSelector uint64, counterparty string,
) (bool, error) {
	var doc model.CounterpartyAllowlistDocument
	err := db.collection(model.CounterpartyAllowlistCollection).FindOne(
		ctx,
		bson.M{
			"direction":      direction.ToString(),
			"chain_selector": int64(chainSelector),
			"counterparty":   counterparty,
		},
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return doc.Enabled, nil
}

func (db *Database) SetGasLimit(ctx context.Context, chainSelector, gasLimit uint64) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.collection(model.GasLimitCollection).UpdateOne(
		ctx,
		bson.M{"_id": int64(chainSelector)},
		bson.M{"$set": bson.M{"gas_limit": int64(gasLimit)}},
		upsert,
	)
	return err
}

func (db *Database) GetGasLimit(ctx context.Context, chainSelector uint64) (uint64, error) {
	var doc model.GasLimitDocument
	err := db.collection(model.GasLimitCollection).
		FindOne(ctx, bson.M{"_id": int64(chainSelector)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.GasLimit, nil
}
