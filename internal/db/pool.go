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

func (db *Database) GetPoolState(ctx context.Context) (*model.PoolStateDocument, error) {
	return getPoolState(ctx, db.collection(model.PoolStateCollection))
}

// An absent document is an empty vault, not an error.
func getPoolState(ctx context.Context, coll *mongo.Collection) (*model.PoolStateDocument, error) {
	var state model.PoolStateDocument
	err := coll.FindOne(ctx, bson.M{"_id": model.PoolStateDocID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.PoolStateDocument{ID: model.PoolStateDocID}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (db *Database) GetStake(ctx context.Context, owner string) (*model.StakeDocument, error) {
	var stake model.StakeDocument
	err := db.collection(model.StakeCollection).
		FindOne(ctx, bson.M{"_id": owner}).Decode(&stake)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Key: owner, Message: "no stake found for owner"}
		}
		return nil, err
	}
	return &stake, nil
}

// DepositStake prices the deposit against the share price as of this
// transaction, mints the shares to the owner and bumps the vault totals.
func (db *Database) DepositStake(ctx context.Context, owner string, amount uint64) (uint64, error) {
	result, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		poolColl := db.collection(model.PoolStateCollection)
		state, err := getPoolState(sessCtx, poolColl)
		if err != nil {
			return nil, err
		}

		shares := model.SharesOnDeposit(state.TotalShares, state.TotalAssets, amount)

		upsert := options.Update().SetUpsert(true)
		_, err = db.collection(model.StakeCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": owner},
			bson.M{"$inc": bson.M{"shares": int64(shares), "deposited_assets": int64(amount)}},
			upsert,
		)
		if err != nil {
			return nil, err
		}

		_, err = poolColl.UpdateOne(
			sessCtx,
			bson.M{"_id": model.PoolStateDocID},
			bson.M{"$inc": bson.M{"total_shares": int64(shares), "total_assets": int64(amount)}},
			upsert,
		)
		if err != nil {
			return nil, err
		}
		return shares, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(uint64), nil
}

// CreditPoolAssets is the premium yield credit: assets go up, shares do not,
// so the share price rises for existing holders.
func (db *Database) CreditPoolAssets(ctx context.Context, amount uint64) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.collection(model.PoolStateCollection).UpdateOne(
		ctx,
		bson.M{"_id": model.PoolStateDocID},
		bson.M{"$inc": bson.M{"total_assets": int64(amount)}},
		upsert,
	)
	return err
}

// CreditPremiumSplit books both legs of a premium allocation in one
// transaction so a failure leaves neither the pool nor the reserve credited.
func (db *Database) CreditPremiumSplit(ctx context.Context, toPool, toReserve uint64) error {
	upsert := options.Update().SetUpsert(true)
	_, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.PoolStateCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": model.PoolStateDocID},
			bson.M{"$inc": bson.M{"total_assets": int64(toPool)}},
			upsert,
		)
		if err != nil {
			return nil, err
		}
		_, err = db.collection(model.ReserveStateCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": model.ReserveStateDocID},
			bson.M{"$inc": bson.M{"balance": int64(toReserve)}},
			upsert,
		)
		return nil, err
	})
	return err
}

// CreateWithdrawRequest escrows the requested shares out of the spendable
// balance. The owner-keyed insert makes a second outstanding request a
// duplicate key error.
func (db *Database) CreateWithdrawRequest(
	ctx context.Context, owner string, shares uint64, lockedUntil time.Time,
) error {
	_, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var stake model.StakeDocument
		err := db.collection(model.StakeCollection).
			FindOne(sessCtx, bson.M{"_id": owner}).Decode(&stake)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, &InsufficientBalanceError{Message: "no stake found for owner"}
			}
			return nil, err
		}
		if stake.Shares < shares {
			return nil, &InsufficientBalanceError{Message: "stake holds fewer shares than requested"}
		}

		_, err = db.collection(model.WithdrawRequestCollection).InsertOne(sessCtx, model.WithdrawRequestDocument{
			Owner:       owner,
			Shares:      shares,
			LockedUntil: lockedUntil,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &DuplicateKeyError{Key: owner, Message: "a withdraw request is already pending"}
			}
			return nil, err
		}

		_, err = db.collection(model.StakeCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": owner},
			bson.M{"$inc": bson.M{"shares": -int64(shares), "escrowed_shares": int64(shares)}},
		)
		return nil, err
	})
	return err
}

func (db *Database) GetWithdrawRequest(ctx context.Context, owner string) (*model.WithdrawRequestDocument, error) {
	var request model.WithdrawRequestDocument
	err := db.collection(model.WithdrawRequestCollection).
		FindOne(ctx, bson.M{"_id": owner}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Key: owner, Message: "no pending withdraw request for owner"}
		}
		return nil, err
	}
	return &request, nil
}

type withdrawOutcome struct {
	assetsOut       uint64
	remainingShares uint64
}

// CompleteWithdrawRequest burns the escrowed shares at the completion-time
// share price, pays the proportional assets out of the vault and clears the
// request. Cooldown enforcement belongs to the caller; lockedUntil never
// changes once set.
func (db *Database) CompleteWithdrawRequest(ctx context.Context, owner string) (uint64, uint64, error) {
	result, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var request model.WithdrawRequestDocument
		err := db.collection(model.WithdrawRequestCollection).
			FindOneAndDelete(sessCtx, bson.M{"_id": owner}).Decode(&request)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, &NotFoundError{Key: owner, Message: "no pending withdraw request for owner"}
			}
			return nil, err
		}

		poolColl := db.collection(model.PoolStateCollection)
		state, err := getPoolState(sessCtx, poolColl)
		if err != nil {
			return nil, err
		}
		assetsOut := model.AssetsOnWithdraw(state.TotalShares, state.TotalAssets, request.Shares)

		var stake model.StakeDocument
		err = db.collection(model.StakeCollection).FindOneAndUpdate(
			sessCtx,
			bson.M{"_id": owner},
			bson.M{"$inc": bson.M{"escrowed_shares": -int64(request.Shares)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&stake)
		if err != nil {
			return nil, err
		}

		_, err = poolColl.UpdateOne(
			sessCtx,
			bson.M{"_id": model.PoolStateDocID},
			bson.M{"$inc": bson.M{"total_shares": -int64(request.Shares), "total_assets": -int64(assetsOut)}},
		)
		if err != nil {
			return nil, err
		}

		return &withdrawOutcome{assetsOut: assetsOut, remainingShares: stake.Shares}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	outcome := result.(*withdrawOutcome)
	return outcome.assetsOut, outcome.remainingShares, nil
}
