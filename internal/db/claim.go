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

// nextClaimID allocates from an explicit monotonic counter document, never
// from collection size. Ids are zero-based.
func nextClaimID(ctx context.Context, coll *mongo.Collection) (uint64, error) {
	var counter model.CounterDocument
	err := coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": model.ClaimCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq - 1, nil
}

func (db *Database) InsertClaim(
	ctx context.Context, policyID, claimant string, amount, dstChainSelector uint64,
	dstReceiver string, openedAt time.Time,
) (*model.ClaimDocument, error) {
	result, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		id, err := nextClaimID(sessCtx, db.collection(model.CounterCollection))
		if err != nil {
			return nil, err
		}

		claim := &model.ClaimDocument{
			ID:               id,
			PolicyID:         policyID,
			Claimant:         claimant,
			Amount:           amount,
			DstChainSelector: dstChainSelector,
			DstReceiver:      dstReceiver,
			OpenedAt:         openedAt,
		}
		if _, err := db.collection(model.ClaimCollection).InsertOne(sessCtx, claim); err != nil {
			return nil, err
		}
		return claim, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ClaimDocument), nil
}

func (db *Database) GetClaimByID(ctx context.Context, id uint64) (*model.ClaimDocument, error) {
	var claim model.ClaimDocument
	err := db.collection(model.ClaimCollection).
		FindOne(ctx, bson.M{"_id": id}).Decode(&claim)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Message: "claim not found"}
		}
		return nil, err
	}
	return &claim, nil
}

// CastVote records the vote and adds its weight in one transaction. The
// unique (claim_id, voter) index rejects double votes; the finalized guard
// on the tally update rejects votes racing a finalization.
func (db *Database) CastVote(
	ctx context.Context, claimID uint64, voter string, support bool, weight uint64,
) error {
	_, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.VoteCollection).InsertOne(sessCtx, model.VoteDocument{
			ClaimID: claimID,
			Voter:   voter,
			Support: support,
			Weight:  weight,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &DuplicateKeyError{Key: voter, Message: "account already voted on this claim"}
			}
			return nil, err
		}

		tallyField := "no_votes"
		if support {
			tallyField = "yes_votes"
		}
		updateResult, err := db.collection(model.ClaimCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": claimID, "finalized": false},
			bson.M{"$inc": bson.M{tallyField: int64(weight)}},
		)
		if err != nil {
			return nil, err
		}
		if updateResult.MatchedCount == 0 {
			return nil, &InvalidStateError{Message: "claim already finalized"}
		}
		return nil, nil
	})
	return err
}

// FinalizeClaim latches the outcome using the mirror's total power as of
// this transaction. The finalized:false filter makes the latch one-way.
func (db *Database) FinalizeClaim(ctx context.Context, claimID, quorumBps uint64) (*model.ClaimDocument, error) {
	result, err := db.txWithRetries(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var claim model.ClaimDocument
		err := db.collection(model.ClaimCollection).
			FindOne(sessCtx, bson.M{"_id": claimID}).Decode(&claim)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, &NotFoundError{Message: "claim not found"}
			}
			return nil, err
		}
		if claim.Finalized {
			return nil, &InvalidStateError{Message: "claim already finalized"}
		}

		var total model.VotingPowerDocument
		err = db.collection(model.VotingPowerCollection).
			FindOne(sessCtx, bson.M{"_id": model.TotalPowerDocID}).Decode(&total)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		totalCast := claim.YesVotes + claim.NoVotes
		quorumMet := model.QuorumMet(totalCast, total.Power, quorumBps)
		approved := quorumMet && claim.YesVotes > claim.NoVotes

		updateResult, err := db.collection(model.ClaimCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": claimID, "finalized": false},
			bson.M{"$set": bson.M{"finalized": true, "approved": approved}},
		)
		if err != nil {
			return nil, err
		}
		if updateResult.MatchedCount == 0 {
			return nil, &InvalidStateError{Message: "claim already finalized"}
		}

		claim.Finalized = true
		claim.Approved = approved
		return &claim, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ClaimDocument), nil
}

func (db *Database) MarkPayoutDispatched(ctx context.Context, claimID uint64, messageID string) error {
	_, err := db.collection(model.ClaimCollection).UpdateOne(
		ctx,
		bson.M{"_id": claimID, "finalized": true},
		bson.M{"$set": bson.M{"payout_dispatched": true, "payout_message_id": messageID}},
	)
	return err
}
