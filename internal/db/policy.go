package db

import (
	"context"
	"errors"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertPolicy records issued policy terms. The unique policy_ref index
// rejects replays of the same issuance message.
func (db *Database) InsertPolicy(ctx context.Context, policy *model.PolicyDocument) error {
	_, err := db.collection(model.PolicyCollection).InsertOne(ctx, policy)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateKeyError{Key: policy.PolicyRef, Message: "policy ref already recorded"}
		}
		return err
	}
	return nil
}

func (db *Database) GetPolicyByRef(ctx context.Context, policyRef string) (*model.PolicyDocument, error) {
	var policy model.PolicyDocument
	err := db.collection(model.PolicyCollection).
		FindOne(ctx, bson.M{"policy_ref": policyRef}).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Key: policyRef, Message: "policy not found"}
		}
		return nil, err
	}
	return &policy, nil
}
