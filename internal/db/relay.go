package db

import (
	"context"

	"github.com/crosscover-protocol/settlement-api-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
)

func (db *Database) SaveRelayMessage(ctx context.Context, msg *model.RelayMessageDocument) error {
	_, err := db.collection(model.RelayMessageCollection).InsertOne(ctx, msg)
	return err
}

func (db *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	unprocessableMsg := model.UnprocessableMessageDocument{
		MessageBody: messageBody,
		Receipt:     receipt,
	}

	_, err := db.collection(model.UnprocessableMsgCollection).InsertOne(ctx, unprocessableMsg)
	return err
}

func (db *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	cursor, err := db.collection(model.UnprocessableMsgCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []model.UnprocessableMessageDocument
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (db *Database) DeleteUnprocessableMessage(ctx context.Context, receipt string) error {
	_, err := db.collection(model.UnprocessableMsgCollection).
		DeleteOne(ctx, bson.M{"receipt": receipt})
	return err
}
