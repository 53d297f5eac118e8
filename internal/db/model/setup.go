package model

import (
	"context"
	"fmt"
	"time"

	"github.com/crosscover-protocol/settlement-api-service/internal/config"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PoolStateCollection             = "pool_state"
	StakeCollection                 = "stakes"
	WithdrawRequestCollection       = "withdraw_requests"
	PolicyCollection                = "policies"
	ClaimCollection                 = "claims"
	VoteCollection                  = "claim_votes"
	CounterCollection               = "counters"
	VotingPowerCollection           = "voting_power"
	ReserveStateCollection          = "reserve_state"
	PayoutCollection                = "payouts"
	ProtocolParamsCollection        = "protocol_params"
	ChainAllowlistCollection        = "chain_allowlist"
	CounterpartyAllowlistCollection = "counterparty_allowlist"
	GasLimitCollection              = "gas_limits"
	RelayMessageCollection          = "relay_messages"
	UnprocessableMsgCollection      = "unprocessable_messages"
)

type index struct {
	Indexes map[string]int
	Unique  bool
}

var collections = map[string][]index{
	PoolStateCollection:       {{Indexes: map[string]int{}}},
	StakeCollection:           {{Indexes: map[string]int{}}},
	WithdrawRequestCollection: {{Indexes: map[string]int{"locked_until": 1}, Unique: false}},
	PolicyCollection:          {{Indexes: map[string]int{"policy_ref": 1}, Unique: true}},
	ClaimCollection:           {{Indexes: map[string]int{"finalized": 1, "opened_at": -1}, Unique: false}},
	VoteCollection:            {{Indexes: map[string]int{"claim_id": 1, "voter": 1}, Unique: true}},
	CounterCollection:         {{Indexes: map[string]int{}}},
	VotingPowerCollection:     {{Indexes: map[string]int{}}},
	ReserveStateCollection:    {{Indexes: map[string]int{}}},
	PayoutCollection:          {{Indexes: map[string]int{"claim_id": 1}, Unique: true}},
	ProtocolParamsCollection:  {{Indexes: map[string]int{}}},
	ChainAllowlistCollection:  {{Indexes: map[string]int{"direction": 1, "chain_selector": 1}, Unique: true}},
	CounterpartyAllowlistCollection: {
		{Indexes: map[string]int{"direction": 1, "chain_selector": 1, "counterparty": 1}, Unique: true},
	},
	GasLimitCollection:         {{Indexes: map[string]int{}}},
	RelayMessageCollection:     {{Indexes: map[string]int{"message_id": 1}, Unique: false}},
	UnprocessableMsgCollection: {{Indexes: map[string]int{}}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	// Create a context with timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Access a database and create collections.
	database := client.Database(cfg.Db.DbName)

	// Create collections.
	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	if err := seedProtocolParams(ctx, database, &cfg.Protocol); err != nil {
		return err
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

// seedProtocolParams inserts the owner-mutable admin state from config
// defaults. Values already persisted by setSplit/setParams are left alone.
func seedProtocolParams(ctx context.Context, database *mongo.Database, cfg *config.ProtocolConfig) error {
	filter := bson.M{"_id": ProtocolParamsDocID}
	update := bson.M{"$setOnInsert": bson.M{
		"bps_to_pool":        cfg.BpsToPool,
		"bps_to_reserve":     cfg.BpsToReserve,
		"voting_period_secs": uint64(cfg.VotingPeriod.Seconds()),
		"quorum_bps":         cfg.QuorumBps,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := database.Collection(ProtocolParamsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	// Check if the collection already exists.
	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{}); err != nil {
		log.Debug().Msg(fmt.Sprintf("Collection maybe already exists: %s, skip the rest. info: %s", collectionName, err))
		return
	}

	// Create the collection.
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Indexes) == 0 {
		return
	}

	indexKeys := bson.D{}
	for k, v := range idx.Indexes {
		indexKeys = append(indexKeys, bson.E{Key: k, Value: v})
	}

	index := mongo.IndexModel{
		Keys:    indexKeys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
