package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultRequestTimeout = 2 * time.Second

var _ i.RemoteLeaderboard = &PlayerRepo{}

// PlayerRepo handles the persistence of player records in the remote document store.
type PlayerRepo struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewPlayerRepo creates a new PlayerRepo with the given MongoDB client, database name, and collection name.
func NewPlayerRepo(client *mongo.Client, dbName, collectionName string) *PlayerRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &PlayerRepo{
		collection: collection,
		timeout:    defaultRequestTimeout,
	}
}

// EnsureIndexes creates the high score index used by Top.
func (p *PlayerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "highScore", Value: -1}},
	})
	return err
}

// Upsert folds a finished game into the player's document in a single
// atomic update. If the player does not exist, it adds a new document.
func (p *PlayerRepo) Upsert(ctx context.Context, name string, score, level int) (*dmn.PlayerRecord, error) {
	if err := dmn.ValidatePlayerName(name); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	filter := bson.M{"_id": name}
	update := bson.M{
		"$max": bson.M{
			"highScore":    score,
			"highestLevel": max(level, 1),
		},
		"$inc": bson.M{"gamesPlayed": 1},
		"$set": bson.M{"lastPlayed": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var rec dmn.PlayerRecord
	if err := p.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &rec, nil
}

// Save inserts or replaces the player's document.
func (p *PlayerRepo) Save(ctx context.Context, rec *dmn.PlayerRecord) error {
	if err := dmn.ValidatePlayerName(rec.Name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := p.collection.ReplaceOne(ctx, bson.M{"_id": rec.Name}, rec, opts)
	if err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}
	return nil
}

// Top retrieves up to limit players ordered by high score, best first.
func (p *PlayerRepo) Top(ctx context.Context, limit int) ([]dmn.PlayerRecord, error) {
	if limit <= 0 {
		return []dmn.PlayerRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "highScore", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := p.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}

	records := []dmn.PlayerRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return records, nil
}

// ByName retrieves a player by name.
// Returns an error if the player is not found or if an unexpected error occurs.
func (p *PlayerRepo) ByName(ctx context.Context, name string) (*dmn.PlayerRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var rec dmn.PlayerRecord
	if err := p.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return &rec, nil
}
