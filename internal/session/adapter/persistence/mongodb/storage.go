package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldEntries   = "entries"
	fieldUpdatedAt = "updated_at"
	ttlIndexName   = "client_session_idle_ttl"
)

var ErrInvalidEntryKey = errors.New("entry key cannot be empty or contain '.' or '$'")

// scopeDocument is the stored shape of one client scope.
type scopeDocument struct {
	Scope     string            `bson:"_id"`
	Entries   map[string]string `bson:"entries"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// Storage keeps each client scope in a single document, so one update writes
// all entries of a scope atomically.
type Storage struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewStorage creates a storage on collection. A positive ttl is enforced by a
// TTL index created in EnsureIndexes.
func NewStorage(collection *mongo.Collection, ttl time.Duration) (*Storage, error) {
	if collection == nil {
		return nil, errors.New("collection cannot be nil")
	}
	if ttl < 0 {
		return nil, errors.New("ttl cannot be negative")
	}
	return &Storage{
		collection: collection,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// EnsureIndexes creates the idle expiry index.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: fieldUpdatedAt, Value: 1}},
		Options: options.Index().
			SetName(ttlIndexName).
			SetExpireAfterSeconds(int32(s.ttl / time.Second)),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

// Get reads one entry of the scope document.
func (s *Storage) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	var doc scopeDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": scope},
		options.FindOne().SetProjection(bson.M{fieldEntries + "." + key: 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find scope: %w", err)
	}

	v, ok := doc.Entries[key]
	return v, ok, nil
}

// Put upserts the scope document with all entries in one update.
func (s *Storage) Put(ctx context.Context, scope string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	set := bson.M{fieldUpdatedAt: s.now().UTC()}
	for k, v := range entries {
		if err := validateKey(k); err != nil {
			return err
		}
		set[fieldEntries+"."+k] = v
	}

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": scope},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert scope: %w", err)
	}
	return nil
}

// Remove unsets entries and deletes the document once no entry is left.
func (s *Storage) Remove(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		if err := validateKey(k); err != nil {
			return err
		}
		unset[fieldEntries+"."+k] = ""
	}

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": scope},
		bson.M{"$unset": unset, "$set": bson.M{fieldUpdatedAt: s.now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("unset scope entries: %w", err)
	}

	_, err = s.collection.DeleteOne(ctx, bson.M{"_id": scope, fieldEntries: bson.M{}})
	if err != nil {
		return fmt.Errorf("delete empty scope: %w", err)
	}
	return nil
}

// Ping checks the connection of the underlying client.
func (s *Storage) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, ".$") {
		return fmt.Errorf("%w: %q", ErrInvalidEntryKey, key)
	}
	return nil
}
