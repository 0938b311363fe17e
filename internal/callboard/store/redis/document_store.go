package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/calltime/callboard/internal/callboard/store"
)

// DocumentStore keeps the call-status document in a single Redis key.
// SET is atomic on the Redis side, so readers always see a whole
// document; SETNX makes the first-fetch materialization idempotent
// across concurrent clients and across server instances sharing the
// same Redis.
type DocumentStore struct {
	client *redis.Client
	key    string
}

func NewDocumentStore(client *redis.Client, key string) *DocumentStore {
	if key == "" {
		key = "callboard:status"
	}
	return &DocumentStore{client: client, key: key}
}

func (s *DocumentStore) Load(ctx context.Context) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == nil {
		return json.RawMessage(val), nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc := store.EmptyDocument()
	if err := s.client.SetNX(ctx, s.key, string(doc), 0).Err(); err != nil {
		return nil, fmt.Errorf("initialize document: %w", err)
	}
	return doc, nil
}

func (s *DocumentStore) Save(ctx context.Context, doc json.RawMessage) error {
	if err := s.client.Set(ctx, s.key, string(doc), 0).Err(); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
