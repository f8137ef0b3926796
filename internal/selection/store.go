package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelworks/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "selection:"

var (
	ErrSelectionNotFound = errors.New("selection not found")
)

// Store defines the interface for session-scoped selection storage
type Store interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.OrderSelection, error)
	Save(ctx context.Context, sel *domain.OrderSelection) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed selection store. Entries carry
// the session TTL so abandoned selections expire on their own; nothing
// outlives the session.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

// Get retrieves a selection by session id
func (s *redisStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.OrderSelection, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSelectionNotFound
		}
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}

	sel := &domain.OrderSelection{}
	if err := json.Unmarshal(data, sel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection: %w", err)
	}

	return sel, nil
}

// Save persists a selection under its session id, refreshing the TTL
func (s *redisStore) Save(ctx context.Context, sel *domain.OrderSelection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sel.SessionID.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	return nil
}

// Delete removes a selection once its session is finished
func (s *redisStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}
