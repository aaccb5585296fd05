package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Placeholder stored while the first request for a key is still being
// processed. Concurrent retries see it and know a run is in flight.
const processingMarker = "processing"

// IdempotencyStore deduplicates replayed requests by key. It backs the
// HTTP idempotency middleware and UTR deduplication for resubmitted
// bank transactions.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "utr:",
	}
}

// CheckAndSet reports whether the key has been seen. A nil response
// reserves the key with a processing marker; a non-nil response stores
// it directly when the key is new. The returned bytes are whatever the
// first writer stored, possibly still the marker.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	if response == nil {
		set, err := s.client.SetNX(ctx, fullKey, processingMarker, ttl).Result()
		if err != nil {
			return false, nil, err
		}
		if set {
			return false, nil, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if err != nil && err != redis.Nil {
			return false, nil, err
		}

		return true, existing, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, existing, nil
	}
	if err != redis.Nil {
		return false, nil, err
	}

	if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
		return false, nil, err
	}

	return false, nil, nil
}

// Update replaces the stored value, finalizing a reserved key with the
// real response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}
