package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deedflow/internal/common/config"
	"deedflow/internal/common/logger"
)

const recordKeyPrefix = "deedflow:contract:"

// RedisStore keeps contract records in Redis with a TTL so stale deals age
// out on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{
		client: client,
		ttl:    time.Duration(cfg.RecordTTL) * time.Hour,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}, nil
}

// NewRedisStoreWithClient wires an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: log}
}

func recordKey(documentID string) string {
	return recordKeyPrefix + documentID
}

func (s *RedisStore) Save(ctx context.Context, record ContractRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("record marshal failed: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(record.DocumentID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("record save failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, documentID string) (*ContractRecord, error) {
	payload, err := s.client.Get(ctx, recordKey(documentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("record fetch failed: %w", err)
	}
	var record ContractRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("record unmarshal failed: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) List(ctx context.Context) ([]ContractRecord, error) {
	var records []ContractRecord
	iter := s.client.Scan(ctx, 0, recordKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("record fetch failed: %w", err)
		}
		var record ContractRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			s.logger.Warn("skipping undecodable record", map[string]interface{}{
				"key":   iter.Val(),
				"error": err.Error(),
			})
			continue
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("record scan failed: %w", err)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
