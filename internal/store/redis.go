package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
)

const redisKeyPrefix = "trutrend:report:"

// Redis stores reports as JSON values with a server-side TTL, for
// deployments where reports must survive process restarts.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(addr string, db int, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	return &Redis{rdb: rdb, ttl: ttl}
}

// Ping verifies connectivity at startup.
func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Redis) Save(ctx context.Context, r analyze.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.ID, err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+r.ID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store report %s: %w", r.ID, err)
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, id string) (analyze.Report, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return analyze.Report{}, ErrNotFound
		}
		return analyze.Report{}, fmt.Errorf("fetch report %s: %w", id, err)
	}
	var r analyze.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return analyze.Report{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	return r, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Redis) Close() error { return s.rdb.Close() }
