package log

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"securevault/internal/verification/models"
)

const historyKey = "securevault:verification_history"

// Redis keeps a bounded verification history in a redis list. LPUSH + LTRIM
// retain the most recent limit entries and evict oldest-first, so the
// history is lossy by design. Suited to shared demo deployments where
// durability does not matter but multiple instances must agree.
type Redis struct {
	client *redis.Client
	limit  int64
}

// NewRedis creates a redis-backed verification log capped at limit entries.
func NewRedis(client *redis.Client, limit int) *Redis {
	return &Redis{client: client, limit: int64(limit)}
}

func (l *Redis) Append(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, l.limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append verification event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, most recent first (list head first).
func (l *Redis) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	return l.rangeEvents(ctx, int64(limit)-1)
}

// All returns every retained event, most recent first.
func (l *Redis) All(ctx context.Context) ([]models.Event, error) {
	return l.rangeEvents(ctx, -1)
}

func (l *Redis) rangeEvents(ctx context.Context, stop int64) ([]models.Event, error) {
	raw, err := l.client.LRange(ctx, historyKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("range verification events: %w", err)
	}
	events := make([]models.Event, 0, len(raw))
	for _, item := range raw {
		var event models.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("unmarshal verification event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
