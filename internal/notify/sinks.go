package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"testadmin/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publishes JSON payloads on <prefix><kind channel>, e.g.
// "notifications.test.assigned".
type RedisSink struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSink(rdb *redis.Client, prefix string) *RedisSink {
	return &RedisSink{rdb: rdb, prefix: prefix}
}

func (s *RedisSink) Channel(kind models.EventKind) string {
	return s.prefix + kind.Channel()
}

func (s *RedisSink) Publish(ctx context.Context, kind models.EventKind, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	if err := s.rdb.Publish(ctx, s.Channel(kind), body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

// LogSink writes events to the log when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, kind models.EventKind, payload any) error {
	s.logger.Info("Notification", zap.String("event", string(kind)), zap.Any("payload", payload))
	return nil
}
