package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/evaluia/examcore-backend/internal/config"
)

// ReportJob is the payload pushed onto the report generation queue.
type ReportJob struct {
	SessionID uuid.UUID `json:"session_id"`
}

// RedisReportDispatcher schedules report jobs onto a Redis list consumed by
// the report worker.
type RedisReportDispatcher struct {
	rdb *redis.Client
}

// NewRedisReportDispatcher creates a RedisReportDispatcher.
func NewRedisReportDispatcher(rdb *redis.Client) *RedisReportDispatcher {
	return &RedisReportDispatcher{rdb: rdb}
}

// Dispatch enqueues a report job for the session.
func (d *RedisReportDispatcher) Dispatch(ctx context.Context, sessionID uuid.UUID) error {
	payload, err := json.Marshal(ReportJob{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("marshal report job: %w", err)
	}
	if err := d.rdb.RPush(ctx, config.WorkerKey.GenerateReportsQueue, payload).Err(); err != nil {
		return fmt.Errorf("push report job: %w", err)
	}
	return nil
}
