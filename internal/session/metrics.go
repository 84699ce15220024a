package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const metricsTTL = 7 * 24 * time.Hour

// MetricsStore aggregates hourly usage counters in redis.
type MetricsStore struct {
	redis *redis.Client
}

func NewMetricsStore(redisClient *redis.Client) *MetricsStore {
	return &MetricsStore{redis: redisClient}
}

func (s *MetricsStore) Increment(ctx context.Context, field string, value int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *MetricsStore) IncrementStreams(ctx context.Context) error {
	return s.Increment(ctx, "streams", 1)
}

func (s *MetricsStore) IncrementFrames(ctx context.Context, n int64) error {
	return s.Increment(ctx, "frames", n)
}

func (s *MetricsStore) IncrementAlerts(ctx context.Context, n int64) error {
	return s.Increment(ctx, "alerts", n)
}

func (s *MetricsStore) IncrementUtterances(ctx context.Context) error {
	return s.Increment(ctx, "utterances", 1)
}

func (s *MetricsStore) IncrementErrors(ctx context.Context) error {
	return s.Increment(ctx, "error_count", 1)
}

func (s *MetricsStore) RecordLatency(ctx context.Context, latencyMs int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, "total_latency_ms", latencyMs)
	pipe.HIncrBy(ctx, key, "latency_count", 1)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *MetricsStore) GetMetrics(ctx context.Context, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var metrics []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}

		m := &Metrics{
			Date: t.Format("2006-01-02"),
			Hour: t.Hour(),
		}

		if v, ok := data["streams"]; ok {
			m.Streams, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["frames"]; ok {
			m.Frames, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["alerts"]; ok {
			m.Alerts, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["utterances"]; ok {
			m.Utterances, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["error_count"]; ok {
			m.ErrorCount, _ = strconv.ParseInt(v, 10, 64)
		}

		totalLatency, _ := strconv.ParseInt(data["total_latency_ms"], 10, 64)
		latencyCount, _ := strconv.ParseInt(data["latency_count"], 10, 64)
		if latencyCount > 0 {
			m.AvgLatencyMs = totalLatency / latencyCount
		}

		metrics = append(metrics, m)
	}

	return metrics, nil
}
