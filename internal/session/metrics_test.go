package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestMetrics(t *testing.T) (*MetricsStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewMetricsStore(client), mr
}

func TestMetricsStore_Increment(t *testing.T) {
	store, mr := setupTestMetrics(t)
	ctx := context.Background()

	if err := store.IncrementStreams(ctx); err != nil {
		t.Fatalf("IncrementStreams failed: %v", err)
	}
	if err := store.IncrementFrames(ctx, 30); err != nil {
		t.Fatalf("IncrementFrames failed: %v", err)
	}
	if err := store.IncrementAlerts(ctx, 2); err != nil {
		t.Fatalf("IncrementAlerts failed: %v", err)
	}
	if err := store.IncrementUtterances(ctx); err != nil {
		t.Fatalf("IncrementUtterances failed: %v", err)
	}

	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	if got := mr.HGet(key, "streams"); got != "1" {
		t.Errorf("expected streams=1, got %q", got)
	}
	if got := mr.HGet(key, "frames"); got != "30" {
		t.Errorf("expected frames=30, got %q", got)
	}
	if mr.TTL(key) <= 0 {
		t.Error("metrics key should carry a TTL")
	}
}

func TestMetricsStore_GetMetrics(t *testing.T) {
	store, _ := setupTestMetrics(t)
	ctx := context.Background()

	store.IncrementStreams(ctx)
	store.IncrementFrames(ctx, 100)
	store.IncrementAlerts(ctx, 5)
	store.RecordLatency(ctx, 200)
	store.RecordLatency(ctx, 400)

	metrics, err := store.GetMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 hourly bucket, got %d", len(metrics))
	}

	m := metrics[0]
	if m.Streams != 1 {
		t.Errorf("expected 1 stream, got %d", m.Streams)
	}
	if m.Frames != 100 {
		t.Errorf("expected 100 frames, got %d", m.Frames)
	}
	if m.Alerts != 5 {
		t.Errorf("expected 5 alerts, got %d", m.Alerts)
	}
	if m.AvgLatencyMs != 300 {
		t.Errorf("expected average latency 300ms, got %d", m.AvgLatencyMs)
	}
}

func TestMetricsStore_GetMetrics_Empty(t *testing.T) {
	store, _ := setupTestMetrics(t)

	metrics, err := store.GetMetrics(context.Background(), 24)
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if len(metrics) != 0 {
		t.Errorf("expected no buckets for an empty store, got %d", len(metrics))
	}
}
