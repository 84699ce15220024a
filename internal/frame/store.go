package frame

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps the most recent frames per stream in a redis sorted set
// scored by capture timestamp. The TTL bounds how long a stalled stream
// holds frame data.
type Store struct {
	redis    *redis.Client
	frameTTL time.Duration
}

func NewStore(redisClient *redis.Client, cfg StoreConfig) *Store {
	frameTTL := cfg.FrameTTL
	if frameTTL == 0 {
		frameTTL = 60 * time.Second
	}
	return &Store{
		redis:    redisClient,
		frameTTL: frameTTL,
	}
}

func framesKey(streamID string) string {
	return fmt.Sprintf("stream:%s:frames", streamID)
}

func (s *Store) Put(ctx context.Context, frame *Frame) error {
	key := framesKey(frame.StreamID)
	member := redis.Z{
		Score:  float64(frame.Timestamp),
		Member: frame.Data,
	}

	pipe := s.redis.Pipeline()
	pipe.ZAdd(ctx, key, member)
	pipe.ZRemRangeByRank(ctx, key, 0, -9)
	pipe.Expire(ctx, key, s.frameTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Latest(ctx context.Context, streamID string) (*Frame, error) {
	key := framesKey(streamID)
	results, err := s.redis.ZRevRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	data, ok := results[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("invalid frame data type")
	}

	return &Frame{
		StreamID:  streamID,
		Timestamp: int64(results[0].Score),
		Data:      []byte(data),
	}, nil
}

func (s *Store) Delete(ctx context.Context, streamID string) error {
	return s.redis.Del(ctx, framesKey(streamID)).Err()
}
