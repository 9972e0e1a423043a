package broker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"postbridge/internal/domain/repository/broker"
	"postbridge/pkg/logger"
)

// Receiver reads the ingestion stream as a member of the configured consumer
// group. Each message is delivered to one consumer of the group.
type Receiver struct {
	redis     *redis.Client
	stream    string
	group     string
	blockTime time.Duration
}

func NewReceiver(client *Client) *Receiver {
	return &Receiver{
		redis:     client.redis,
		stream:    client.stream,
		group:     client.group,
		blockTime: 5 * time.Second,
	}
}

func (r *Receiver) Messages(ctx context.Context, consumerName string) (<-chan broker.Message, error) {
	if r.redis == nil {
		return nil, errors.New("redis not initialized")
	}

	out := make(chan broker.Message)
	go r.consumeLoop(ctx, out, consumerName)

	return out, nil
}

func (r *Receiver) consumeLoop(ctx context.Context, out chan broker.Message, consumerName string) {
	defer close(out)

	for ctx.Err() == nil {
		if !r.readAndEmit(ctx, out, consumerName) {
			return
		}
	}
}

// readAndEmit reports false once ctx is done.
func (r *Receiver) readAndEmit(ctx context.Context, out chan broker.Message, consumerName string) bool {
	entries, err := r.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: consumerName,
		Streams:  []string{r.stream, ">"},
		Count:    1,
		Block:    r.blockTime,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		if ctx.Err() != nil {
			return false
		}

		logger.Error("failed to read from redis stream group", "stream", r.stream, "err", err)

		select {
		case <-time.After(time.Second):
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, stream := range entries {
		for _, msg := range stream.Messages {
			body, ok := msg.Values[bodyField].(string)
			if !ok {
				logger.Warn("invalid body type in redis message", "id", msg.ID)

				continue
			}

			select {
			case out <- &RedisMessage{
				stream:      r.stream,
				group:       r.group,
				id:          msg.ID,
				body:        body,
				redisClient: r.redis,
			}:
			case <-ctx.Done():
				return false
			}
		}
	}

	return true
}
