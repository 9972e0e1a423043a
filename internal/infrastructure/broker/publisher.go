package broker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const bodyField = "body"

type Publisher struct {
	client  *Client
	timeout time.Duration
	maxLen  int64
}

func NewPublisher(client *Client, cfg PublisherConfig) *Publisher {
	return &Publisher{
		client:  client,
		timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		maxLen:  cfg.MaxLen,
	}
}

// Publish appends message to the stream. When MaxLen is set the stream is
// trimmed approximately to that many entries.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	if p.client == nil || p.client.redis == nil {
		return errors.New("redis not initialized")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.client.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.client.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]any{bodyField: message},
	}).Err()
}
