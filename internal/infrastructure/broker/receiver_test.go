package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishMessages(t *testing.T, ctx context.Context, client *Client, messages []string) error {
	t.Helper()

	if client.redis == nil {
		return errors.New("redis not initialized")
	}

	for _, msg := range messages {
		err := client.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: client.stream,
			Values: map[string]any{bodyField: msg},
		}).Err()
		if err != nil {
			return err
		}
	}

	return nil
}

func TestMessages_SingleAndMultipleMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payloads []string
	}{
		{"single message", []string{"hello"}},
		{"empty message", []string{""}},
		{"multiple messages", []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			uri, terminate := setupRedis(t)
			defer terminate()

			client, err := NewClient(Config{
				URI:        uri,
				StreamName: StreamName,
				GroupName:  GroupName,
			})
			require.NoError(t, err)
			defer client.Close()

			require.NoError(t, publishMessages(t, context.Background(), client, tt.payloads))

			receiver := NewReceiver(client)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			ch, err := receiver.Messages(ctx, Consumer)
			require.NoError(t, err)

			received := make([]string, 0, len(tt.payloads))
			for range tt.payloads {
				msg := <-ch
				require.NotNil(t, msg)
				assert.NotEmpty(t, msg.ID())
				received = append(received, msg.Body())
				assert.NoError(t, msg.Ack())
			}

			assert.ElementsMatch(t, tt.payloads, received)
		})
	}
}

func TestMessages_PublisherToReceiver(t *testing.T) {
	t.Parallel()
	uri, terminate := setupRedis(t)
	defer terminate()

	client, err := NewClient(Config{URI: uri, StreamName: StreamName, GroupName: GroupName})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, NewPublisher(client, PublisherConfig{Timeout: 1000, MaxLen: 100}).Publish(ctx, "ingested"))

	ch, err := NewReceiver(client).Messages(ctx, Consumer)
	require.NoError(t, err)

	msg := <-ch
	require.NotNil(t, msg)
	assert.Equal(t, "ingested", msg.Body())
	assert.NoError(t, msg.Ack())
}

func TestMessages_ConcurrentConsumers(t *testing.T) {
	t.Parallel()
	uri, terminate := setupRedis(t)
	defer terminate()

	client, err := NewClient(Config{
		URI:        uri,
		StreamName: StreamName,
		GroupName:  GroupName,
	})
	require.NoError(t, err)
	defer client.Close()

	totalMessages := 100
	workers := 5
	messages := make([]string, totalMessages)
	for i := range totalMessages {
		messages[i] = fmt.Sprintf("msg-%d", i)
	}

	require.NoError(t, publishMessages(t, context.Background(), client, messages))

	received := make(chan string, totalMessages)
	var wg sync.WaitGroup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	receiver := NewReceiver(client)

	for i := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			ch, err := receiver.Messages(ctx, fmt.Sprintf("consumer-%d", id))
			if err != nil {
				return
			}
			for msg := range ch {
				received <- msg.Body()
				_ = msg.Ack()
			}
		}(i)
	}

	wg.Wait()
	close(received)

	seen := make(map[string]bool)
	for msg := range received {
		assert.False(t, seen[msg], "duplicate message received: %s", msg)
		seen[msg] = true
	}
	assert.Len(t, seen, totalMessages)
}

func TestMessages_ContextCancel(t *testing.T) {
	t.Parallel()
	uri, terminate := setupRedis(t)
	defer terminate()

	client, err := NewClient(Config{
		URI:        uri,
		StreamName: StreamName,
		GroupName:  GroupName,
	})
	require.NoError(t, err)
	defer client.Close()

	receiver := NewReceiver(client)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	ch, err := receiver.Messages(ctx, "consumer-cancel")
	require.NoError(t, err)
	_, ok := <-ch
	assert.False(t, ok, "expected channel to be closed due to context cancel")
}

func TestMessages_InvalidClient(t *testing.T) {
	t.Parallel()

	receiver := &Receiver{}
	ch, err := receiver.Messages(context.Background(), "invalid-consumer")
	assert.Nil(t, ch)
	assert.Error(t, err)
}
