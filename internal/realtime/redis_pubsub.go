package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "signage:"
	publishTimeout = 5 * time.Second
)

// redisEnvelope wraps a broadcast for cross-process delivery. Origin lets a
// process drop its own messages, which it already delivered locally.
type redisEnvelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
	At      int64           `json:"at"`
}

// RedisPubSub bridges signage broadcasts across server processes.
type RedisPubSub struct {
	client *redis.Client
	origin string
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge with a unique process origin.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, origin: uuid.New().String(), logger: logger}
}

// PublishSignageEvent publishes a serialized broadcast to the instance channel.
func (r *RedisPubSub) PublishSignageEvent(signageID string, payload []byte) error {
	body, err := json.Marshal(redisEnvelope{Origin: r.origin, Payload: payload, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, channelPrefix+signageID, body).Err()
}

// SubscribeSignage subscribes to an instance channel and calls handler for
// events published by other processes. Returns a cancel function.
func (r *RedisPubSub) SubscribeSignage(signageID string, handler func(payload []byte)) (cancel func(), err error) {
	channel := channelPrefix + signageID
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env redisEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				if env.Origin == r.origin {
					continue
				}
				handler(env.Payload)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
