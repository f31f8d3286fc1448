// Package coord implements the Redis-backed coordination primitives shared by
// the flash-sale path: globally unique id generation, leased mutual exclusion,
// atomic purchase admission, and the order stream queue. All cross-process
// state (stock counters, dedup sets, lock ownership, cache entries, the queue)
// lives in Redis; nothing in this package talks to the database.
package coord

import (
	"context"
	"strings"
	"time"

	"flashsale/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// Message is one entry delivered from a stream.
type Message struct {
	ID     string
	Values map[string]any
}

// Client adapts go-redis to the narrow, plainly-typed surface the rest of the
// package (and its tests) program against.
type Client struct {
	rdb redis.Cmdable
}

func NewClient(rdb redis.Cmdable) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// Get returns the value and whether the key exists. A missing key is not an
// error; callers that cache empty markers rely on the distinction between
// "absent" and "present but empty".
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a string value. ttl <= 0 means no expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	return c.rdb.Eval(ctx, script, keys, args...).Result()
}

// EnsureGroup creates the consumer group, creating the stream if needed.
// An already-existing group is not an error.
func (c *Client) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return errs.Wrap(err, "failed to create consumer group")
	}
	return nil
}

// ReadGroup reads up to count entries for a consumer. offset ">" delivers new
// entries, "0" re-reads this consumer's own pending entries. block <= 0 means
// non-blocking.
func (c *Client) ReadGroup(ctx context.Context, group, consumer, stream, offset string, count int64, block time.Duration) ([]Message, error) {
	if block <= 0 {
		block = -1 // go-redis: negative disables the BLOCK option
	}
	res, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, offset},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []Message
	for _, s := range res {
		for _, m := range s.Messages {
			values := make(map[string]any, len(m.Values))
			for k, v := range m.Values {
				values[k] = v
			}
			msgs = append(msgs, Message{ID: m.ID, Values: values})
		}
	}
	return msgs, nil
}

func (c *Client) Ack(ctx context.Context, stream, group string, ids ...string) error {
	return c.rdb.XAck(ctx, stream, group, ids...).Err()
}
