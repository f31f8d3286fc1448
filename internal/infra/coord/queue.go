package coord

import (
	"context"
	"time"
)

type StreamClient interface {
	EnsureGroup(ctx context.Context, stream, group string) error
	ReadGroup(ctx context.Context, group, consumer, stream, offset string, count int64, block time.Duration) ([]Message, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
}

// OrderQueue is one consumer's view of the order stream. Entries are appended
// by the admission script; this side only reads and acknowledges.
type OrderQueue struct {
	client   StreamClient
	stream   string
	group    string
	consumer string
}

func NewOrderQueue(client StreamClient, stream, group, consumer string) *OrderQueue {
	return &OrderQueue{client: client, stream: stream, group: group, consumer: consumer}
}

func (q *OrderQueue) Ensure(ctx context.Context) error {
	return q.client.EnsureGroup(ctx, q.stream, q.group)
}

// ReadNext blocks up to the given timeout for the next undelivered entry.
// (nil, nil) means the timeout elapsed with nothing to read.
func (q *OrderQueue) ReadNext(ctx context.Context, block time.Duration) (*Message, error) {
	msgs, err := q.client.ReadGroup(ctx, q.group, q.consumer, q.stream, ">", 1, block)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// ReadPending returns the oldest entry delivered to this consumer but not yet
// acknowledged, without blocking. (nil, nil) means the pending list is empty.
func (q *OrderQueue) ReadPending(ctx context.Context) (*Message, error) {
	msgs, err := q.client.ReadGroup(ctx, q.group, q.consumer, q.stream, "0", 1, 0)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

func (q *OrderQueue) Ack(ctx context.Context, id string) error {
	return q.client.Ack(ctx, q.stream, q.group, id)
}
