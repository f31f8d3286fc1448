//go:build unit

package coord

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamClient struct {
	messages   []Message
	lastOffset string
	lastBlock  time.Duration
	acked      []string
	ensured    bool
}

func (c *fakeStreamClient) EnsureGroup(_ context.Context, _, _ string) error {
	c.ensured = true
	return nil
}

func (c *fakeStreamClient) ReadGroup(_ context.Context, _, _, _, offset string, count int64, block time.Duration) ([]Message, error) {
	c.lastOffset = offset
	c.lastBlock = block
	if len(c.messages) == 0 {
		return nil, nil
	}
	n := int(count)
	if n > len(c.messages) {
		n = len(c.messages)
	}
	out := c.messages[:n]
	c.messages = c.messages[n:]
	return out, nil
}

func (c *fakeStreamClient) Ack(_ context.Context, _, _ string, ids ...string) error {
	c.acked = append(c.acked, ids...)
	return nil
}

func TestOrderQueue(t *testing.T) {
	t.Run("ReadNext asks for new entries with the blocking timeout", func(t *testing.T) {
		client := &fakeStreamClient{messages: []Message{{ID: "1-0"}}}
		queue := NewOrderQueue(client, "stream.orders", "g1", "c1")

		msg, err := queue.ReadNext(context.Background(), 2*time.Second)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "1-0", msg.ID)
		assert.Equal(t, ">", client.lastOffset)
		assert.Equal(t, 2*time.Second, client.lastBlock)
	})

	t.Run("ReadNext returns nil on timeout", func(t *testing.T) {
		client := &fakeStreamClient{}
		queue := NewOrderQueue(client, "stream.orders", "g1", "c1")

		msg, err := queue.ReadNext(context.Background(), time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("ReadPending re-reads own entries without blocking", func(t *testing.T) {
		client := &fakeStreamClient{messages: []Message{{ID: "1-0"}}}
		queue := NewOrderQueue(client, "stream.orders", "g1", "c1")

		msg, err := queue.ReadPending(context.Background())
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "0", client.lastOffset)
		assert.Equal(t, time.Duration(0), client.lastBlock)
	})

	t.Run("Ack forwards the entry id", func(t *testing.T) {
		client := &fakeStreamClient{}
		queue := NewOrderQueue(client, "stream.orders", "g1", "c1")

		require.NoError(t, queue.Ack(context.Background(), "1-0"))
		assert.Equal(t, []string{"1-0"}, client.acked)
	})

	t.Run("Ensure creates the group", func(t *testing.T) {
		client := &fakeStreamClient{}
		queue := NewOrderQueue(client, "stream.orders", "g1", "c1")

		require.NoError(t, queue.Ensure(context.Background()))
		assert.True(t, client.ensured)
	})
}
