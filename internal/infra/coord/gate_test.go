//go:build unit

package coord

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateStore struct {
	result   any
	evalErr  error
	script   string
	keys     []string
	args     []any
	setKey   string
	setValue string
}

func (s *fakeGateStore) Eval(_ context.Context, script string, keys []string, args ...any) (any, error) {
	s.script = script
	s.keys = keys
	s.args = args
	return s.result, s.evalErr
}

func (s *fakeGateStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.setKey = key
	s.setValue = value
	return nil
}

func TestAdmissionGate_Admit(t *testing.T) {
	t.Run("maps script result codes", func(t *testing.T) {
		cases := []struct {
			name   string
			result int64
			want   AdmitResult
		}{
			{name: "admitted", result: 0, want: AdmitOK},
			{name: "sold out", result: 1, want: AdmitSoldOut},
			{name: "duplicate user", result: 2, want: AdmitDuplicate},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				store := &fakeGateStore{result: tc.result}
				gate := NewAdmissionGate(store, "stream.orders")

				got, err := gate.Admit(context.Background(), 7, 42, 1001)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("passes ids and stream as script arguments", func(t *testing.T) {
		store := &fakeGateStore{result: int64(0)}
		gate := NewAdmissionGate(store, "stream.orders")

		_, err := gate.Admit(context.Background(), 7, 42, 1001)
		require.NoError(t, err)

		assert.Empty(t, store.keys)
		assert.Equal(t, []any{"7", "42", "1001", "stream.orders"}, store.args)
	})

	t.Run("rejects unknown result codes", func(t *testing.T) {
		store := &fakeGateStore{result: int64(9)}
		gate := NewAdmissionGate(store, "stream.orders")

		_, err := gate.Admit(context.Background(), 7, 42, 1001)
		require.Error(t, err)
	})

	t.Run("rejects non-integer results", func(t *testing.T) {
		store := &fakeGateStore{result: "boom"}
		gate := NewAdmissionGate(store, "stream.orders")

		_, err := gate.Admit(context.Background(), 7, 42, 1001)
		require.Error(t, err)
	})
}

func TestAdmissionGate_SeedStock(t *testing.T) {
	store := &fakeGateStore{}
	gate := NewAdmissionGate(store, "stream.orders")

	err := gate.SeedStock(context.Background(), 7, 100)
	require.NoError(t, err)

	assert.Equal(t, "seckill:stock:7", store.setKey)
	assert.Equal(t, "100", store.setValue)
}

// scriptedGateStore emulates the admission script's server-side steps (stock
// check, dedup check, decrement, member add, stream append), the way
// fakeLockStore emulates the unlock script. It lets the branch order and key
// layout be exercised without a real Redis.
type scriptedGateStore struct {
	stock   map[string]int
	members map[string]map[string]bool
	streams map[string][]map[string]string
}

func newScriptedGateStore() *scriptedGateStore {
	return &scriptedGateStore{
		stock:   make(map[string]int),
		members: make(map[string]map[string]bool),
		streams: make(map[string][]map[string]string),
	}
}

func (s *scriptedGateStore) Eval(_ context.Context, _ string, _ []string, args ...any) (any, error) {
	voucherID := args[0].(string)
	userID := args[1].(string)
	orderID := args[2].(string)
	streamKey := args[3].(string)

	stockKey := "seckill:stock:" + voucherID
	orderKey := "seckill:order:" + voucherID

	if s.stock[stockKey] <= 0 {
		return int64(1), nil
	}
	if s.members[orderKey][userID] {
		return int64(2), nil
	}
	s.stock[stockKey]--
	if s.members[orderKey] == nil {
		s.members[orderKey] = make(map[string]bool)
	}
	s.members[orderKey][userID] = true
	s.streams[streamKey] = append(s.streams[streamKey], map[string]string{
		"userId":    userID,
		"voucherId": voucherID,
		"id":        orderID,
	})
	return int64(0), nil
}

func (s *scriptedGateStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	s.stock[key] = n
	return nil
}

func TestAdmissionGate_AdmitSemantics(t *testing.T) {
	ctx := context.Background()

	t.Run("zero stock rejects without side effects", func(t *testing.T) {
		store := newScriptedGateStore()
		gate := NewAdmissionGate(store, "stream.orders")
		require.NoError(t, gate.SeedStock(ctx, 7, 0))

		res, err := gate.Admit(ctx, 7, 42, 1001)
		require.NoError(t, err)
		assert.Equal(t, AdmitSoldOut, res)

		assert.Equal(t, 0, store.stock["seckill:stock:7"])
		assert.Empty(t, store.members["seckill:order:7"])
		assert.Empty(t, store.streams["stream.orders"])
	})

	t.Run("admission decrements stock and enqueues the order", func(t *testing.T) {
		store := newScriptedGateStore()
		gate := NewAdmissionGate(store, "stream.orders")
		require.NoError(t, gate.SeedStock(ctx, 7, 2))

		res, err := gate.Admit(ctx, 7, 42, 1001)
		require.NoError(t, err)
		assert.Equal(t, AdmitOK, res)

		assert.Equal(t, 1, store.stock["seckill:stock:7"])
		assert.True(t, store.members["seckill:order:7"]["42"])

		entries := store.streams["stream.orders"]
		require.Len(t, entries, 1)
		assert.Equal(t, map[string]string{
			"userId":    "42",
			"voucherId": "7",
			"id":        "1001",
		}, entries[0])
	})

	t.Run("same user is admitted at most once", func(t *testing.T) {
		store := newScriptedGateStore()
		gate := NewAdmissionGate(store, "stream.orders")
		require.NoError(t, gate.SeedStock(ctx, 7, 5))

		res, err := gate.Admit(ctx, 7, 42, 1001)
		require.NoError(t, err)
		assert.Equal(t, AdmitOK, res)

		res, err = gate.Admit(ctx, 7, 42, 1002)
		require.NoError(t, err)
		assert.Equal(t, AdmitDuplicate, res)

		// The rejected attempt must leave no trace: one decrement, one entry.
		assert.Equal(t, 4, store.stock["seckill:stock:7"])
		assert.Len(t, store.streams["stream.orders"], 1)
	})

	t.Run("last unit goes to exactly one of two users", func(t *testing.T) {
		store := newScriptedGateStore()
		gate := NewAdmissionGate(store, "stream.orders")
		require.NoError(t, gate.SeedStock(ctx, 7, 1))

		res, err := gate.Admit(ctx, 7, 42, 1001)
		require.NoError(t, err)
		assert.Equal(t, AdmitOK, res)

		res, err = gate.Admit(ctx, 7, 43, 1002)
		require.NoError(t, err)
		assert.Equal(t, AdmitSoldOut, res)

		assert.Equal(t, 0, store.stock["seckill:stock:7"])
		assert.False(t, store.members["seckill:order:7"]["43"])

		entries := store.streams["stream.orders"]
		require.Len(t, entries, 1)
		assert.Equal(t, "42", entries[0]["userId"])
	})

	t.Run("admissions never exceed seeded stock", func(t *testing.T) {
		store := newScriptedGateStore()
		gate := NewAdmissionGate(store, "stream.orders")
		require.NoError(t, gate.SeedStock(ctx, 7, 3))

		admitted := 0
		for userID := int64(1); userID <= 10; userID++ {
			res, err := gate.Admit(ctx, 7, userID, 1000+userID)
			require.NoError(t, err)
			if res == AdmitOK {
				admitted++
			} else {
				assert.Equal(t, AdmitSoldOut, res)
			}
		}

		assert.Equal(t, 3, admitted)
		assert.Len(t, store.streams["stream.orders"], 3)
		assert.Equal(t, 0, store.stock["seckill:stock:7"])
	})
}
