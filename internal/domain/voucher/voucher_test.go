//go:build unit

package voucher_test

import (
	"testing"
	"time"

	"flashsale/internal/domain/voucher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	begin = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	end   = begin.Add(2 * time.Hour)
)

func TestNew(t *testing.T) {
	cases := []struct {
		name  string
		title string
		stock int
		begin time.Time
		end   time.Time
		errIs error
	}{
		{name: "valid voucher", title: "50 off coffee", stock: 100, begin: begin, end: end},
		{name: "zero stock is allowed", title: "50 off coffee", stock: 0, begin: begin, end: end},
		{name: "empty title", title: "", stock: 100, begin: begin, end: end, errIs: voucher.ErrEmptyTitle},
		{name: "blank title", title: "   ", stock: 100, begin: begin, end: end, errIs: voucher.ErrEmptyTitle},
		{name: "negative stock", title: "50 off coffee", stock: -1, begin: begin, end: end, errIs: voucher.ErrNegativeStock},
		{name: "end before begin", title: "50 off coffee", stock: 100, begin: end, end: begin, errIs: voucher.ErrInvalidWindow},
		{name: "zero-length window", title: "50 off coffee", stock: 100, begin: begin, end: begin, errIs: voucher.ErrInvalidWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := voucher.New(1, tc.title, 5000, tc.stock, tc.begin, tc.end)
			if tc.errIs != nil {
				require.Nil(t, v)
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, v)
			assert.Equal(t, tc.stock, v.Stock)
		})
	}
}

func TestValidateWindow(t *testing.T) {
	v, err := voucher.New(1, "50 off coffee", 5000, 100, begin, end)
	require.NoError(t, err)

	cases := []struct {
		name  string
		now   time.Time
		errIs error
	}{
		{name: "before begin", now: begin.Add(-time.Second), errIs: voucher.ErrNotStarted},
		{name: "at begin", now: begin},
		{name: "inside window", now: begin.Add(time.Hour)},
		{name: "at end is closed", now: end, errIs: voucher.ErrEnded},
		{name: "after end", now: end.Add(time.Second), errIs: voucher.ErrEnded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateWindow(tc.now)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
		})
	}
}
