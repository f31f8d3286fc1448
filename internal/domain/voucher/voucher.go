package voucher

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTitle    = errors.New("voucher title is empty")
	ErrNegativeStock = errors.New("voucher stock cannot be negative")
	ErrInvalidWindow = errors.New("sale window end must be after begin")
	ErrNotStarted    = errors.New("sale has not started")
	ErrEnded         = errors.New("sale has ended")
)

// Voucher is a limited flash-sale voucher: a fixed inventory sold only inside
// the [BeginTime, EndTime) window, at most one per user.
type Voucher struct {
	ID        int64
	ShopID    int64
	Title     string
	PayValue  int64 // price in cents
	Stock     int
	BeginTime time.Time
	EndTime   time.Time
}

func New(shopID int64, title string, payValue int64, stock int, begin, end time.Time) (*Voucher, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	if !end.After(begin) {
		return nil, ErrInvalidWindow
	}
	return &Voucher{
		ShopID:    shopID,
		Title:     title,
		PayValue:  payValue,
		Stock:     stock,
		BeginTime: begin,
		EndTime:   end,
	}, nil
}

// ValidateWindow reports whether the sale is open at the given instant.
func (v *Voucher) ValidateWindow(now time.Time) error {
	if now.Before(v.BeginTime) {
		return ErrNotStarted
	}
	if !now.Before(v.EndTime) {
		return ErrEnded
	}
	return nil
}
