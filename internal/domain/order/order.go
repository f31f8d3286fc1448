package order

import (
	"errors"
	"time"
)

var ErrInvalidID = errors.New("order ids must be positive")

type Status int16

const (
	StatusUnpaid Status = iota + 1
	StatusPaid
	StatusCanceled
	StatusRefunded
)

// Order is a materialized voucher purchase. At most one exists per
// (UserID, VoucherID) pair; the admission script enforces this on the fast
// path and the consumer re-checks it against the database. Immutable once
// written, apart from payment status transitions outside this core.
type Order struct {
	ID         int64
	UserID     int64
	VoucherID  int64
	Status     Status
	CreateTime time.Time
}

func New(id, userID, voucherID int64) (*Order, error) {
	if id <= 0 || userID <= 0 || voucherID <= 0 {
		return nil, ErrInvalidID
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		VoucherID: voucherID,
		Status:    StatusUnpaid,
	}, nil
}
