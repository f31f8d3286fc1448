package response

import (
	"time"

	"flashsale/internal/domain/order"
)

type SeckillResponse struct {
	// OrderID is returned as a string so clients never lose precision on
	// the 64-bit id.
	OrderID string `json:"orderId"`
}

type CreateVoucherResponse struct {
	ID int64 `json:"id"`
}

type OrderResponse struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	VoucherID  int64     `json:"voucherId"`
	Status     int       `json:"status"`
	CreateTime time.Time `json:"createTime"`
}

func FromOrder(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:         formatID(o.ID),
		UserID:     o.UserID,
		VoucherID:  o.VoucherID,
		Status:     int(o.Status),
		CreateTime: o.CreateTime,
	}
}
