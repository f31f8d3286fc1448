package request

import (
	"time"

	"flashsale/internal/usecase/commands"
)

type CreateVoucherRequest struct {
	ShopID    int64     `json:"shopId" binding:"required,gt=0"`
	Title     string    `json:"title" binding:"required"`
	PayValue  int64     `json:"payValue" binding:"required,gt=0"`
	Stock     int       `json:"stock" binding:"required,gt=0"`
	BeginTime time.Time `json:"beginTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
}

func (r *CreateVoucherRequest) ToInput() commands.NewVoucherInput {
	return commands.NewVoucherInput{
		ShopID:    r.ShopID,
		Title:     r.Title,
		PayValue:  r.PayValue,
		Stock:     r.Stock,
		BeginTime: r.BeginTime,
		EndTime:   r.EndTime,
	}
}
