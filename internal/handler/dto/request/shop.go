package request

import (
	"flashsale/internal/domain/shop"
)

type UpdateShopRequest struct {
	Name     string `json:"name" binding:"required"`
	TypeID   int64  `json:"typeId" binding:"required,gt=0"`
	Address  string `json:"address" binding:"required"`
	AvgPrice int64  `json:"avgPrice" binding:"gte=0"`
	Score    int32  `json:"score" binding:"gte=0,lte=50"`
}

func (r *UpdateShopRequest) ToDomain(id int64) *shop.Shop {
	return &shop.Shop{
		ID:       id,
		Name:     r.Name,
		TypeID:   r.TypeID,
		Address:  r.Address,
		AvgPrice: r.AvgPrice,
		Score:    r.Score,
	}
}
