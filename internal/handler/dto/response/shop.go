package response

import (
	"time"

	"flashsale/internal/usecase/queries"
)

type ShopResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TypeID     int64     `json:"typeId"`
	Address    string    `json:"address"`
	AvgPrice   int64     `json:"avgPrice"`
	Score      int32     `json:"score"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

func FromShopView(v *queries.ShopView) *ShopResponse {
	return &ShopResponse{
		ID:         v.ID,
		Name:       v.Name,
		TypeID:     v.TypeID,
		Address:    v.Address,
		AvgPrice:   v.AvgPrice,
		Score:      v.Score,
		CreateTime: v.CreateTime,
		UpdateTime: v.UpdateTime,
	}
}
