package shop

import "time"

// Shop is a read-mostly merchant profile. It is served through the cache
// layer; updates go to the database first and then evict the cached entry.
type Shop struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TypeID     int64     `json:"typeId"`
	Address    string    `json:"address"`
	AvgPrice   int64     `json:"avgPrice"`
	Score      int32     `json:"score"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}
