package repository

import (
	"context"
	"errors"

	"flashsale/internal/domain/shop"
	"flashsale/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShopRepository struct {
	db *pgxpool.Pool
}

func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) FindByID(ctx context.Context, id int64) (*shop.Shop, error) {
	const query = `
		SELECT id, name, type_id, address, avg_price, score, create_time, update_time
		FROM shops WHERE id = $1
	`

	var s shop.Shop
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.TypeID, &s.Address, &s.AvgPrice, &s.Score, &s.CreateTime, &s.UpdateTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("shop not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find shop by id", err)
	}
	return &s, nil
}

func (r *ShopRepository) Update(ctx context.Context, s *shop.Shop) error {
	const query = `
		UPDATE shops
		SET name = $2, type_id = $3, address = $4, avg_price = $5, score = $6, update_time = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, s.ID, s.Name, s.TypeID, s.Address, s.AvgPrice, s.Score)
	if err != nil {
		return infra.WrapRepoErr("failed to update shop", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("shop not found", nil, infra.KindNotFound)
	}
	return nil
}
