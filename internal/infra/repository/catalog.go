package repository

import (
	"context"

	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

// ShopSnapshot is the read-only projection of the external shop catalog this
// core consumes: ownership, operating hours and the booking-advance window.
type ShopSnapshot struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         string
	Timezone     string
	OpenMinutes  int
	CloseMinutes int
	AdvanceDays  int
}

// ServiceSnapshot carries the pricing inputs: duration and price per service.
type ServiceSnapshot struct {
	ID              uuid.UUID
	ShopID          uuid.UUID
	Name            string
	DurationMinutes int
	Price           int64
}

type CatalogRepository struct {
	db db.DBTX
}

func NewCatalogRepository(dbtx db.DBTX) *CatalogRepository {
	return &CatalogRepository{db: dbtx}
}

func (r *CatalogRepository) FindShop(ctx context.Context, shopID uuid.UUID) (*ShopSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, timezone, open_minutes, close_minutes, advance_days
		FROM shops
		WHERE id = $1`,
		shopID,
	)

	var s ShopSnapshot
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Timezone, &s.OpenMinutes, &s.CloseMinutes, &s.AdvanceDays)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("shop not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find shop", err)
	}
	return &s, nil
}

// FindServices resolves the requested services and preserves request order.
// A missing ID yields KindNotFound.
func (r *CatalogRepository) FindServices(ctx context.Context, shopID uuid.UUID, serviceIDs []uuid.UUID) ([]*ServiceSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, name, duration_minutes, price
		FROM shop_services
		WHERE shop_id = $1 AND id = ANY($2)`,
		shopID, serviceIDs,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query services", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*ServiceSnapshot, len(serviceIDs))
	for rows.Next() {
		var s ServiceSnapshot
		if err := rows.Scan(&s.ID, &s.ShopID, &s.Name, &s.DurationMinutes, &s.Price); err != nil {
			return nil, infra.WrapRepoErr("failed to scan service", err)
		}
		byID[s.ID] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate services", err)
	}

	out := make([]*ServiceSnapshot, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		s, ok := byID[id]
		if !ok {
			return nil, infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
		}
		out = append(out, s)
	}
	return out, nil
}
