package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

// Granite and tile tables share one layout. seq is a BIGSERIAL that breaks
// ties between equal sort_order values.
const (
	graniteTable = "granites"
	tileTable    = "tiles"
)

// ListGranites returns every granite ordered by sort_order.
func (s *PostgresStorage) ListGranites(ctx context.Context) ([]models.Granite, error) {
	items, err := s.listCatalog(ctx, graniteTable)
	if err != nil {
		return nil, err
	}
	out := make([]models.Granite, len(items))
	for i, it := range items {
		out[i] = models.Granite(it)
	}
	return out, nil
}

// CreateGranite inserts a granite and returns it with its id and createdAt.
func (s *PostgresStorage) CreateGranite(ctx context.Context, in models.CatalogInput) (*models.Granite, error) {
	it, err := s.createCatalog(ctx, graniteTable, in)
	if err != nil {
		return nil, err
	}
	g := models.Granite(*it)
	return &g, nil
}

// UpdateGranite overwrites the non-nil fields of upd.
func (s *PostgresStorage) UpdateGranite(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Granite, error) {
	it, err := s.updateCatalog(ctx, graniteTable, id, upd)
	if err != nil {
		return nil, err
	}
	g := models.Granite(*it)
	return &g, nil
}

// DeleteGranite removes a granite. Deleting an unknown id is not an error.
func (s *PostgresStorage) DeleteGranite(ctx context.Context, id string) error {
	return s.deleteByID(ctx, graniteTable, id)
}

// ListTiles returns every tile ordered by sort_order.
func (s *PostgresStorage) ListTiles(ctx context.Context) ([]models.Tile, error) {
	items, err := s.listCatalog(ctx, tileTable)
	if err != nil {
		return nil, err
	}
	out := make([]models.Tile, len(items))
	for i, it := range items {
		out[i] = models.Tile(it)
	}
	return out, nil
}

// CreateTile inserts a tile and returns it with its id and createdAt.
func (s *PostgresStorage) CreateTile(ctx context.Context, in models.CatalogInput) (*models.Tile, error) {
	it, err := s.createCatalog(ctx, tileTable, in)
	if err != nil {
		return nil, err
	}
	t := models.Tile(*it)
	return &t, nil
}

// UpdateTile overwrites the non-nil fields of upd.
func (s *PostgresStorage) UpdateTile(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Tile, error) {
	it, err := s.updateCatalog(ctx, tileTable, id, upd)
	if err != nil {
		return nil, err
	}
	t := models.Tile(*it)
	return &t, nil
}

// DeleteTile removes a tile. Deleting an unknown id is not an error.
func (s *PostgresStorage) DeleteTile(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tileTable, id)
}

func (s *PostgresStorage) listCatalog(ctx context.Context, table string) ([]models.CatalogItem, error) {
	rows, err := s.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, image, sort_order, created_at FROM %s ORDER BY sort_order, seq`, table))
	if err != nil {
		return nil, mapError("list "+table, err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		var it models.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Image, &it.Order, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		it.CreatedAt = it.CreatedAt.UTC()
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list "+table, err)
	}
	return items, nil
}

func (s *PostgresStorage) createCatalog(ctx context.Context, table string, in models.CatalogInput) (*models.CatalogItem, error) {
	it := models.CatalogItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Image:     in.Image,
		Order:     in.OrderOrDefault(),
		CreatedAt: models.Timestamp(),
	}
	_, err := s.DB.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, name, image, sort_order, created_at) VALUES ($1, $2, $3, $4, $5)`, table),
		it.ID, it.Name, it.Image, it.Order, it.CreatedAt,
	)
	if err != nil {
		return nil, mapError("create "+table, err)
	}
	return &it, nil
}

func (s *PostgresStorage) updateCatalog(ctx context.Context, table, id string, upd models.CatalogUpdate) (*models.CatalogItem, error) {
	var it models.CatalogItem
	err := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE %s SET
			name = COALESCE($2, name),
			image = COALESCE($3, image),
			sort_order = COALESCE($4, sort_order)
		WHERE id = $1
		RETURNING id, name, image, sort_order, created_at
	`, table), id, upd.Name, upd.Image, upd.Order).Scan(&it.ID, &it.Name, &it.Image, &it.Order, &it.CreatedAt)
	if err != nil {
		return nil, mapError("update "+table, err)
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return &it, nil
}

// deleteByID is shared by every table keyed on id. table is always a
// package constant.
func (s *PostgresStorage) deleteByID(ctx context.Context, table, id string) error {
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	return mapError("delete "+table, err)
}
