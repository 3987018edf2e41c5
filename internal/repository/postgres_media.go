package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

const (
	sliderTable   = "slider_images"
	locationTable = "map_locations"
)

// ListSliderImages returns slider images ordered by sort_order.
func (s *PostgresStorage) ListSliderImages(ctx context.Context) ([]models.SliderImage, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, before_image, after_image, sort_order FROM slider_images ORDER BY sort_order, seq`)
	if err != nil {
		return nil, mapError("list slider images", err)
	}
	defer rows.Close()

	images := []models.SliderImage{}
	for rows.Next() {
		var img models.SliderImage
		if err := rows.Scan(&img.ID, &img.BeforeImage, &img.AfterImage, &img.Order); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list slider images", err)
	}
	return images, nil
}

// CreateSliderImage inserts a before/after pair.
func (s *PostgresStorage) CreateSliderImage(ctx context.Context, in models.SliderImageInput) (*models.SliderImage, error) {
	img := models.SliderImage{
		ID:          uuid.NewString(),
		BeforeImage: in.BeforeImage,
		AfterImage:  in.AfterImage,
		Order:       in.OrderOrDefault(),
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO slider_images (id, before_image, after_image, sort_order) VALUES ($1, $2, $3, $4)`,
		img.ID, img.BeforeImage, img.AfterImage, img.Order,
	)
	if err != nil {
		return nil, mapError("create slider image", err)
	}
	return &img, nil
}

// UpdateSliderImage overwrites the non-nil fields of upd.
func (s *PostgresStorage) UpdateSliderImage(ctx context.Context, id string, upd models.SliderImageUpdate) (*models.SliderImage, error) {
	var img models.SliderImage
	err := s.DB.QueryRowContext(ctx, `
		UPDATE slider_images SET
			before_image = COALESCE($2, before_image),
			after_image = COALESCE($3, after_image),
			sort_order = COALESCE($4, sort_order)
		WHERE id = $1
		RETURNING id, before_image, after_image, sort_order
	`, id, upd.BeforeImage, upd.AfterImage, upd.Order).Scan(&img.ID, &img.BeforeImage, &img.AfterImage, &img.Order)
	if err != nil {
		return nil, mapError("update slider image", err)
	}
	return &img, nil
}

// DeleteSliderImage removes a slider image. Deleting an unknown id is not an error.
func (s *PostgresStorage) DeleteSliderImage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, sliderTable, id)
}

// ListMapLocations returns map locations in insertion order.
func (s *PostgresStorage) ListMapLocations(ctx context.Context) ([]models.MapLocation, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, type, lat, lng, is_coming_soon FROM map_locations ORDER BY seq`)
	if err != nil {
		return nil, mapError("list map locations", err)
	}
	defer rows.Close()

	locations := []models.MapLocation{}
	for rows.Next() {
		var l models.MapLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.Lat, &l.Lng, &l.IsComingSoon); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list map locations", err)
	}
	return locations, nil
}

// CreateMapLocation inserts a map marker. Coordinates are stored as text.
func (s *PostgresStorage) CreateMapLocation(ctx context.Context, in models.MapLocationInput) (*models.MapLocation, error) {
	l := models.MapLocation{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Type:         in.Type,
		Lat:          in.Lat,
		Lng:          in.Lng,
		IsComingSoon: in.ComingSoonOrDefault(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO map_locations (id, name, type, lat, lng, is_coming_soon)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.Name, l.Type, l.Lat, l.Lng, l.IsComingSoon)
	if err != nil {
		return nil, mapError("create map location", err)
	}
	return &l, nil
}

// UpdateMapLocation overwrites the non-nil fields of upd.
func (s *PostgresStorage) UpdateMapLocation(ctx context.Context, id string, upd models.MapLocationUpdate) (*models.MapLocation, error) {
	var l models.MapLocation
	err := s.DB.QueryRowContext(ctx, `
		UPDATE map_locations SET
			name = COALESCE($2, name),
			type = COALESCE($3, type),
			lat = COALESCE($4, lat),
			lng = COALESCE($5, lng),
			is_coming_soon = COALESCE($6, is_coming_soon)
		WHERE id = $1
		RETURNING id, name, type, lat, lng, is_coming_soon
	`, id, upd.Name, upd.Type, upd.Lat, upd.Lng, upd.IsComingSoon).
		Scan(&l.ID, &l.Name, &l.Type, &l.Lat, &l.Lng, &l.IsComingSoon)
	if err != nil {
		return nil, mapError("update map location", err)
	}
	return &l, nil
}

// DeleteMapLocation removes a map marker. Deleting an unknown id is not an error.
func (s *PostgresStorage) DeleteMapLocation(ctx context.Context, id string) error {
	return s.deleteByID(ctx, locationTable, id)
}
