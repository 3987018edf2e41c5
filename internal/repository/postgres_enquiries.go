package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

const enquiryTable = "enquiries"

// ListEnquiries returns every enquiry, newest first.
func (s *PostgresStorage) ListEnquiries(ctx context.Context) ([]models.Enquiry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, email, phone, message, status, created_at
		FROM enquiries ORDER BY created_at DESC, seq DESC
	`)
	if err != nil {
		return nil, mapError("list enquiries", err)
	}
	defer rows.Close()

	enquiries := []models.Enquiry{}
	for rows.Next() {
		var e models.Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Message, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		enquiries = append(enquiries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list enquiries", err)
	}
	return enquiries, nil
}

// CreateEnquiry inserts an enquiry with status new.
func (s *PostgresStorage) CreateEnquiry(ctx context.Context, in models.EnquiryInput) (*models.Enquiry, error) {
	e := models.Enquiry{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    models.EnquiryNew,
		CreatedAt: models.Timestamp(),
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO enquiries (id, name, email, phone, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Name, e.Email, e.Phone, e.Message, e.Status, e.CreatedAt)
	if err != nil {
		return nil, mapError("create enquiry", err)
	}
	return &e, nil
}

// UpdateEnquiryStatus sets the status if the move is allowed. The guard in
// the WHERE clause keeps the check and the write atomic; when no row is
// updated a second query tells a missing id from a backwards move.
func (s *PostgresStorage) UpdateEnquiryStatus(ctx context.Context, id string, status models.EnquiryStatus) (*models.Enquiry, error) {
	var e models.Enquiry
	err := s.DB.QueryRowContext(ctx, `
		UPDATE enquiries SET status = $2
		WHERE id = $1 AND (status = $2 OR status = 'new')
		RETURNING id, name, email, phone, message, status, created_at
	`, id, status).Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Message, &e.Status, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM enquiries WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, mapError("update enquiry status", err)
		}
		if exists {
			return nil, fmt.Errorf("enquiry %s: %w", id, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("enquiry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, mapError("update enquiry status", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

// DeleteEnquiry removes an enquiry. Deleting an unknown id is not an error.
func (s *PostgresStorage) DeleteEnquiry(ctx context.Context, id string) error {
	return s.deleteByID(ctx, enquiryTable, id)
}
