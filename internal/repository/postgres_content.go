package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

// GetSiteContent fetches the content block stored under key. It returns
// (nil, nil) when the key is unknown.
func (s *PostgresStorage) GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error) {
	var (
		c   models.SiteContent
		raw []byte
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, key, content FROM site_content WHERE key = $1`, key,
	).Scan(&c.ID, &c.Key, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get site content", err)
	}
	c.Content = raw
	return &c, nil
}

// CreateSiteContent inserts a new key. An existing key yields ErrConflict.
//
// Content is bound as text: lib/pq sends []byte as bytea, which a jsonb
// column rejects. The stored form is returned, since jsonb normalizes key
// order and whitespace.
func (s *PostgresStorage) CreateSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error) {
	var (
		c   models.SiteContent
		raw []byte
	)
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO site_content (id, key, content) VALUES ($1, $2, $3) RETURNING id, key, content`,
		uuid.NewString(), key, string(content),
	).Scan(&c.ID, &c.Key, &raw)
	if err != nil {
		return nil, mapError("create site content", err)
	}
	c.Content = raw
	return &c, nil
}

// UpsertSiteContent creates key or replaces its content. The id of an
// existing row is kept.
func (s *PostgresStorage) UpsertSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error) {
	var (
		c   models.SiteContent
		raw []byte
	)
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO site_content (id, key, content) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET content = EXCLUDED.content
		RETURNING id, key, content
	`, uuid.NewString(), key, string(content)).Scan(&c.ID, &c.Key, &raw)
	if err != nil {
		return nil, mapError("upsert site content", err)
	}
	c.Content = raw
	return &c, nil
}
