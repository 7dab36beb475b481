package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

// GetTagBySlug returns a tag by slug.
func (db *DB) GetTagBySlug(slug string) (*models.Tag, error) {
	var t models.Tag
	err := db.conn.QueryRow(`SELECT id, name, slug FROM tags WHERE slug = ?`, slug).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get tag: %w", err)
	}
	return &t, nil
}

// CreateTag inserts a tag. Name and slug must be unique.
func (db *DB) CreateTag(t *models.Tag) error {
	_, err := db.conn.Exec(`INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Slug)
	if err != nil {
		return fmt.Errorf("store: insert tag: %w", err)
	}
	return nil
}
