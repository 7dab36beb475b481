package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

const categoryColumns = `id, slug, type, name, parent_id, sort, icon, hidden, description, cover_id`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Slug, &c.Type, &c.Name, &c.ParentID, &c.Sort,
		&c.Icon, &c.Hidden, &c.Description, &c.CoverID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategory returns a category by its natural key (slug, type).
func (db *DB) GetCategory(slug, contentType string) (*models.Category, error) {
	c, err := scanCategory(db.conn.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ? AND type = ?`,
		slug, contentType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get category: %w", err)
	}
	return c, nil
}

// GetCategoryByID returns a category by surrogate key.
func (db *DB) GetCategoryByID(id string) (*models.Category, error) {
	c, err := scanCategory(db.conn.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get category by id: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category. The (slug, type) pair must be unique.
func (db *DB) CreateCategory(c *models.Category) error {
	_, err := db.conn.Exec(`
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Type, c.Name, c.ParentID, c.Sort, c.Icon, c.Hidden,
		c.Description, c.CoverID)
	if err != nil {
		return fmt.Errorf("store: insert category: %w", err)
	}
	return nil
}

// UpdateCategory rewrites a category's mutable attributes.
func (db *DB) UpdateCategory(c *models.Category) error {
	res, err := db.conn.Exec(`
		UPDATE categories SET name = ?, parent_id = ?, sort = ?, icon = ?,
			hidden = ?, description = ?, cover_id = ?
		WHERE id = ?`,
		c.Name, c.ParentID, c.Sort, c.Icon, c.Hidden, c.Description, c.CoverID, c.ID)
	if err != nil {
		return fmt.Errorf("store: update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListCategories returns every category ordered by type then slug.
func (db *DB) ListCategories() ([]models.Category, error) {
	rows, err := db.conn.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY type, slug`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
