package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

const postColumns = `id, slug, title, type, status, source_path, category_id,
	author_id, cover_id, body, rendered, excerpt, seo_title, seo_desc,
	seo_keywords, featured, allow_comments, rich_content, date, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var date sql.NullTime
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Type, &p.Status, &p.SourcePath,
		&p.CategoryID, &p.AuthorID, &p.CoverID, &p.Body, &p.Rendered, &p.Excerpt,
		&p.SEOTitle, &p.SEODesc, &p.SEOKeywords, &p.Featured, &p.AllowComments,
		&p.RichContent, &date, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		p.Date = date.Time
	}
	return &p, nil
}

// GetPostByID returns a post by surrogate key.
func (db *DB) GetPostByID(id string) (*models.Post, error) {
	p, err := scanPost(db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get post: %w", err)
	}
	return p, nil
}

// GetPostBySlug returns a post by its natural key.
func (db *DB) GetPostBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get post by slug: %w", err)
	}
	return p, nil
}

// ListExported returns every post with a non-empty source_path, the set
// a sync pass reconciles against the tree.
func (db *DB) ListExported() ([]models.Post, error) {
	rows, err := db.conn.Query(`SELECT ` + postColumns + ` FROM posts WHERE source_path != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: list exported: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ListNeverExported returns posts that have never been written to disk.
func (db *DB) ListNeverExported() ([]models.Post, error) {
	rows, err := db.conn.Query(`SELECT ` + postColumns + ` FROM posts WHERE source_path = ''`)
	if err != nil {
		return nil, fmt.Errorf("store: list never exported: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountNeverExported returns how many posts have never been written to disk.
func (db *DB) CountNeverExported() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT count(*) FROM posts WHERE source_path = ''`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count never exported: %w", err)
	}
	return n, nil
}

// CreatePost inserts a post and its tag set in one transaction.
func (db *DB) CreatePost(p *models.Post, tagIDs []string) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.Title, p.Type, p.Status, p.SourcePath, p.CategoryID,
		p.AuthorID, p.CoverID, p.Body, p.Rendered, p.Excerpt, p.SEOTitle,
		p.SEODesc, p.SEOKeywords, p.Featured, p.AllowComments, p.RichContent,
		nullTime(p.Date), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert post: %w", err)
	}
	if err := replaceTags(tx, p.ID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdatePost rewrites every attribute of an existing post except the slug,
// which is immutable after creation, and replaces its tag set.
func (db *DB) UpdatePost(p *models.Post, tagIDs []string) error {
	p.UpdatedAt = time.Now().UTC()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		UPDATE posts SET title = ?, type = ?, status = ?, source_path = ?,
			category_id = ?, author_id = ?, cover_id = ?, body = ?, rendered = ?,
			excerpt = ?, seo_title = ?, seo_desc = ?, seo_keywords = ?,
			featured = ?, allow_comments = ?, rich_content = ?, date = ?,
			updated_at = ?
		WHERE id = ?`,
		p.Title, p.Type, p.Status, p.SourcePath, p.CategoryID, p.AuthorID,
		p.CoverID, p.Body, p.Rendered, p.Excerpt, p.SEOTitle, p.SEODesc,
		p.SEOKeywords, p.Featured, p.AllowComments, p.RichContent,
		nullTime(p.Date), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("store: update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := replaceTags(tx, p.ID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePost removes a post and its tag links.
func (db *DB) DeletePost(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, id)
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	return tx.Commit()
}

// PostTags returns the tag set of a post.
func (db *DB) PostTags(postID string) ([]models.Tag, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.name, t.slug FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ? ORDER BY t.slug`, postID)
	if err != nil {
		return nil, fmt.Errorf("store: post tags: %w", err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func replaceTags(tx *sql.Tx, postID string, tagIDs []string) error {
	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("store: clear tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare tag insert: %w", err)
	}
	defer stmt.Close()
	for _, id := range tagIDs {
		if _, err := stmt.Exec(postID, id); err != nil {
			return fmt.Errorf("store: insert tag link: %w", err)
		}
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
