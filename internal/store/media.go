package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

const mediaColumns = `id, filename, path, hash, uploaded_by`

func scanMedia(row interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	if err := row.Scan(&m.ID, &m.Filename, &m.Path, &m.Hash, &m.UploadedBy); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMediaByID returns a media reference by id.
func (db *DB) GetMediaByID(id string) (*models.Media, error) {
	return db.getMedia(`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
}

// FindMediaByHash returns the media row matching a content hash, used for
// ingest deduplication.
func (db *DB) FindMediaByHash(hash string) (*models.Media, error) {
	return db.getMedia(`SELECT `+mediaColumns+` FROM media WHERE hash = ?`, hash)
}

// FindMediaByPath returns the media row stored under the given path.
func (db *DB) FindMediaByPath(path string) (*models.Media, error) {
	return db.getMedia(`SELECT `+mediaColumns+` FROM media WHERE path = ?`, path)
}

// SearchMediaByFilename returns the first media row whose filename
// contains the given fragment, the last step of the cover fallback chain.
func (db *DB) SearchMediaByFilename(fragment string) (*models.Media, error) {
	return db.getMedia(
		`SELECT `+mediaColumns+` FROM media WHERE filename LIKE ? ORDER BY filename LIMIT 1`,
		"%"+fragment+"%")
}

// Ingest records media bytes already placed at path, under the given
// identity. The returned id is stable for re-ingested identical content
// only through FindMediaByHash; Ingest itself always inserts.
func (db *DB) Ingest(filename, path, hash, uploadedBy string) (*models.Media, error) {
	m := &models.Media{
		ID:         uuid.NewString(),
		Filename:   filename,
		Path:       path,
		Hash:       hash,
		UploadedBy: uploadedBy,
	}
	_, err := db.conn.Exec(`INSERT INTO media (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Filename, m.Path, m.Hash, m.UploadedBy)
	if err != nil {
		return nil, fmt.Errorf("store: insert media: %w", err)
	}
	return m, nil
}

func (db *DB) getMedia(query string, arg any) (*models.Media, error) {
	m, err := scanMedia(db.conn.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get media: %w", err)
	}
	return m, nil
}
