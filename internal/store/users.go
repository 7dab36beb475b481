package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

// systemUsername is the reserved identity that owns machine-ingested media.
const systemUsername = "system"

// GetUserByID returns a user by surrogate key.
func (db *DB) GetUserByID(id string) (*models.User, error) {
	return db.getUser(`SELECT id, username, display_name, system FROM users WHERE id = ?`, id)
}

// GetUserByUsername returns a user by natural key.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return db.getUser(`SELECT id, username, display_name, system FROM users WHERE username = ?`, username)
}

// SystemUser returns the system identity, creating it on first use.
func (db *DB) SystemUser() (*models.User, error) {
	u, err := db.GetUserByUsername(systemUsername)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	u = &models.User{
		ID:          uuid.NewString(),
		Username:    systemUsername,
		DisplayName: "System",
		System:      true,
	}
	if err := db.CreateUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user.
func (db *DB) CreateUser(u *models.User) error {
	_, err := db.conn.Exec(`INSERT INTO users (id, username, display_name, system) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.System)
	if err != nil {
		return fmt.Errorf("store: insert user: %w", err)
	}
	return nil
}

func (db *DB) getUser(query string, arg any) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRow(query, arg).Scan(&u.ID, &u.Username, &u.DisplayName, &u.System)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &u, nil
}
