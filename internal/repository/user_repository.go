package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns it with its assigned ID
func (r *UserRepository) Create(username, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		`INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByID retrieves a user by ID; returns nil when not found
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	return r.scanOne(`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username; returns nil when not found
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.scanOne(`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) scanOne(query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
