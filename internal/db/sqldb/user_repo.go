package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Postbridge/internal/core/users"
)

type sqlUserRepo struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) users.UserRepository {
	return &sqlUserRepo{db: db}
}

// GetByID retrieves a user by id
func (r *sqlUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	var user users.User
	query := r.db.Rebind(`SELECT id, name, email, phone FROM users WHERE id = ?`)

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}
