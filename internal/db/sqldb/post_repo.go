package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"Postbridge/internal/core/posts"
)

type sqlPostRepo struct {
	db *sqlx.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sqlx.DB) posts.Repository {
	return &sqlPostRepo{db: db}
}

// GetByID retrieves a post by id
func (r *sqlPostRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	var post posts.Post
	query := r.db.Rebind(`SELECT id, user_id, title, body FROM posts WHERE id = ?`)

	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &post, nil
}

// ListByUserID retrieves every post of a user ordered by id
func (r *sqlPostRepo) ListByUserID(ctx context.Context, userID int64) ([]*posts.Post, error) {
	result := []*posts.Post{}
	query := r.db.Rebind(`SELECT id, user_id, title, body FROM posts WHERE user_id = ? ORDER BY id`)

	if err := r.db.SelectContext(ctx, &result, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list posts by user: %w", err)
	}
	return result, nil
}

// Create inserts a new post and reads back the id assigned on commit
func (r *sqlPostRepo) Create(ctx context.Context, post *posts.Post) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO posts (user_id, title, body)
			VALUES (?, ?, ?)
			RETURNING id`)

		if err := tx.QueryRowxContext(ctx, query, post.UserID, post.Title, post.Body).Scan(&post.ID); err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}
		return nil
	})
}

// Save stores a post fetched from the upstream under its upstream id.
// A racing cache fill that inserted first wins; its row is returned.
func (r *sqlPostRepo) Save(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	var stored posts.Post

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insert := tx.Rebind(`
			INSERT INTO posts (id, user_id, title, body)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`)

		res, err := tx.ExecContext(ctx, insert, post.ID, post.UserID, post.Title, post.Body)
		if err != nil {
			return fmt.Errorf("failed to insert fetched post: %w", err)
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read insert result: %w", err)
		}

		// Explicit ids do not advance a postgres identity sequence. Only ever move it
		// forward: ids already handed out (committed, deleted or in flight) stay used.
		if inserted > 0 && r.db.DriverName() == DriverPostgres {
			advance := tx.Rebind(`
				SELECT setval(s.seq::regclass, GREATEST(?, COALESCE(pg_sequence_last_value(s.seq::regclass), 1)))
				FROM (SELECT pg_get_serial_sequence('posts', 'id') AS seq) s`)
			if _, err := tx.ExecContext(ctx, advance, post.ID); err != nil {
				return fmt.Errorf("failed to advance post id sequence: %w", err)
			}
		}

		query := tx.Rebind(`SELECT id, user_id, title, body FROM posts WHERE id = ?`)
		if err := tx.GetContext(ctx, &stored, query, post.ID); err != nil {
			return fmt.Errorf("failed to read back fetched post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// Update writes the title and body of an existing post
func (r *sqlPostRepo) Update(ctx context.Context, post *posts.Post) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`UPDATE posts SET title = ?, body = ? WHERE id = ?`)

		res, err := tx.ExecContext(ctx, query, post.Title, post.Body, post.ID)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return requireRow(res)
	})
}

// Delete removes a post
func (r *sqlPostRepo) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return requireRow(res)
	})
}

// requireRow maps "no row matched" to posts.ErrNotFound
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return posts.ErrNotFound
	}
	return nil
}
