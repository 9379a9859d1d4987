package sqldb

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"Postbridge/internal/core/posts"
	"Postbridge/internal/core/users"
)

var toyUsers = []users.User{
	{Name: "Alice", Email: "alice@example.com", Phone: "123-456-7890"},
	{Name: "Bob", Email: "bob@example.com", Phone: "555-555-5555"},
	{Name: "Charlie", Email: "charlie@example.com", Phone: "999-999-9999"},
}

var toyPosts = []posts.Post{
	{UserID: 1, Title: "My first post", Body: "Hello, world!"},
	{UserID: 2, Title: "My second post", Body: "This is a post."},
	{UserID: 3, Title: "Another post", Body: "This is another post."},
}

// LoadToyData seeds a few users and posts when both tables are empty.
// Returns true if data was inserted.
func LoadToyData(ctx context.Context, db *sqlx.DB) (bool, error) {
	var userCount, postCount int
	if err := db.GetContext(ctx, &userCount, `SELECT COUNT(*) FROM users`); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.GetContext(ctx, &postCount, `SELECT COUNT(*) FROM posts`); err != nil {
		return false, fmt.Errorf("failed to count posts: %w", err)
	}
	if userCount > 0 || postCount > 0 {
		log.Printf("[DB] Database already has data (%d users, %d posts)", userCount, postCount)
		return false, nil
	}

	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		for i := range toyUsers {
			u := toyUsers[i]
			if err := insertUser(ctx, tx, &u); err != nil {
				return err
			}
		}

		query := tx.Rebind(`INSERT INTO posts (user_id, title, body) VALUES (?, ?, ?)`)
		for _, p := range toyPosts {
			if _, err := tx.ExecContext(ctx, query, p.UserID, p.Title, p.Body); err != nil {
				return fmt.Errorf("failed to insert toy post: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to load toy data: %w", err)
	}

	log.Printf("[DB] Loaded %d users and %d posts", len(toyUsers), len(toyPosts))
	return true, nil
}

func insertUser(ctx context.Context, tx *sqlx.Tx, user *users.User) error {
	query := tx.Rebind(`
		INSERT INTO users (name, email, phone)
		VALUES (?, ?, ?)
		RETURNING id`)

	if err := tx.QueryRowxContext(ctx, query, user.Name, user.Email, user.Phone).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to insert toy user: %w", err)
	}
	return nil
}
