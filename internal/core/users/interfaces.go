package users

import "context"

// UserRepository defines the interface for user data persistence.
// Users are only written by the startup seed.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UserService defines the interface for user business logic
type UserService interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}
