package users

import (
	"context"
	"errors"
	"fmt"
	"log"
)

type userService struct {
	userRepo UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetUser retrieves a locally stored user by id
func (s *userService) GetUser(ctx context.Context, id int64) (*User, error) {
	if id < 1 {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		log.Printf("[USERS] GetUser id=%d: store lookup failed: %v", id, err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
