package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
)

type postService struct {
	repo      Repository
	upstream  Upstream
	validator Validator
}

// NewPostService creates a new post service
func NewPostService(repo Repository, upstream Upstream, validator Validator) Service {
	if repo == nil {
		panic("posts: repo cannot be nil")
	}
	if upstream == nil {
		panic("posts: upstream cannot be nil")
	}
	return &postService{
		repo:      repo,
		upstream:  upstream,
		validator: validator,
	}
}

// GetPost resolves a post by id
// Flow:
// 1. Validate id
// 2. Local store hit -> return (no network)
// 3. Miss -> fetch from upstream
// 4. Persist the fetched post and return the stored row
func (s *postService) GetPost(ctx context.Context, id int64) (*Post, error) {
	if !IsValidPostID(id) {
		return nil, s.invalidID("GetPost", "id", id)
	}

	post, err := s.repo.GetByID(ctx, id)
	if err == nil {
		log.Printf("[POSTS] Cache hit for post id=%d", id)
		return post, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("[POSTS] GetPost id=%d: store lookup failed: %v", id, err)
		return nil, NewUnknownError("get post", err)
	}

	log.Printf("[POSTS] Cache miss for post id=%d, fetching from upstream", id)
	payload, err := s.upstream.FetchPost(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			log.Printf("[POSTS] GetPost id=%d: %v", id, err)
			return nil, NewUnknownError("get post", err)
		}
		// Not found and unreachable are the same outcome; the cause is only logged
		log.Printf("[POSTS] GetPost id=%d: upstream could not supply post: %v", id, err)
		return nil, NewUpstreamError("post", id, err)
	}

	fetched, err := postFromPayload(id, payload)
	if err != nil {
		log.Printf("[POSTS] GetPost id=%d: %v", id, err)
		return nil, NewUnknownError("get post", err)
	}

	stored, err := s.repo.Save(ctx, fetched)
	if err != nil {
		log.Printf("[POSTS] GetPost id=%d: failed to persist fetched post: %v", id, err)
		return nil, NewUnknownError("get post", err)
	}

	log.Printf("[POSTS] Cached post id=%d from upstream", id)
	return stored, nil
}

// GetPosts lists the local posts of a user. An empty result is not an error.
func (s *postService) GetPosts(ctx context.Context, userID int64) ([]*Post, error) {
	if !IsValidPostID(userID) {
		return nil, s.invalidID("GetPosts", "userId", userID)
	}

	list, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Printf("[POSTS] GetPosts userId=%d: store query failed: %v", userID, err)
		return nil, NewUnknownError("get posts", err)
	}
	if list == nil {
		list = []*Post{}
	}
	return list, nil
}

// CreatePost creates a new post
// Flow: Validate draft -> check user exists upstream -> insert -> return post with assigned id
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := s.validator.ValidateDraft(req); err != nil {
		log.Printf("[POSTS] CreatePost rejected: %v", err)
		return nil, err
	}
	userID := *req.UserID

	exists, err := s.upstream.UserExists(ctx, userID)
	if !exists {
		if err != nil {
			log.Printf("[POSTS] CreatePost userId=%d: upstream user check failed: %v", userID, err)
		} else {
			log.Printf("[POSTS] CreatePost userId=%d: user does not exist upstream", userID)
		}
		return nil, NewUpstreamError("user", userID, err)
	}

	post := &Post{
		UserID: userID,
		Title:  req.Title,
		Body:   req.Body,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		log.Printf("[POSTS] CreatePost userId=%d: insert failed: %v", userID, err)
		return nil, NewUnknownError("create post", err)
	}

	log.Printf("[POSTS] Created post id=%d for userId=%d", post.ID, userID)
	return post, nil
}

// EditPost applies a partial update
func (s *postService) EditPost(ctx context.Context, id int64, req EditPostRequest) (*Post, error) {
	if !IsValidPostID(id) {
		return nil, s.invalidID("EditPost", "id", id)
	}
	if err := s.validator.ValidateEdit(req); err != nil {
		log.Printf("[POSTS] EditPost id=%d rejected: %v", id, err)
		return nil, err
	}

	post, err := s.lookup(ctx, "EditPost", id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
		log.Printf("[POSTS] Post title updated: %d", id)
	}
	if req.Body != nil {
		post.Body = *req.Body
		log.Printf("[POSTS] Post body updated: %d", id)
	}

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted between lookup and update
			return nil, NewNotFoundError("post", id)
		}
		log.Printf("[POSTS] EditPost id=%d: update failed: %v", id, err)
		return nil, NewUnknownError("edit post", err)
	}

	log.Printf("[POSTS] Post updated: %d", id)
	return post, nil
}

// DeletePost removes a post from the local store
func (s *postService) DeletePost(ctx context.Context, id int64) (*InfoMessage, error) {
	if !IsValidPostID(id) {
		return nil, s.invalidID("DeletePost", "id", id)
	}

	if _, err := s.lookup(ctx, "DeletePost", id); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewNotFoundError("post", id)
		}
		log.Printf("[POSTS] DeletePost id=%d: delete failed: %v", id, err)
		return nil, NewUnknownError("delete post", err)
	}

	log.Printf("[POSTS] Post with id=%d deleted", id)
	return &InfoMessage{Message: fmt.Sprintf("Post with id=%d deleted", id)}, nil
}

// lookup fetches a post that must already exist locally
func (s *postService) lookup(ctx context.Context, op string, id int64) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		log.Printf("[POSTS] %s: post with id=%d not found", op, id)
		return nil, NewNotFoundError("post", id)
	}
	if err != nil {
		log.Printf("[POSTS] %s id=%d: store lookup failed: %v", op, id, err)
		return nil, NewUnknownError(op, err)
	}
	return post, nil
}

func (s *postService) invalidID(op, field string, id int64) error {
	err := NewValidationError(field, fmt.Sprintf("Invalid %s=%d, id must be positive integer", field, id))
	log.Printf("[POSTS] %s rejected: %v", op, err)
	return err
}

// postFromPayload converts an upstream payload, rejecting bodies that do not
// describe the requested post
func postFromPayload(id int64, payload *UpstreamPost) (*Post, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	if payload.ID != id {
		return nil, fmt.Errorf("%w: requested id=%d, got id=%d", ErrMalformedPayload, id, payload.ID)
	}
	if !IsValidPostID(payload.UserID) {
		return nil, fmt.Errorf("%w: invalid userId=%d", ErrMalformedPayload, payload.UserID)
	}
	return &Post{
		ID:     payload.ID,
		UserID: payload.UserID,
		Title:  payload.Title,
		Body:   payload.Body,
	}, nil
}
