package posts

import "context"

// Service defines the business logic interface for posts
// Coordinates between the local Repository and the Upstream API
type Service interface {
	// GetPost returns a post from the local store, falling back to the upstream on a miss.
	// A post fetched from the upstream is persisted so later reads are served locally.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// GetPosts lists the locally stored posts of a user. No upstream fallback.
	// Returns an empty slice when the user has no posts.
	GetPosts(ctx context.Context, userID int64) ([]*Post, error)

	// CreatePost validates the draft, checks the user exists upstream, then persists it
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)

	// EditPost applies the supplied fields to an existing post
	EditPost(ctx context.Context, id int64, req EditPostRequest) (*Post, error)

	// DeletePost removes a post and returns a confirmation message
	DeletePost(ctx context.Context, id int64) (*InfoMessage, error)
}

// Repository defines the data access interface for posts
// Every write runs in its own transaction
type Repository interface {
	// GetByID returns ErrNotFound if the post is not stored locally
	GetByID(ctx context.Context, id int64) (*Post, error)

	// ListByUserID returns an empty slice (not an error) when nothing matches
	ListByUserID(ctx context.Context, userID int64) ([]*Post, error)

	// Create inserts a post and sets post.ID to the id assigned by the store
	Create(ctx context.Context, post *Post) error

	// Save inserts a post under its existing id (cache fill).
	// If a row with that id already exists it is kept and returned instead.
	Save(ctx context.Context, post *Post) (*Post, error)

	// Update writes title and body. Returns ErrNotFound if no row matched.
	Update(ctx context.Context, post *Post) error

	// Delete removes a post. Returns ErrNotFound if no row matched.
	Delete(ctx context.Context, id int64) error
}

// Upstream is the external REST API used as fallback source
type Upstream interface {
	// FetchPost returns an error wrapping ErrUpstreamUnavailable when the post
	// cannot be obtained, or ErrMalformedPayload when the body is unusable
	FetchPost(ctx context.Context, id int64) (*UpstreamPost, error)

	// UserExists reports whether the upstream knows the user.
	// The error, when present, explains a false result and is only logged.
	UserExists(ctx context.Context, userID int64) (bool, error)
}
