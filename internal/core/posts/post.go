package posts

// Post represents a post in the local store
// ID is zero until the store assigns one (or it is copied from the upstream on a cache fill)
type Post struct {
	Title  string `json:"title" db:"title"`
	Body   string `json:"body" db:"body"`
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"userId" db:"user_id"`
}

// UpstreamPost is the payload returned by the upstream GET /posts/{id} endpoint
type UpstreamPost struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
}

// CreatePostRequest represents input for creating a new post
// ID is accepted for wire compatibility but never used: the store assigns ids
type CreatePostRequest struct {
	ID     *int64 `json:"id,omitempty"`
	UserID *int64 `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// EditPostRequest represents a partial update. Nil fields are left unchanged.
type EditPostRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// InfoMessage is the confirmation returned by delete
type InfoMessage struct {
	Message string `json:"message"`
}
