package users

// User represents a user known to the local store
// Users are read-only here: they are seeded at startup and never created through the API
type User struct {
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
	ID    int64  `json:"id" db:"id"`
}
