package posts

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Default thresholds used when the configuration does not override them
const (
	DefaultMinTitleWords = 2
	DefaultMinBodyLength = 10
)

// IsValidID reports whether raw parses as an integer >= 1.
// Used for path-supplied identifiers before any lookup.
func IsValidID(raw string) bool {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return IsValidPostID(id)
}

// ParseID converts a path-supplied identifier, returning a validation error for
// anything that is not a positive integer
func ParseID(field, raw string) (int64, error) {
	if !IsValidID(raw) {
		return 0, NewValidationError(field, fmt.Sprintf("Invalid %s=%s, id must be positive integer", field, raw))
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id, nil
}

// IsValidPostID reports whether id is a positive integer
func IsValidPostID(id int64) bool {
	return id >= 1
}

// IsValidPostIdentifier accepts nil (not yet assigned) or a positive integer
func IsValidPostIdentifier(id *int64) bool {
	return id == nil || *id > 0
}

// Validator checks post fields against configurable thresholds
type Validator struct {
	MinTitleWords int
	MinBodyLength int
}

// NewValidator creates a validator. Non-positive thresholds fall back to the defaults.
func NewValidator(minTitleWords, minBodyLength int) Validator {
	if minTitleWords <= 0 {
		minTitleWords = DefaultMinTitleWords
	}
	if minBodyLength <= 0 {
		minBodyLength = DefaultMinBodyLength
	}
	return Validator{
		MinTitleWords: minTitleWords,
		MinBodyLength: minBodyLength,
	}
}

// IsValidTitle requires at least one space and MinTitleWords space-separated parts
func (v Validator) IsValidTitle(title string) bool {
	if title == "" || !strings.Contains(title, " ") {
		return false
	}
	return len(strings.Split(title, " ")) >= v.MinTitleWords
}

// IsValidBody counts characters, whitespace included
func (v Validator) IsValidBody(body string) bool {
	return utf8.RuneCountInString(body) >= v.MinBodyLength
}

// ValidateDraft checks a create request field by field and returns the first failure
func (v Validator) ValidateDraft(req CreatePostRequest) error {
	if !IsValidPostIdentifier(req.ID) {
		return NewValidationError("id", "id/userId must be positive integer")
	}
	if req.UserID == nil || !IsValidPostIdentifier(req.UserID) {
		return NewValidationError("userId", "id/userId must be positive integer")
	}
	if !v.IsValidTitle(req.Title) {
		return v.titleError()
	}
	if !v.IsValidBody(req.Body) {
		return v.bodyError()
	}
	return nil
}

// ValidateEdit checks only the fields present in the request
func (v Validator) ValidateEdit(req EditPostRequest) error {
	if req.Title != nil && !v.IsValidTitle(*req.Title) {
		return v.titleError()
	}
	if req.Body != nil && !v.IsValidBody(*req.Body) {
		return v.bodyError()
	}
	return nil
}

func (v Validator) titleError() error {
	return NewValidationError("title", fmt.Sprintf("title must contain at least %d words", v.MinTitleWords))
}

func (v Validator) bodyError() error {
	return NewValidationError("body",
		fmt.Sprintf("body must contain at least %d letters (whitespace characters included)", v.MinBodyLength))
}
