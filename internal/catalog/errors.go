package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidID indicates a syntactically malformed model id. It is
	// reported before any store lookup.
	ErrInvalidID = errors.New("invalid model ID format")

	// ErrModelNotFound indicates the target model does not exist. Existence
	// is always checked before ownership.
	ErrModelNotFound = errors.New("model not found")

	// ErrNotOwner indicates an authenticated caller who is not the model's
	// creator attempted a mutation.
	ErrNotOwner = errors.New("caller is not the model creator")

	// ErrNoChanges indicates an update wrote zero modified fields.
	ErrNoChanges = errors.New("no changes made to the model")
)

// ValidationError reports every missing required field at once rather than
// failing on the first.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "required fields missing: " + strings.Join(e.Missing, ", ")
}
