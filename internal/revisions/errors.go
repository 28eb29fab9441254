package revisions

import (
	"errors"
	"fmt"
)

var (
	ErrContentIDRequired   = errors.New("revisions: content id required")
	ErrContentTypeRequired = errors.New("revisions: content type required")
	ErrLangcodeRequired    = errors.New("revisions: langcode required")
	ErrLabelRequired       = errors.New("revisions: label required")
	ErrItemExists          = errors.New("revisions: content item already exists")
	ErrSourceMissing       = errors.New("revisions: source translation missing")
)

// NotFoundError is returned when the requested record does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
