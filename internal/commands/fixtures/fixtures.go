package fixtures

import (
	"errors"
	"fmt"
)

// RecordingRegistry captures command handlers passed to RegisterCommand.
type RecordingRegistry struct {
	Handlers []any
	// FailAfter makes RegisterCommand fail once this many handlers were recorded. Zero never fails.
	FailAfter int
}

// ErrRegistryFull is returned once FailAfter handlers were recorded.
var ErrRegistryFull = errors.New("fixtures: registry full")

// NewRecordingRegistry constructs an empty registry recorder.
func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{
		Handlers: make([]any, 0),
	}
}

// RegisterCommand records the handler.
func (r *RecordingRegistry) RegisterCommand(handler any) error {
	if r.FailAfter > 0 && len(r.Handlers) >= r.FailAfter {
		return fmt.Errorf("%w: %T", ErrRegistryFull, handler)
	}
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// TypeNames returns the dynamic type of every recorded handler.
func (r *RecordingRegistry) TypeNames() []string {
	names := make([]string, 0, len(r.Handlers))
	for _, handler := range r.Handlers {
		names = append(names, fmt.Sprintf("%T", handler))
	}
	return names
}
