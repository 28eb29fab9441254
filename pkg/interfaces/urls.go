package interfaces

import "context"

// URLResolver builds links for named routes. Implementations must be safe for
// concurrent use.
type URLResolver interface {
	Resolve(ctx context.Context, route string, params map[string]string) (string, error)
}
