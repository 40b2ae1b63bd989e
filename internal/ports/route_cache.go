package ports

import "context"

// Optional cache in front of a RouteProvider.
type RouteCache interface {
	// Return a cached route and whether it was present.
	Get(ctx context.Context, key string) (RouteResult, bool, error)
	Put(ctx context.Context, key string, result RouteResult) error
}
