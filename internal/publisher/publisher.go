package publisher

import "context"

// PostResult carries the platform id of a successfully published post.
type PostResult struct {
	PostID string
}

// Publisher accepts finalized text and posts it somewhere. The caller only
// ever distinguishes success from failure; platform error details stay inside
// the implementation.
type Publisher interface {
	Publish(ctx context.Context, text string) (PostResult, error)
	// Verify checks credentials/connectivity at startup.
	Verify(ctx context.Context) error
}
