package publisher

import (
	"context"
	"errors"
)

// Noop stands in for a real publisher in dry-run mode, where Publish must
// never be reached.
type Noop struct{}

func (Noop) Publish(ctx context.Context, text string) (PostResult, error) {
	return PostResult{}, errors.New("noop publisher cannot publish")
}

func (Noop) Verify(ctx context.Context) error { return nil }
