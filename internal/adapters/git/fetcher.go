// Package git fetches remote source trees for recipes that name a
// repository instead of a local path.
package git

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceFetcher = (*Fetcher)(nil)

// Fetcher implements ports.SourceFetcher with a shallow git clone.
type Fetcher struct{}

// NewFetcher creates a new Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch checks out the repository at url into dir. The clone is shallow:
// only the tree content matters for hashing and layering, not history.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clone source repository"), "url", url)
	}
	return nil
}
