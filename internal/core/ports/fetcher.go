package ports

import "context"

// SourceFetcher retrieves a remote source tree into a local directory so it
// can be hashed and layered like a local tree.
//
//go:generate go run go.uber.org/mock/mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type SourceFetcher interface {
	// Fetch checks out the repository at url into dir.
	Fetch(ctx context.Context, url, dir string) error
}
