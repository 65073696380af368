// Package leaderboard aggregates the community backend's paginated leaderboard
// endpoint into one flat entry list.
package leaderboard

import (
	"context"

	"arena_companion/internal/models"
	"arena_companion/internal/pkg/logger"
)

// PageBackend is the subset of the community stats client that serves
// leaderboard pages.
type PageBackend interface {
	LeaderboardPage(ctx context.Context, board string, startOffset int) (models.LeaderboardPage, error)
}

// Aggregator pages through a leaderboard until all entries are retrieved.
type Aggregator struct {
	backend PageBackend
	log     *logger.Logger
}

// NewAggregator creates a leaderboard aggregator.
func NewAggregator(backend PageBackend, l *logger.Logger) *Aggregator {
	return &Aggregator{backend: backend, log: l}
}

// All fetches every entry of the named leaderboard. Pagination is strictly
// sequential: the next page is requested only after the previous page's total
// and end offset are known. The next start offset is always the previous
// page's inclusive end offset plus one, and the loop terminates once the
// accumulated entry count reaches the backend's reported total. An empty
// first page terminates immediately with zero entries.
func (a *Aggregator) All(ctx context.Context, board string) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0)
	offset := 0

	for {
		page, err := a.backend.LeaderboardPage(ctx, board, offset)
		if err != nil {
			return nil, err
		}
		if len(page.Entries) == 0 {
			// Zero total, or a misbehaving backend returning short pages;
			// either way there is nothing further to fetch.
			return entries, nil
		}

		entries = append(entries, page.Entries...)
		if len(entries) >= page.Total {
			return entries, nil
		}
		offset = page.EndOffset + 1
	}
}
