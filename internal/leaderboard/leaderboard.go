// Package leaderboard ranks linked players by their live MMR.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/tracker"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSize        = 5
	DefaultConcurrency = 4
)

var (
	// ErrEmptyDirectory means nobody has linked an account yet
	ErrEmptyDirectory = errors.New("no linked accounts")
	// ErrNoData means accounts exist but no lookup succeeded
	ErrNoData = errors.New("no stats available")
)

// Lister supplies the accounts to rank
type Lister interface {
	All() []accounts.LinkedAccount
}

// Fetcher looks up one player's stats
type Fetcher interface {
	Fetch(ctx context.Context, platform accounts.Platform, username string) (*tracker.Snapshot, error)
}

// Entry is one ranked row
type Entry struct {
	OwnerID  string
	Username string
	Platform accounts.Platform
	MMR      float64
	Rank     string
}

type options struct {
	concurrency int
}

// Option tunes TopN
type Option func(*options)

// WithConcurrency caps the number of lookups in flight. n <= 1 fetches sequentially.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// TopN fetches stats for every linked account and returns the best n by MMR,
// highest first. Accounts whose lookup fails are left out. Equal MMRs keep
// directory order.
func TopN(ctx context.Context, dir Lister, f Fetcher, n int, opts ...Option) ([]Entry, error) {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	if n <= 0 {
		n = DefaultSize
	}

	linked := dir.All()
	if len(linked) == 0 {
		return nil, ErrEmptyDirectory
	}

	// Each goroutine owns exactly one slot, so no locking is needed
	results := make([]*Entry, len(linked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for idx, acc := range linked {
		idx, acc := idx, acc
		g.Go(func() error {
			snap, err := f.Fetch(gctx, acc.Platform, acc.Username)
			if err != nil {
				slog.Debug("Leaderboard lookup skipped", "owner", acc.OwnerID, "platform", acc.Platform, "username", acc.Username, "error", err)
				return nil
			}
			results[idx] = &Entry{
				OwnerID:  acc.OwnerID,
				Username: acc.Username,
				Platform: acc.Platform,
				MMR:      snap.MMR,
				Rank:     snap.Rank,
			}
			return nil
		})
	}
	// lookups never return an error, failures are dropped above
	_ = g.Wait()

	ranked := make([]Entry, 0, len(results))
	for _, e := range results {
		if e != nil {
			ranked = append(ranked, *e)
		}
	}
	if len(ranked) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MMR > ranked[j].MMR
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
