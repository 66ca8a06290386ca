package weekly

import (
	"context"
	"errors"
	"fmt"
)

// WinnerEntry one persisted snapshot row
type WinnerEntry struct {
	Username string `json:"username"`
	Rank     int    `json:"rank"`
}

// ErrCommitExhausted replace-commit gave up after the bounded contention
// retries. The run that hit it writes no snapshot; any previously
// committed snapshot for the week stays visible
var ErrCommitExhausted = errors.New("snapshot commit exhausted its retry budget")

// SnapshotStore durable top-N storage keyed by week start
type SnapshotStore interface {
	// Commit atomically replaces every entry stored for the week with the
	// given ones, ranked 1..N by slice position. All-or-nothing: readers
	// never observe a partially applied snapshot
	Commit(ctx context.Context, week WeekStart, entries []WinnerEntry) error
	// Lookup returns the committed entries rank-ascending, or an empty
	// slice when no snapshot exists for the week
	Lookup(ctx context.Context, week WeekStart) ([]WinnerEntry, error)
}

// ActivityProvider per-user activity source. A failed call concerns that
// username alone and never aborts a whole run
type ActivityProvider interface {
	Fetch(ctx context.Context, username string) (Calendar, error)
}

// UserDirectory the slice of the user registry the weekly engine needs
type UserDirectory interface {
	ListUsernames(ctx context.Context) ([]string, error)
	AddSolved(ctx context.Context, username string, delta int) error
}

// FetchError attributes an upstream failure to a single username
type FetchError struct {
	Username string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch activity for %s: %s", e.Username, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
