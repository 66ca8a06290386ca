package weekly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/infrastructure/retry"
)

// DefaultMaxEntries entries kept per weekly snapshot
const DefaultMaxEntries = 3

// SnapshotSQL SnapshotStore over the universal SQL driver. Rows live in
// weekly_winners with primary key (week_start, rank), so duplicate ranks
// within a week are impossible by construction and the replace-commit
// always writes ranks 1..N with no gaps
type SnapshotSQL struct {
	Conn       driver.ITransactionalDB
	MaxEntries int
	Retry      *retry.Policy
}

var _ SnapshotStore = &SnapshotSQL{}

// CommitRetryable classifies replace-commit failures worth another
// attempt. Besides plain contention, two committers replacing the same
// week can both delete against a snapshot that excludes the other's
// uncommitted inserts and then collide on the (week_start, rank) key;
// the loser's retried DELETE sees the committed rows and wins the week
func CommitRetryable(err error) bool {
	return driver.IsRetryable(err) || driver.IsDuplicate(err)
}

// NewSnapshotStore create a snapshot store with the bounded contention
// retry the commit contract requires
func NewSnapshotStore(conn driver.ITransactionalDB, maxEntries int, policy *retry.Policy) *SnapshotSQL {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	if policy == nil {
		policy = &retry.Policy{MaxAttempts: 3, Classify: CommitRetryable}
	}
	return &SnapshotSQL{Conn: conn, MaxEntries: maxEntries, Retry: policy}
}

// EnsureSchema create the weekly_winners table if missing
func (store *SnapshotSQL) EnsureSchema(ctx context.Context) error {
	_, err := store.Conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS weekly_winners(
	week_start VARCHAR(10) NOT NULL,
	username VARCHAR(64) NOT NULL,
	"rank" INTEGER NOT NULL,
	PRIMARY KEY (week_start, "rank"))`)
	if err != nil {
		return fmt.Errorf("ensure weekly_winners schema: %w", err)
	}
	return nil
}

// Commit implement SnapshotStore. Entries beyond MaxEntries are dropped;
// ranks are assigned by slice position, whatever the input carried
func (store *SnapshotSQL) Commit(ctx context.Context, week WeekStart, entries []WinnerEntry) error {
	if len(entries) > store.MaxEntries {
		entries = entries[:store.MaxEntries]
	}

	err := store.Retry.Do(ctx, func(ctx context.Context) error {
		return store.replace(ctx, week, entries)
	})
	if err == nil {
		return nil
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("commit winners for week %s after %d attempts: %w (last: %s)",
			week.Key(), exhausted.Attempts, ErrCommitExhausted, exhausted.Last)
	}
	return fmt.Errorf("commit winners for week %s: %w", week.Key(), err)
}

// replace single delete+insert transaction, the only serialization point
// of the engine
func (store *SnapshotSQL) replace(ctx context.Context, week WeekStart, entries []WinnerEntry) error {
	tx, err := store.Conn.BeginTx(ctx, &driver.TxOptions{
		Isolation:  sql.LevelRepeatableRead,
		AccessMode: driver.AccessReadWrite,
	})
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_winners WHERE week_start=$1`, week.Key()); err != nil {
		tx.Rollback(ctx)
		return err
	}
	for i, entry := range entries {
		_, err := tx.ExecContext(ctx, `INSERT INTO weekly_winners(week_start, username, "rank")
	VALUES($1,$2,$3)`, week.Key(), entry.Username, i+1)
		if err != nil {
			tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

// Lookup implement SnapshotStore
func (store *SnapshotSQL) Lookup(ctx context.Context, week WeekStart) ([]WinnerEntry, error) {
	rows, err := store.Conn.QueryContext(ctx, `SELECT username, "rank"
	FROM weekly_winners
	WHERE week_start=$1
	ORDER BY "rank" ASC`, week.Key())
	if err != nil {
		return nil, fmt.Errorf("lookup winners for week %s: %w", week.Key(), err)
	}
	defer rows.Close()

	entries := []WinnerEntry{}
	for rows.Next() {
		var entry WinnerEntry
		if err := rows.Scan(&entry.Username, &entry.Rank); err != nil {
			return nil, fmt.Errorf("lookup winners for week %s: %w", week.Key(), err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
