package weekly

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/infrastructure/retry"
)

var errTableBusy = errors.New("weekly_winners is locked")

type winnerRow struct {
	username string
	rank     int
}

// snapshotConn in-memory stand-in for the universal SQL driver, with just
// enough surface for the snapshot store's statements. busyLeft DELETEs
// fail with errTableBusy and dupLeft INSERTs fail with dupErr before the
// table frees up, which simulates the two commit-time collision shapes
type snapshotConn struct {
	mu       sync.Mutex
	rows     map[string][]winnerRow
	busyLeft int
	dupLeft  int
	dupErr   error
	attempts int
}

func newSnapshotConn() *snapshotConn {
	return &snapshotConn{rows: make(map[string][]winnerRow)}
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

func (c *snapshotConn) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return fakeResult{}, nil
}

func (c *snapshotConn) QueryContext(ctx context.Context, query string, args ...interface{}) (driver.ISQLRows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	week := args[0].(string)
	rows := make([]winnerRow, len(c.rows[week]))
	copy(rows, c.rows[week])
	sort.Slice(rows, func(i, j int) bool { return rows[i].rank < rows[j].rank })
	return &winnerRows{rows: rows}, nil
}

func (c *snapshotConn) BeginTx(ctx context.Context, opts *driver.TxOptions) (driver.ITransactionalDB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	staged := make(map[string][]winnerRow, len(c.rows))
	for week, rows := range c.rows {
		staged[week] = append([]winnerRow(nil), rows...)
	}
	return &snapshotTx{conn: c, staged: staged}, nil
}

func (c *snapshotConn) Commit(ctx context.Context) error   { return nil }
func (c *snapshotConn) Rollback(ctx context.Context) error { return nil }
func (c *snapshotConn) Close(ctx context.Context) error    { return nil }
func (c *snapshotConn) Ping() error                        { return nil }

type snapshotTx struct {
	conn   *snapshotConn
	staged map[string][]winnerRow
}

func (tx *snapshotTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tx.conn.mu.Lock()
	defer tx.conn.mu.Unlock()
	switch {
	case strings.HasPrefix(query, "DELETE"):
		tx.conn.attempts++
		if tx.conn.busyLeft > 0 {
			tx.conn.busyLeft--
			return nil, errTableBusy
		}
		delete(tx.staged, args[0].(string))
	case strings.HasPrefix(query, "INSERT"):
		if tx.conn.dupLeft > 0 {
			tx.conn.dupLeft--
			return nil, tx.conn.dupErr
		}
		week := args[0].(string)
		tx.staged[week] = append(tx.staged[week], winnerRow{username: args[1].(string), rank: args[2].(int)})
	}
	return fakeResult{}, nil
}

func (tx *snapshotTx) QueryContext(ctx context.Context, query string, args ...interface{}) (driver.ISQLRows, error) {
	return nil, errors.New("not supported in tx")
}

func (tx *snapshotTx) BeginTx(ctx context.Context, opts *driver.TxOptions) (driver.ITransactionalDB, error) {
	return nil, errors.New("nested tx not supported")
}

func (tx *snapshotTx) Commit(ctx context.Context) error {
	tx.conn.mu.Lock()
	defer tx.conn.mu.Unlock()
	tx.conn.rows = tx.staged
	return nil
}

func (tx *snapshotTx) Rollback(ctx context.Context) error { return nil }
func (tx *snapshotTx) Close(ctx context.Context) error    { return nil }
func (tx *snapshotTx) Ping() error                        { return nil }

type winnerRows struct {
	rows []winnerRow
	idx  int
}

func (r *winnerRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *winnerRows) Scan(dest ...interface{}) error {
	row := r.rows[r.idx-1]
	*dest[0].(*string) = row.username
	*dest[1].(*int) = row.rank
	return nil
}

func (r *winnerRows) Close() error { return nil }

func busyPolicy(attempts int) *retry.Policy {
	return &retry.Policy{
		MaxAttempts: attempts,
		Backoff:     time.Millisecond,
		Classify:    func(err error) bool { return errors.Is(err, errTableBusy) },
	}
}

func week(t *testing.T, key string) WeekStart {
	t.Helper()
	w, err := ParseWeekStart(key)
	require.NoError(t, err)
	return w
}

func TestSnapshotSQL_CommitAndLookup(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")

	err := store.Commit(context.Background(), w, []WinnerEntry{
		{Username: "alice", Rank: 1},
		{Username: "bob", Rank: 2},
		{Username: "carol", Rank: 3},
	})
	require.NoError(t, err)

	got, err := store.Lookup(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []WinnerEntry{
		{Username: "alice", Rank: 1},
		{Username: "bob", Rank: 2},
		{Username: "carol", Rank: 3},
	}, got)
}

func TestSnapshotSQL_CommitReplacesExistingSnapshot(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, w, []WinnerEntry{
		{Username: "x", Rank: 1}, {Username: "y", Rank: 2}, {Username: "z", Rank: 3},
	}))
	require.NoError(t, store.Commit(ctx, w, []WinnerEntry{
		{Username: "p", Rank: 1}, {Username: "q", Rank: 2},
	}))

	got, err := store.Lookup(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, []WinnerEntry{
		{Username: "p", Rank: 1},
		{Username: "q", Rank: 2},
	}, got)
}

func TestSnapshotSQL_CommitTruncatesToMaxEntries(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")

	entries := []WinnerEntry{
		{Username: "a", Rank: 1},
		{Username: "b", Rank: 2},
		{Username: "c", Rank: 3},
		{Username: "d", Rank: 4},
		{Username: "e", Rank: 5},
	}
	require.NoError(t, store.Commit(context.Background(), w, entries))

	got, err := store.Lookup(context.Background(), w)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "c", got[2].Username)
}

func TestSnapshotSQL_CommitRetriesThroughContention(t *testing.T) {
	conn := newSnapshotConn()
	conn.busyLeft = 2
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")

	err := store.Commit(context.Background(), w, []WinnerEntry{{Username: "alice", Rank: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, conn.attempts)

	got, err := store.Lookup(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []WinnerEntry{{Username: "alice", Rank: 1}}, got)
}

func TestSnapshotSQL_CommitRetriesDuplicateKeyCollision(t *testing.T) {
	// two committers replacing the same week can collide on the
	// (week_start, rank) key; the default classifier must treat the
	// unique violation as one more attempt, not a terminal failure
	conn := newSnapshotConn()
	conn.dupLeft = 1
	conn.dupErr = &pgconn.PgError{Code: "23505"}
	store := NewSnapshotStore(conn, 3, nil)
	w := week(t, "2024-01-01")

	err := store.Commit(context.Background(), w, []WinnerEntry{
		{Username: "alice", Rank: 1},
		{Username: "bob", Rank: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, conn.attempts)

	got, err := store.Lookup(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []WinnerEntry{
		{Username: "alice", Rank: 1},
		{Username: "bob", Rank: 2},
	}, got)
}

func TestCommitRetryable(t *testing.T) {
	assert.True(t, CommitRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, CommitRetryable(&pgconn.PgError{Code: "23505"}))
	assert.True(t, CommitRetryable(&mysql.MySQLError{Number: 1062}))
	assert.True(t, CommitRetryable(&mysql.MySQLError{Number: 1213}))
	assert.False(t, CommitRetryable(errors.New("connection refused")))
	assert.False(t, CommitRetryable(nil))
}

func TestSnapshotSQL_CommitExhaustedKeepsOldSnapshot(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, w, []WinnerEntry{{Username: "alice", Rank: 1}}))

	conn.busyLeft = 3
	err := store.Commit(ctx, w, []WinnerEntry{{Username: "mallory", Rank: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommitExhausted)

	got, err := store.Lookup(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, []WinnerEntry{{Username: "alice", Rank: 1}}, got)
}

func TestSnapshotSQL_LookupMissingWeekIsEmptyNotError(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))

	got, err := store.Lookup(context.Background(), week(t, "2019-06-03"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSnapshotSQL_EmptyCommitClearsSnapshot(t *testing.T) {
	conn := newSnapshotConn()
	store := NewSnapshotStore(conn, 3, busyPolicy(3))
	w := week(t, "2024-01-01")
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, w, []WinnerEntry{{Username: "alice", Rank: 1}}))
	require.NoError(t, store.Commit(ctx, w, nil))

	got, err := store.Lookup(ctx, w)
	require.NoError(t, err)
	assert.Empty(t, got)
}
