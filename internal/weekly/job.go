package weekly

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/codeclimbers/leetboard/internal/infrastructure/uuid"
	"go.uber.org/zap"
)

// RunState snapshot job lifecycle
type RunState int32

const (
	StateIdle RunState = iota
	StateRunning
	StateCommitted
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// SnapshotJob closes a week: collects every user's weekly delta, folds the
// deltas into the cumulative counters, dense-ranks, truncates to TopN and
// replace-commits the result. Idempotent per week: re-running simply
// overwrites through the store's replace semantics
type SnapshotJob struct {
	Collector *Collector
	Users     UserDirectory
	Store     SnapshotStore
	TopN      int
	Logger    *zap.Logger
	RunIDs    uuid.Generator

	// now is swappable for tests, defaults to time.Now
	now     func() time.Time
	running atomic.Bool
	state   atomic.Int32
}

// NewSnapshotJob .
func NewSnapshotJob(collector *Collector, users UserDirectory, store SnapshotStore,
	topN int, runIDs uuid.Generator, logger *zap.Logger) *SnapshotJob {
	if topN < 1 {
		topN = DefaultMaxEntries
	}
	return &SnapshotJob{
		Collector: collector,
		Users:     users,
		Store:     store,
		TopN:      topN,
		Logger:    logger,
		RunIDs:    runIDs,
		now:       time.Now,
	}
}

// State current lifecycle state
func (j *SnapshotJob) State() RunState {
	return RunState(j.state.Load())
}

// Run execute one snapshot pass. A trigger that lands while a run is
// still executing is skipped, not queued. Per-user failures shrink the
// board; only the registry listing and the final commit are run-fatal
func (j *SnapshotJob) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		j.Logger.Warn("snapshot run still in progress, skipping trigger")
		return nil
	}
	defer j.running.Store(false)

	logger := j.Logger
	if j.RunIDs != nil {
		if runID, err := j.RunIDs.Generate(); err == nil {
			logger = logger.With(zap.String("run.id", runID))
		}
	}

	now := j.now()
	// deltas are measured against the same boundary the live standings
	// use; the snapshot is keyed to the week that just closed, which is
	// what a reader asking for "last week" on this very Monday resolves to
	boundary := WeekStartAt(now, 0)
	closing := WeekStartAt(now, -1)

	j.state.Store(int32(StateRunning))
	logger.Info("snapshot run started",
		zap.String("week.boundary", boundary.Key()),
		zap.String("week.closing", closing.Key()),
	)

	scores, err := j.Collector.Collect(ctx, boundary)
	if err != nil {
		j.state.Store(int32(StateFailed))
		return fmt.Errorf("list registered users: %w", err)
	}

	// single writer of solved_count; a user whose counter update fails is
	// excluded the same way a failed fetch is
	applied := make([]UserScore, 0, len(scores))
	for _, score := range scores {
		if err := j.Users.AddSolved(ctx, score.Username, score.Score); err != nil {
			logger.Warn("skipping user, cumulative counter update failed",
				zap.String("user.name", score.Username),
				zap.Error(err),
			)
			continue
		}
		applied = append(applied, score)
	}

	ranked := DenseRank(applied)
	if len(ranked) > j.TopN {
		ranked = ranked[:j.TopN]
	}
	entries := make([]WinnerEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, WinnerEntry{Username: r.Username, Rank: r.Position})
	}

	if err := j.Store.Commit(ctx, closing, entries); err != nil {
		j.state.Store(int32(StateFailed))
		return err
	}

	j.state.Store(int32(StateCommitted))
	logger.Info("snapshot committed",
		zap.String("week.closing", closing.Key()),
		zap.Int("winners", len(entries)),
	)
	return nil
}
