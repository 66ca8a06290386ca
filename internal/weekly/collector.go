package weekly

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// DefaultMaxConcurrent upstream fetch parallelism per collection pass
const DefaultMaxConcurrent = 4

// Collector fetches every registered user's calendar and reduces it to a
// weekly delta. The snapshot job and the live "this week" read path share
// it, so the committed numbers and the live numbers can never drift on
// boundary or aggregation logic
type Collector struct {
	Users         UserDirectory
	Provider      ActivityProvider
	Logger        *zap.Logger
	MaxConcurrent int
}

// NewCollector .
func NewCollector(users UserDirectory, provider ActivityProvider, logger *zap.Logger, maxConcurrent int) *Collector {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Collector{
		Users:         users,
		Provider:      provider,
		Logger:        logger,
		MaxConcurrent: maxConcurrent,
	}
}

// Collect fetch all users with bounded concurrency and sum each calendar
// against the boundary. A user whose fetch fails is logged and left out;
// the others still make the board. Only the initial registry listing can
// fail the call as a whole
func (c *Collector) Collect(ctx context.Context, boundary WeekStart) ([]UserScore, error) {
	usernames, err := c.Users.ListUsernames(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		scores = make([]UserScore, 0, len(usernames))
	)
	pool := pond.NewPool(c.MaxConcurrent)
	group := pool.NewGroupContext(ctx)
	for _, username := range usernames {
		username := username
		group.Submit(func() {
			cal, err := c.Provider.Fetch(group.Context(), username)
			if err != nil {
				c.Logger.Warn("skipping user, activity fetch failed",
					zap.String("user.name", username),
					zap.Error(err),
				)
				return
			}
			solved := SumSince(cal, boundary)
			mu.Lock()
			scores = append(scores, UserScore{Username: username, Score: solved})
			mu.Unlock()
		})
	}
	group.Wait()
	pool.StopAndWait()

	return scores, nil
}
