package http

import (
	"net/http"
	"time"

	"github.com/codeclimbers/leetboard/internal/weekly"
	"github.com/labstack/echo/v4"
)

// LeaderboardHandler live weekly standings and committed snapshots
type LeaderboardHandler struct {
	Collector *weekly.Collector
	Store     weekly.SnapshotStore

	now func() time.Time
}

// NewLeaderboardHandler .
func NewLeaderboardHandler(Collector *weekly.Collector, Store weekly.SnapshotStore) *LeaderboardHandler {
	return &LeaderboardHandler{
		Collector: Collector,
		Store:     Store,
		now:       time.Now,
	}
}

type solvesThisWeekRow struct {
	Username       string `json:"username"`
	SolvesThisWeek int    `json:"solvesThisWeek"`
	Position       int    `json:"position"`
}

// HandleSolvesThisWeek live "this week so far" board: recomputed on every
// request from upstream calendars, dense-ranked, never persisted
func (lh *LeaderboardHandler) HandleSolvesThisWeek(c echo.Context) error {
	ctx := c.Request().Context()
	boundary := weekly.WeekStartAt(lh.now(), 0)

	scores, err := lh.Collector.Collect(ctx, boundary)
	if err != nil {
		return err
	}

	ranked := weekly.DenseRank(scores)
	rows := make([]solvesThisWeekRow, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, solvesThisWeekRow{Username: r.Username, SolvesThisWeek: r.Score, Position: r.Position})
	}
	return c.JSON(http.StatusOK, rows)
}

// HandleWeeklyWinners committed snapshot for a week. Without an explicit
// weekStart the week before the query instant is served, which on the
// Monday the snapshot job fires is exactly the week it just closed
func (lh *LeaderboardHandler) HandleWeeklyWinners(c echo.Context) error {
	var week weekly.WeekStart
	if param := c.QueryParam("weekStart"); param != "" {
		parsed, err := weekly.ParseWeekStart(param)
		if err != nil {
			return c.JSON(http.StatusBadRequest,
				NewRESTStandardError(http.StatusBadRequest, "weekStart must be a YYYY-MM-DD date"))
		}
		week = parsed
	} else {
		week = weekly.WeekStartAt(lh.now(), -1)
	}

	winners, err := lh.Store.Lookup(c.Request().Context(), week)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, winners)
}
