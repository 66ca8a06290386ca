package http

import (
	"github.com/labstack/echo/v4"
)

func v1Endpoint(
	UserHandler *UserHandler,
	LeaderboardHandler *LeaderboardHandler,
	requestIDMiddleware echo.MiddlewareFunc,
	traceLoggerMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1",
		middlewares: []echo.MiddlewareFunc{requestIDMiddleware, traceLoggerMiddleware},
		groups: []*apiGroup{
			{
				prefix: "/user",
				routes: []*route{
					{"POST", "", UserHandler.HandleAddUser, nil},
				},
			},
			{
				prefix: "/users",
				routes: []*route{
					{"GET", "", UserHandler.HandleFetchUsers, nil},
				},
			},
			{
				prefix: "/leaderboard",
				routes: []*route{
					{"GET", "/week", LeaderboardHandler.HandleSolvesThisWeek, nil},
					{"GET", "/winners", LeaderboardHandler.HandleWeeklyWinners, nil},
				},
			},
		},
	}
}
