// Package leetcode adapts the public LeetCode stats API to the board's
// provider interfaces
package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/codeclimbers/leetboard/internal/user"
	"github.com/codeclimbers/leetboard/internal/weekly"
)

// the upstream reports a missing profile inside a 200 body
const unknownUserMessage = "That user does not exist."

// Client fetches per-user submission calendars. One GET per user, no
// auth, the response carries the whole profile of which only
// submissionCalendar matters here
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ weekly.ActivityProvider = &Client{}
var _ user.ProfileChecker = &Client{}

// NewClient .
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type profileResponse struct {
	SubmissionCalendar map[string]int `json:"submissionCalendar"`
	Errors             []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) getProfile(ctx context.Context, username string) (*profileResponse, error) {
	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", res.StatusCode)
	}

	profile := new(profileResponse)
	if err := json.NewDecoder(res.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	return profile, nil
}

func (p *profileResponse) unknownUser() bool {
	for _, e := range p.Errors {
		if e.Message == unknownUserMessage {
			return true
		}
	}
	return false
}

// Fetch implement weekly.ActivityProvider. Every failure is wrapped with
// the username so callers can attribute and isolate it
func (c *Client) Fetch(ctx context.Context, username string) (weekly.Calendar, error) {
	profile, err := c.getProfile(ctx, username)
	if err != nil {
		return nil, &weekly.FetchError{Username: username, Err: err}
	}
	if profile.unknownUser() {
		return nil, &weekly.FetchError{Username: username, Err: user.ErrUnknownProfile}
	}
	return weekly.Calendar(profile.SubmissionCalendar), nil
}

// CheckProfile implement user.ProfileChecker for registration validation
func (c *Client) CheckProfile(ctx context.Context, username string) error {
	profile, err := c.getProfile(ctx, username)
	if err != nil {
		return fmt.Errorf("check profile %s: %w", username, err)
	}
	if profile.unknownUser() {
		return user.ErrUnknownProfile
	}
	return nil
}
