// Package meta fetches meeting metadata from the tldv watch-page API.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"meetdl/internal/model"
	"meetdl/internal/util"
)

// DefaultBaseURL is the tldv API gateway.
const DefaultBaseURL = "https://gw.tldv.io/v1"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client performs authenticated metadata lookups. It does not retry; retry
// policy (e.g. after a rate limit) belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient constructs a Client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// watchPage mirrors the fields of the watch-page response we care about.
type watchPage struct {
	Meeting struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	} `json:"meeting"`
	Video struct {
		Source string `json:"source"`
	} `json:"video"`
}

// FetchMeeting performs exactly one GET against the watch-page endpoint and
// parses the response into a MeetingRecord. The full raw body is preserved
// on the record for sidecar persistence.
func (c *Client) FetchMeeting(ctx context.Context, meetingID, token string) (model.MeetingRecord, error) {
	u := fmt.Sprintf("%s/meetings/%s/watch-page?noTranscript=true", c.baseURL, meetingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.MeetingRecord{}, &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Authorization", util.NormalizeToken(token))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.MeetingRecord{}, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.MeetingRecord{}, &Error{Kind: KindUnauthorized, Status: resp.StatusCode}
	case http.StatusNotFound:
		return model.MeetingRecord{}, &Error{Kind: KindNotFound, Status: resp.StatusCode}
	case http.StatusTooManyRequests:
		return model.MeetingRecord{}, &Error{Kind: KindRateLimited, Status: resp.StatusCode}
	default:
		return model.MeetingRecord{}, &Error{Kind: KindUnexpectedStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.MeetingRecord{}, &Error{Kind: KindNetwork, Err: err}
	}

	var page watchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return model.MeetingRecord{}, &Error{Kind: KindMalformedResponse, Err: err}
	}
	if page.Video.Source == "" {
		return model.MeetingRecord{}, &Error{
			Kind: KindMalformedResponse,
			Err:  errors.New("video source URL missing from meeting data"),
		}
	}

	rec := model.MeetingRecord{
		ID:          page.Meeting.ID,
		Title:       page.Meeting.Name,
		ManifestURL: page.Video.Source,
		Raw:         json.RawMessage(body),
	}
	if rec.ID == "" {
		rec.ID = meetingID
	}
	// createdAt is best-effort; the caller substitutes the current time when absent.
	if page.Meeting.CreatedAt != "" {
		if ts, perr := time.Parse(time.RFC3339, page.Meeting.CreatedAt); perr == nil {
			rec.RecordedAt = ts
		}
	}
	return rec, nil
}
