package meta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const validBody = `{
	"meeting": {
		"id": "64f1b2c3d4e5f6a7b8c9d0e1",
		"name": "Weekly Sync",
		"createdAt": "2024-03-15T09:30:00.000Z"
	},
	"video": {
		"source": "https://cdn.example.com/playlists/64f1b2c3.m3u8"
	}
}`

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), srv
}

func TestFetchMeetingSuccess(t *testing.T) {
	var gotPath, gotAuth string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validBody))
	})
	defer srv.Close()

	rec, err := c.FetchMeeting(context.Background(), "64f1b2c3d4e5f6a7b8c9d0e1", "tok123")
	if err != nil {
		t.Fatalf("FetchMeeting() error: %v", err)
	}

	if gotPath != "/meetings/64f1b2c3d4e5f6a7b8c9d0e1/watch-page?noTranscript=true" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization header = %q, want Bearer prefix added", gotAuth)
	}
	if rec.Title != "Weekly Sync" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.ManifestURL != "https://cdn.example.com/playlists/64f1b2c3.m3u8" {
		t.Errorf("ManifestURL = %q", rec.ManifestURL)
	}
	want := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	if !rec.RecordedAt.Equal(want) {
		t.Errorf("RecordedAt = %v, want %v", rec.RecordedAt, want)
	}
	if !strings.Contains(string(rec.Raw), `"Weekly Sync"`) {
		t.Errorf("Raw body not preserved: %s", rec.Raw)
	}
}

func TestFetchMeetingStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: KindUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantKind: KindUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantKind: KindNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, wantKind: KindRateLimited},
		{name: "server error", status: http.StatusInternalServerError, wantKind: KindUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			defer srv.Close()

			_, err := c.FetchMeeting(context.Background(), "64f1b2c3d4e5f6a7b8c9d0e1", "tok")
			var me *Error
			if !errors.As(err, &me) {
				t.Fatalf("expected *meta.Error, got %v", err)
			}
			if me.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", me.Kind, tt.wantKind)
			}
			if me.Status != tt.status {
				t.Errorf("Status = %d, want %d", me.Status, tt.status)
			}
		})
	}
}

func TestFetchMeetingMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unparsable JSON", body: "<html>not json</html>"},
		{name: "missing video source", body: `{"meeting":{"name":"Sync"},"video":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			defer srv.Close()

			_, err := c.FetchMeeting(context.Background(), "64f1b2c3d4e5f6a7b8c9d0e1", "tok")
			var me *Error
			if !errors.As(err, &me) {
				t.Fatalf("expected *meta.Error, got %v", err)
			}
			if me.Kind != KindMalformedResponse {
				t.Errorf("Kind = %v, want KindMalformedResponse", me.Kind)
			}
		})
	}
}

func TestFetchMeetingNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	c := NewClient(WithBaseURL(url))
	_, err := c.FetchMeeting(context.Background(), "64f1b2c3d4e5f6a7b8c9d0e1", "tok")
	var me *Error
	if !errors.As(err, &me) {
		t.Fatalf("expected *meta.Error, got %v", err)
	}
	if me.Kind != KindNetwork {
		t.Errorf("Kind = %v, want KindNetwork", me.Kind)
	}
}

func TestFetchMeetingMissingCreatedAt(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meeting":{"name":"Sync"},"video":{"source":"https://cdn.example.com/x.m3u8"}}`))
	})
	defer srv.Close()

	rec, err := c.FetchMeeting(context.Background(), "64f1b2c3d4e5f6a7b8c9d0e1", "tok")
	if err != nil {
		t.Fatalf("FetchMeeting() error: %v", err)
	}
	if !rec.RecordedAt.IsZero() {
		t.Errorf("RecordedAt = %v, want zero time", rec.RecordedAt)
	}
	if rec.ID != "64f1b2c3d4e5f6a7b8c9d0e1" {
		t.Errorf("ID = %q, want requested meeting ID as fallback", rec.ID)
	}
}
