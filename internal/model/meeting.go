package model

import (
	"encoding/json"
	"time"
)

// MeetingRecord holds the metadata for one recorded meeting as returned by
// the tldv watch-page API. Raw preserves the full response body so it can be
// written verbatim to the sidecar file.
type MeetingRecord struct {
	ID          string
	Title       string
	RecordedAt  time.Time
	ManifestURL string
	Raw         json.RawMessage
}
