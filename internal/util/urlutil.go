package util

import (
	"fmt"
	"net/url"
	"strings"
)

// minMeetingIDLen guards against passing a truncated URL path segment
// (tldv meeting IDs are 24-char object IDs).
const minMeetingIDLen = 10

// ExtractMeetingID pulls the meeting ID out of a tldv meeting URL. The ID is
// the last non-empty path segment. Accepts bare IDs as well.
func ExtractMeetingID(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", fmt.Errorf("empty meeting URL")
	}

	candidate := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		candidate = segs[len(segs)-1]
	} else if idx := strings.LastIndex(raw, "/"); idx != -1 {
		candidate = raw[idx+1:]
	}

	if len(candidate) < minMeetingIDLen {
		return "", fmt.Errorf("could not extract meeting ID from %q", raw)
	}
	return candidate, nil
}

// NormalizeToken ensures the auth token carries the Bearer prefix expected
// by the tldv API.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	lower := strings.ToLower(token)
	if strings.HasPrefix(lower, "bearer ") {
		return token
	}
	return "Bearer " + token
}
