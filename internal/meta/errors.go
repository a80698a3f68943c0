package meta

import "fmt"

// Kind classifies a metadata-fetch failure so callers can branch without
// string matching.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindNotFound
	KindRateLimited // caller may back off and resubmit the job
	KindNetwork
	KindMalformedResponse
	KindUnexpectedStatus
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindRateLimited:
		return "rate limited"
	case KindNetwork:
		return "network error"
	case KindMalformedResponse:
		return "malformed response"
	case KindUnexpectedStatus:
		return "unexpected status"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by Client.FetchMeeting.
type Error struct {
	Kind   Kind
	Status int // HTTP status when applicable, 0 otherwise
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
