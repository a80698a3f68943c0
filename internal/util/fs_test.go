package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{
			name:   "forbidden characters replaced",
			in:     `Weekly Sync: Q3/Q4 Review???`,
			maxLen: 100,
			want:   "Weekly_Sync_Q3_Q4_Review",
		},
		{
			name:   "whitespace collapsed",
			in:     "Team   standup \t notes",
			maxLen: 100,
			want:   "Team_standup_notes",
		},
		{
			name:   "empty input falls back",
			in:     "",
			maxLen: 100,
			want:   "meeting",
		},
		{
			name:   "only forbidden characters falls back",
			in:     `<>:"/\|?*`,
			maxLen: 100,
			want:   "meeting",
		},
		{
			name:   "leading and trailing separators trimmed",
			in:     "__meeting notes__",
			maxLen: 100,
			want:   "meeting_notes",
		},
		{
			name:   "zero maxLen uses default",
			in:     "standup",
			maxLen: 0,
			want:   "standup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in, tt.maxLen)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameNeverContainsForbidden(t *testing.T) {
	inputs := []string{
		`a<b>c:d"e/f\g|h?i*j`,
		"Planning 2024/2025 | part 1",
		"???",
		"tab\tand\nnewline",
	}
	for _, in := range inputs {
		got := SanitizeFilename(in, 100)
		if got == "" {
			t.Errorf("SanitizeFilename(%q) returned empty string", in)
		}
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeFilename(%q) = %q still contains forbidden characters", in, got)
		}
	}
}

func TestSanitizeFilenameTruncation(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeFilename(long, 100)
	if utf8.RuneCountInString(got) != 100 {
		t.Errorf("expected 100 runes, got %d", utf8.RuneCountInString(got))
	}

	// Multi-byte input must not be split mid-rune.
	multibyte := strings.Repeat("日本語会議", 50)
	got = SanitizeFilename(multibyte, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncated output is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) > 10 {
		t.Errorf("expected at most 10 runes, got %d", utf8.RuneCountInString(got))
	}
}

func TestWriteSidecarFile(t *testing.T) {
	dir := t.TempDir()
	mediaPath := dir + "/2024-01-02_10-00-00_standup.mp4"
	path, err := WriteSidecarFile(mediaPath, []byte(`{"meeting":{}}`))
	if err != nil {
		t.Fatalf("WriteSidecarFile() error: %v", err)
	}
	want := dir + "/2024-01-02_10-00-00_standup.json"
	if path != want {
		t.Errorf("sidecar path = %q, want %q", path, want)
	}
}
