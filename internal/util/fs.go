package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxNameLen bounds sanitized filename length (in runes).
const DefaultMaxNameLen = 100

// SanitizeFilename cleans a string to be safe as a filename on common
// filesystems:
// - Replace forbidden characters (< > : " / \ | ? *) with underscores
// - Collapse whitespace runs to single underscores
// - Collapse runs of underscores and trim leading/trailing separators
// - Truncate to maxLen runes without splitting a multi-byte character
// It never returns an empty string; maxLen <= 0 uses DefaultMaxNameLen.
func SanitizeFilename(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLen
	}
	s = strings.Join(strings.Fields(s), "_")
	const forbidden = `<>:"/\|?*`
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) || r < 0x20 {
			return '_'
		}
		return r
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "._- ")

	if utf8.RuneCountInString(s) > maxLen {
		var b strings.Builder
		b.Grow(len(s))
		n := 0
		for _, r := range s {
			if n >= maxLen {
				break
			}
			b.WriteRune(r)
			n++
		}
		s = strings.Trim(b.String(), "._- ")
	}

	if s == "" {
		return "meeting"
	}
	return s
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// WriteSidecarFile writes a .json with the same basename as the given
// media path and returns the path written.
func WriteSidecarFile(mediaPath string, raw []byte) (string, error) {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	sidecarPath := base + ".json"
	if err := os.WriteFile(sidecarPath, raw, 0o644); err != nil {
		return "", err
	}
	return sidecarPath, nil
}
