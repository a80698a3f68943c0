package deps

import (
	"fmt"
	"os"
	"os/exec"
)

// Default binary names for the two downloader backends.
const (
	PrimaryTool  = "N_m3u8DL-RE"
	FallbackTool = "ffmpeg"
)

// FindPrimary returns the path to N_m3u8DL-RE.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindPrimary(customPath string) (string, error) {
	return find(customPath, PrimaryTool)
}

// FindFallback returns the path to ffmpeg.
func FindFallback(customPath string) (string, error) {
	return find(customPath, FallbackTool)
}

func find(customPath, name string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find %s at %q", name, customPath)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find %s in PATH", name)
}
