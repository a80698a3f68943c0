package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseURLList reads meeting URLs, one per line. Blank lines and lines
// starting with '#' are ignored.
func ParseURLList(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// ReadURLFile parses a batch input file of meeting URLs.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()
	return ParseURLList(f)
}
