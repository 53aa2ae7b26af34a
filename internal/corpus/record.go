// Package corpus streams tab-separated parallel-text records and re-encodes
// their tokens as vocabulary IDs.
package corpus

import (
	"errors"
	"strings"
)

// ErrMissingTab is returned for a line that has no tab separator.
var ErrMissingTab = errors.New("missing tab separator")

// Record is one source/target pair. Target holds everything after the first
// tab, further tabs included, without the line terminator.
type Record struct {
	Source string
	Target string
}

// ParseRecord splits line on its first tab.
func ParseRecord(line string) (Record, error) {
	src, tgt, ok := strings.Cut(line, "\t")
	if !ok {
		return Record{}, ErrMissingTab
	}

	return Record{Source: src, Target: trimEOL(tgt)}, nil
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
