package store

import (
	"fmt"
	"time"
)

// Index values are ordered byte strings. Components are joined with keySep so
// that a prefix scan on "a" never matches "ab".
const keySep = "\x00"

// rangeEnd is appended to a query to form the exclusive upper bound of a
// "starts with" scan: every value beginning with q sorts below q+rangeEnd.
const rangeEnd = "\uf8ff"

func indexPrefix(prefix, index string) string {
	return prefix + "idx:" + index + ":"
}

// timeKey renders t so that lexical order equals chronological order.
func timeKey(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

func joinKey(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, keySep...)
		}
		buf = append(buf, p...)
	}
	return string(buf)
}
