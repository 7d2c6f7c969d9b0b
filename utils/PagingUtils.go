package utils

import (
	"fmt"
	"strconv"
)

// ParseLimit reads a page size query value. Empty means defaultLimit; values outside 1..maxLimit are rejected.
func ParseLimit(raw string, defaultLimit int, maxLimit int) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit is not a number: %w", err)
	}
	if limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return limit, nil
}

// TruncateRunes cuts s to at most max runes.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
