package core

// normalize.go coerces raw CSV cells into story field values.
//
// None of these functions fail. Malformed input degrades to the zero value:
// an empty list, a zero duration, or false.

import (
	"strconv"
	"strings"
)

// Exact cell values that switch a story flag on. No case folding or trimming.
const (
	SentinelCommunity = "Yes"
	SentinelValidated = "On"
	SentinelPopular   = "Y"
)

// SplitList splits a comma-separated cell into trimmed, non-empty tokens.
func SplitList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDuration converts "<minutes>.<seconds>" to seconds.
// Anything else, including "", returns 0, which is indistinguishable from a
// real zero-length duration.
func ParseDuration(raw string) int {
	if raw == "" {
		return 0
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return 0
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}

	return minutes*60 + seconds
}

// ParseFlag reports whether raw is exactly sentinel.
func ParseFlag(raw, sentinel string) bool {
	return raw == sentinel
}
