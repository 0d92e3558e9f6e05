package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var idSeparators = regexp.MustCompile(`[\s,;]+`)

// IsValidUUID reports whether s is a canonical hyphenated UUID.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NormalizeUUID lowercases a valid UUID; ok is false for anything else.
func NormalizeUUID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !IsValidUUID(s) {
		return "", false
	}
	return strings.ToLower(s), true
}

// ParseIDList splits free text on whitespace, commas and semicolons and
// keeps the valid UUIDs, lowercased and de-duplicated in input order.
func ParseIDList(raw string) []string {
	return MergeIDs(nil, idSeparators.Split(raw, -1))
}

// MergeIDs appends the valid, not yet seen UUIDs of more to base.
func MergeIDs(base []string, more []string) []string {
	seen := make(map[string]struct{}, len(base)+len(more))
	out := make([]string, 0, len(base)+len(more))
	for _, list := range [][]string{base, more} {
		for _, candidate := range list {
			id, ok := NormalizeUUID(candidate)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
