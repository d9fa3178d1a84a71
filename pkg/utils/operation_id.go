package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateOperationID creates a short, human-readable operation ID.
// Format: {operation}-{agent}-{8charHexUUID}
//
// Example:
//   - Input: operation="excavate", agent="Digger 1"
//   - Output: "excavate-digger-1-a3f8e2b1"
func GenerateOperationID(operation, agent string) string {
	parts := []string{operation}
	if slug := slugify(agent); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, generateShortUUID())
	return strings.Join(parts, "-")
}

// slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen
func slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
