// Package id generates identifiers for shelf entries, reviews, and connections.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the entities that get generated IDs.
const (
	PrefixBook   = "book"
	PrefixReview = "rev"
	PrefixClient = "sse"
)

// nanoidLength is the default go-nanoid length.
const nanoidLength = 21

// Generate returns "prefix-<nanoid>", e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// Shelf identity is always one of these, never a catalog ISBN.
func Generate(prefix string) (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + n, nil
}

// MustGenerate is like Generate but panics if the entropy source fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v looks like an ID generated with prefix.
func HasPrefix(v, prefix string) bool {
	rest, ok := strings.CutPrefix(v, prefix+"-")
	return ok && len(rest) == nanoidLength
}
