package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidLength = 21

// NewID returns a random URL-safe id for runs, requests and jobs.
func NewID() string {
	id, err := gonanoid.New()
	if err != nil {
		// only fails if the system random source is broken
		panic(err)
	}
	return id
}

// IsNanoid reports whether s has the shape of an id returned by NewID.
func IsNanoid(s string) bool {
	if len(s) != nanoidLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
