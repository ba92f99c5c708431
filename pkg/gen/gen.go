// Package gen generates deterministic identifiers.
package gen

import (
	"strings"

	"github.com/google/uuid"
)

const sep = "|"

// Key joins the given parts into a stable composite key.
func Key(parts ...string) string {
	return strings.Join(parts, sep)
}

// UUIDv5 derives a deterministic UUID from the given parts, so the same
// URL, format and quality always map to the same request identifier.
func UUIDv5(parts ...string) string {
	key := Key(parts...)

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
