// Package id generates opaque URL-safe identifiers: UUIDv4 bytes encoded as
// base32 (RFC 4648) with no padding, lowercased. The result is 26 characters
// and safe for use in URLs and file paths.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a fresh identifier.
func New() string {
	u := uuid.New()
	return strings.ToLower(encoding.EncodeToString(u[:]))
}
