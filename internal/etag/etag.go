// internal/etag/etag.go
//
// Entity tags for rendered HTML.
//
// Context
// -------
// Every rendered body gets a content fingerprint so browsers can revalidate
// with If-None-Match and receive 304 Not Modified instead of the full page.
// The fingerprint only has to detect changed output, not resist tampering,
// so we use a 64-bit xxHash rather than a cryptographic digest.
//
// Notes
// -----
//   - Compute returns a strong tag; weak comparison (see match.go) ignores
//     the strength flag anyway.
//   - Tags are uppercase hexadecimal so they read the same in logs and
//     headers.
//   - Oxford commas, two spaces after periods.
package etag

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrMalformed is returned by ParseEntityTag for values that are not a
// quoted entity tag.
var ErrMalformed = errors.New("etag: malformed entity tag")

// EntityTag is an opaque validator plus its comparison strength.
type EntityTag struct {
	Tag  string // opaque payload, without quotes
	Weak bool   // W/ prefix
}

// Compute fingerprints b.  It never fails and is stable across processes.
func Compute(b []byte) EntityTag {
	sum := xxhash.Sum64(b)
	return EntityTag{Tag: strings.ToUpper(strconv.FormatUint(sum, 16))}
}

// ComputeString is Compute for string content without an extra copy in the
// caller.
func ComputeString(s string) EntityTag {
	sum := xxhash.Sum64String(s)
	return EntityTag{Tag: strings.ToUpper(strconv.FormatUint(sum, 16))}
}

// IsZero reports whether t carries no tag.
func (t EntityTag) IsZero() bool { return t.Tag == "" }

// String renders the header form: "TAG" or W/"TAG".
func (t EntityTag) String() string {
	if t.Weak {
		return `W/"` + t.Tag + `"`
	}
	return `"` + t.Tag + `"`
}

// StrongEq is the RFC 7232 strong comparison: both tags strong and equal.
func (t EntityTag) StrongEq(o EntityTag) bool {
	return !t.Weak && !o.Weak && t.Tag == o.Tag
}

// WeakEq compares payloads only.
func (t EntityTag) WeakEq(o EntityTag) bool { return t.Tag == o.Tag }

// ParseEntityTag parses a single header value such as `"abc"` or `W/"abc"`.
func ParseEntityTag(s string) (EntityTag, error) {
	s = strings.TrimSpace(s)
	var t EntityTag
	if strings.HasPrefix(s, "W/") {
		t.Weak = true
		s = s[2:]
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return EntityTag{}, ErrMalformed
	}
	body := s[1 : len(s)-1]
	if strings.ContainsRune(body, '"') {
		return EntityTag{}, ErrMalformed
	}
	t.Tag = body
	return t, nil
}
