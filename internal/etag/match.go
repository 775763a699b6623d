package etag

import (
	"net/http"
	"strings"
)

// IfNoneMatch is the client side of a conditional GET.  The zero value is
// "header absent", which never matches.
type IfNoneMatch struct {
	any  bool
	tags []EntityTag
}

// Any returns the wildcard value (If-None-Match: *).
func Any() IfNoneMatch { return IfNoneMatch{any: true} }

// Of returns a list value holding tags.
func Of(tags ...EntityTag) IfNoneMatch {
	return IfNoneMatch{tags: append([]EntityTag(nil), tags...)}
}

// IsAbsent reports whether the client sent nothing usable.
func (m IfNoneMatch) IsAbsent() bool { return !m.any && len(m.tags) == 0 }

// IsAny reports the wildcard.
func (m IfNoneMatch) IsAny() bool { return m.any }

// Tags returns a copy of the listed tags.
func (m IfNoneMatch) Tags() []EntityTag { return append([]EntityTag(nil), m.tags...) }

// WeakEq decides whether a response carrying server may be answered with
// 304 Not Modified.  Strength flags are ignored on both sides.
func (m IfNoneMatch) WeakEq(server EntityTag) bool {
	if m.any {
		return true
	}
	for _, t := range m.tags {
		if t.Tag == server.Tag {
			return true
		}
	}
	return false
}

// String renders the header value; empty when absent.
func (m IfNoneMatch) String() string {
	if m.any {
		return "*"
	}
	parts := make([]string, len(m.tags))
	for i, t := range m.tags {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// FromRequest reads every If-None-Match header line on r.
func FromRequest(r *http.Request) IfNoneMatch {
	return ParseIfNoneMatch(strings.Join(r.Header.Values("If-None-Match"), ","))
}

// ParseIfNoneMatch parses a header value.  Items that are not valid entity
// tags are skipped; a value with no valid items is treated as absent so the
// caller renders a full response.
func ParseIfNoneMatch(v string) IfNoneMatch {
	v = strings.TrimSpace(v)
	if v == "" {
		return IfNoneMatch{}
	}
	if v == "*" {
		return Any()
	}

	var m IfNoneMatch
	for _, item := range splitList(v) {
		if item == "*" {
			return Any()
		}
		t, err := ParseEntityTag(item)
		if err != nil {
			continue
		}
		m.tags = append(m.tags, t)
	}
	return m
}

// splitList splits on commas outside double quotes.  RFC 7232 allows commas
// inside an opaque tag.
func splitList(v string) []string {
	var (
		out   []string
		start int
		quote bool
	)
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '"':
			quote = !quote
		case ',':
			if !quote {
				if s := strings.TrimSpace(v[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(v[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
