package etag

import (
	"fmt"
	"strconv"
	"strings"
)

type ETaggable interface {
	V() string
}

// ETag returns the unquoted entity tag for obj.
func ETag(obj ETaggable) string {
	return "v:" + obj.V()
}

// Header returns the quoted form used in the ETag response header.
func Header(obj ETaggable) string {
	return strconv.Quote(ETag(obj))
}

// ParseETag extracts the version from a tag. Quotes and a weak "W/" prefix
// are accepted.
func ParseETag(etag string) (string, error) {
	const prefix = "v:"
	etag = strings.TrimPrefix(strings.TrimSpace(etag), "W/")
	if unq, err := strconv.Unquote(etag); err == nil {
		etag = unq
	}
	if !strings.HasPrefix(etag, prefix) {
		return "", fmt.Errorf("invalid etag format")
	}
	return strings.TrimPrefix(etag, prefix), nil
}

// NoneMatch reports whether an If-None-Match header value matches obj, in
// which case a GET can be answered with 304.
func NoneMatch(header string, obj ETaggable) bool {
	if header == "" {
		return false
	}
	want := obj.V()
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" {
			return true
		}
		if v, err := ParseETag(part); err == nil && v == want {
			return true
		}
	}
	return false
}
