package server

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// etagFor returns a weak ETag for a response body.
func etagFor(body []byte) string {
	return fmt.Sprintf("W/\"%016x\"", xxhash.Sum64(body))
}

// parseETag extracts the opaque value from a strong ("v") or weak (W/"v")
// entity tag.
func parseETag(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 2 && header[:2] == "W/" {
		header = header[2:]
	}
	if len(header) >= 2 && header[0] == '"' && header[len(header)-1] == '"' {
		return header[1 : len(header)-1]
	}
	return header
}

// noneMatch reports whether an If-None-Match header lets the request proceed.
// It returns false when any listed tag (or "*") matches current.
func noneMatch(ifNoneMatch, current string) bool {
	if ifNoneMatch == "" {
		return true
	}
	if strings.TrimSpace(ifNoneMatch) == "*" {
		return current == ""
	}
	want := parseETag(current)
	for _, tag := range strings.Split(ifNoneMatch, ",") {
		if parseETag(tag) == want {
			return false
		}
	}
	return true
}
