// Package checksum provides the content and metadata hashes attached to
// scanned documents. Both are diagnostic: sync decisions come from git
// file status, never from hash comparison. The metadata hash is also used
// by the writer to detect idempotent rewrites.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// MetaSum returns the digest of a canonicalized (key-sorted) serialization
// of the metadata map, so two headers with the same keys and values hash
// identically regardless of key order in the file.
func MetaSum(meta map[string]any) string {
	if len(meta) == 0 {
		return Sum(nil)
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v\n", k, canonical(meta[k]))
	}
	return Sum([]byte(b.String()))
}

// canonical renders nested values deterministically. Maps are key-sorted;
// slices keep their order.
func canonical(v any) string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + canonical(t[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = canonical(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
