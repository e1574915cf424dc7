// internal/cache/key.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key derives a deterministic cache key from an operation name and its
// arguments. Arguments are canonicalized (keys sorted, unserializable values
// rendered as strings) before hashing, so the same logical call always maps
// to the same key regardless of map iteration order or argument types.
func Key(operation string, args map[string]interface{}) string {
	canonical := struct {
		Operation string                 `json:"operation"`
		Args      map[string]interface{} `json:"args"`
	}{
		Operation: operation,
		Args:      canonicalize(args),
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		// Marshal of the canonical form cannot fail after sanitization,
		// but hash something stable rather than panic.
		data = []byte(fmt.Sprintf("%s:%v", operation, args))
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalize replaces values the JSON encoder cannot represent with their
// string rendering. encoding/json already emits object keys in sorted order,
// which gives the stable byte stream the hash needs.
func canonicalize(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out[k] = canonicalValue(args[k])
	}
	return out
}

func canonicalValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return canonicalize(val)
	case []interface{}:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = canonicalValue(item)
		}
		return items
	default:
		if _, err := json.Marshal(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return v
	}
}
