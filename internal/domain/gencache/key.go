package gencache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// LongStringThreshold is the byte length above which string parameters are
// replaced by their digest before being folded into a key.
const LongStringThreshold = 256

const digestPrefix = "sha256:"

// Key derives the cache key for namespace and params. The result only depends
// on the values in params: map key order, struct vs map representation of the
// same fields and the identity of long strings do not matter.
func Key(namespace string, params any) (string, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return "", errors.New("cache namespace cannot be empty")
	}
	canonical, err := canonicalize(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// Digest shortens s to a fixed-length stable token.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return digestPrefix + hex.EncodeToString(sum[:16])
}

func canonicalize(params any) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	// encoding/json writes map keys in sorted order.
	return json.Marshal(shortenStrings(generic))
}

func shortenStrings(v any) any {
	switch typed := v.(type) {
	case string:
		if len(typed) > LongStringThreshold {
			return Digest(typed)
		}
		return typed
	case []any:
		for i := range typed {
			typed[i] = shortenStrings(typed[i])
		}
		return typed
	case map[string]any:
		for k, item := range typed {
			typed[k] = shortenStrings(item)
		}
		return typed
	default:
		return v
	}
}
