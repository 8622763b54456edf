// Package metadata serializes pending submission state into a URL-shaped
// token. The token is stored verbatim by the platform as the notification
// embed's image URL and is the sole durability mechanism for a pending
// resolution: there is no database row to recover from after a restart.
package metadata

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

const (
	// baseURL is an intentionally unroutable host; the platform caches
	// the string, it never needs to resolve.
	baseURL = "https://mcm.invalid/pending.png"

	version = "1"

	// MaxTokenLen is the platform cap on embed image URLs.
	MaxTokenLen = 2048
)

// ErrTooLarge means the encoded token would exceed MaxTokenLen. The
// caller must fail the action rather than truncate.
var ErrTooLarge = errors.New("metadata: encoded token exceeds the platform length cap")

// DecodeError means a token is malformed or inconsistent. Decoding never
// returns partial state alongside one.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "metadata: " + e.Reason
}

func decodeError(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

type payload struct {
	Stats      map[string]int `json:"stats"`
	Unresolved []string       `json:"unknown_vehicles,omitempty"`
}

// Encode serializes the stats mapping and the unresolved item list into a
// token. Output is deterministic for a given input: JSON object keys are
// emitted sorted and the unresolved order is preserved.
func Encode(stats map[string]int, unresolved []string) (string, error) {
	if stats == nil {
		stats = map[string]int{}
	}
	body, err := json.Marshal(payload{Stats: stats, Unresolved: unresolved})
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	token := baseURL + "?v=" + version + "&d=" + base64.RawURLEncoding.EncodeToString(body)
	if len(token) > MaxTokenLen {
		return "", ErrTooLarge
	}
	return token, nil
}

// Decode reverses Encode. It fails with *DecodeError on anything Encode
// could not have produced, including tokens whose unresolved list is not
// a subset of the stats keys.
func Decode(token string) (map[string]int, []string, error) {
	parsed, err := url.Parse(token)
	if err != nil {
		return nil, nil, decodeError("invalid token: %v", err)
	}
	query := parsed.Query()
	if got := query.Get("v"); got != version {
		return nil, nil, decodeError("unsupported metadata version %q", got)
	}
	raw := query.Get("d")
	if raw == "" {
		return nil, nil, decodeError("token carries no payload")
	}

	body, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, nil, decodeError("payload is not valid base64: %v", err)
	}
	var data payload
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, nil, decodeError("payload is not valid JSON: %v", err)
	}
	if data.Stats == nil {
		return nil, nil, decodeError("payload has no stats mapping")
	}
	for name, count := range data.Stats {
		if count < 0 {
			return nil, nil, decodeError("negative count for %q", name)
		}
	}
	seen := make(map[string]struct{}, len(data.Unresolved))
	for _, name := range data.Unresolved {
		if _, ok := data.Stats[name]; !ok {
			return nil, nil, decodeError("unresolved item %q missing from stats", name)
		}
		if _, dup := seen[name]; dup {
			return nil, nil, decodeError("unresolved item %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return data.Stats, data.Unresolved, nil
}
