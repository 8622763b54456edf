package metadata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		stats      map[string]int
		unresolved []string
	}{
		{name: "empty", stats: map[string]int{}},
		{name: "no unresolved", stats: map[string]int{"firetruck": 3}},
		{
			name:       "mixed",
			stats:      map[string]int{"firetruck": 3, "unknown_x": 7, "ambulance": 0},
			unresolved: []string{"unknown_x"},
		},
		{
			name:       "all unresolved",
			stats:      map[string]int{"a": 1, "b": 2},
			unresolved: []string{"b", "a"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := Encode(tc.stats, tc.unresolved)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			stats, unresolved, err := Decode(token)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if len(stats) != len(tc.stats) {
				t.Fatalf("stats = %v, want %v", stats, tc.stats)
			}
			for name, count := range tc.stats {
				if stats[name] != count {
					t.Errorf("stats[%q] = %d, want %d", name, stats[name], count)
				}
			}
			if len(unresolved) != len(tc.unresolved) {
				t.Fatalf("unresolved = %v, want %v", unresolved, tc.unresolved)
			}
			for i := range tc.unresolved {
				if unresolved[i] != tc.unresolved[i] {
					t.Errorf("unresolved[%d] = %q, want %q", i, unresolved[i], tc.unresolved[i])
				}
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	stats := map[string]int{"z": 1, "a": 2, "m": 3}
	unresolved := []string{"m", "z"}

	first, err := Encode(stats, unresolved)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(stats, unresolved)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if again != first {
			t.Fatalf("Encode is not deterministic: %q vs %q", first, again)
		}
	}
}

// Re-encoding a decoded token must reproduce it byte for byte: the token
// is rewritten on every state change and timeout paths compare it.
func TestDecodeEncodeIdentity(t *testing.T) {
	token, err := Encode(map[string]int{"firetruck": 3, "unknown_x": 7}, []string{"unknown_x"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	stats, unresolved, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	again, err := Encode(stats, unresolved)
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if again != token {
		t.Fatalf("re-encoded token differs:\n%s\n%s", token, again)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	stats := map[string]int{}
	for i := 0; i < 200; i++ {
		stats[fmt.Sprintf("very-long-vehicle-name-%03d", i)] = i
	}
	_, err := Encode(stats, nil)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Encode = %v, want ErrTooLarge", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(map[string]int{"firetruck": 1}, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no payload", token: "https://mcm.invalid/pending.png?v=1"},
		{name: "wrong version", token: strings.Replace(valid, "v=1", "v=2", 1)},
		{name: "bad base64", token: "https://mcm.invalid/pending.png?v=1&d=%%%"},
		{name: "bad json", token: "https://mcm.invalid/pending.png?v=1&d=bm90LWpzb24"},
		{name: "truncated", token: valid[:len(valid)-5]},
		{name: "plain url", token: "https://example.com/cat.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stats, unresolved, err := Decode(tc.token)
			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("Decode(%q) err = %v, want *DecodeError", tc.token, err)
			}
			if stats != nil || unresolved != nil {
				t.Error("Decode returned partial state alongside an error")
			}
		})
	}
}

func TestDecodeRejectsInconsistentPayload(t *testing.T) {
	// unresolved name that is not a stats key
	_, _, err := Decode(mustEncodeRaw(t, `{"stats":{"a":1},"unknown_vehicles":["b"]}`))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}

	// duplicate unresolved entry
	_, _, err = Decode(mustEncodeRaw(t, `{"stats":{"a":1},"unknown_vehicles":["a","a"]}`))
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}

	// negative count
	_, _, err = Decode(mustEncodeRaw(t, `{"stats":{"a":-1}}`))
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func mustEncodeRaw(t *testing.T, body string) string {
	t.Helper()
	return "https://mcm.invalid/pending.png?v=1&d=" + base64.RawURLEncoding.EncodeToString([]byte(body))
}
