// Package review implements the stateless reconciliation workflow for
// invalid stats submissions. All pending state lives inside the
// notification message itself (see internal/metadata); every handler
// rebuilds its context from the interaction that woke it, so the process
// can restart at any point between interactions.
package review

import (
	"fmt"
	"slices"
	"strings"

	"mcmetrics/bot/internal/allowlist"
	"mcmetrics/bot/internal/platform"
)

// Submission is the pending reconciliation state recovered from a
// notification message. Unresolved is always a subset of the Stats keys;
// once a name leaves Unresolved it never returns within the same pass.
type Submission struct {
	Stats      map[string]int
	Unresolved []string
	Origin     platform.MessageRef
	GuildID    platform.Snowflake
}

// removeUnresolved drops the given names from the unresolved list.
func (s *Submission) removeUnresolved(names ...string) {
	s.Unresolved = slices.DeleteFunc(s.Unresolved, func(candidate string) bool {
		return slices.Contains(names, candidate)
	})
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if normalized := allowlist.Normalize(name); normalized != "" && !slices.Contains(out, normalized) {
			out = append(out, normalized)
		}
	}
	return out
}

// humanizeList joins names the way the notification prose does:
// "a", "a and b", "a, b and c".
func humanizeList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func bulletList(names []string) string {
	if len(names) == 0 {
		return "None remaining."
	}
	return "- " + strings.Join(names, "\n- ")
}

// chunkStrings splits names into batches of at most size entries.
// Selection menus carry at most 25 options, so longer lists render as
// several menus.
func chunkStrings(names []string, size int) [][]string {
	if size <= 0 || len(names) == 0 {
		return nil
	}
	var out [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		out = append(out, names[start:end])
	}
	return out
}

// submitterFromDescription recovers the submitter's id from the
// notification description, whose second line leads with their mention.
// The description is part of the persisted contract: it is the only
// place the submitter is recorded.
func submitterFromDescription(description string) (platform.Snowflake, error) {
	lines := strings.Split(description, "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("description has no submitter line")
	}
	token, _, _ := strings.Cut(strings.TrimSpace(lines[1]), " ")
	token = strings.TrimSuffix(strings.TrimLeft(token, "<@!"), ">")
	id, err := platform.ParseSnowflake(token)
	if err != nil {
		return 0, fmt.Errorf("parse submitter mention: %w", err)
	}
	return id, nil
}
