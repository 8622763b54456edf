package search

import (
	"sort"
	"strings"
)

// rankLocal orders candidates by lexical similarity to the source name.
// It is the fallback when Meilisearch is unreachable: exact substring and
// shared-prefix matches float to the front, ties break alphabetically.
func rankLocal(source string, candidates []string) []string {
	source = strings.ToLower(strings.TrimSpace(source))
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := localScore(source, ranked[i]), localScore(source, ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

func localScore(source, candidate string) int {
	candidate = strings.ToLower(candidate)
	if source == "" || candidate == "" {
		return 0
	}

	score := 0
	if strings.Contains(candidate, source) || strings.Contains(source, candidate) {
		score += 100
	}
	score += 2 * commonPrefixLen(source, candidate)
	for _, token := range strings.Fields(source) {
		if strings.Contains(candidate, token) {
			score += 10
		}
	}
	return score
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
