package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to a
// local lexical ranking.
type Service struct {
	meili *Meili
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili) *Service {
	return &Service{meili: meili}
}

// RankTargets orders the allowed names as merge-target options for the
// given unrecognized source name. Every allowed name appears exactly once
// in the result.
func (s *Service) RankTargets(guildID, source string, allowed []string) []string {
	if s.meili != nil && s.meili.Healthy() {
		hits, err := s.meili.Search(guildID, source, len(allowed))
		if err == nil {
			return mergeRanked(hits, allowed)
		}
		log.Printf("search: meilisearch error, falling back to local ranking: %v", err)
	}
	return rankLocal(source, allowed)
}

// IndexGuild pushes a guild's allow-list into the index, fire-and-forget.
func (s *Service) IndexGuild(guildID string, names []string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexVehicles(guildID, names); err != nil {
			log.Printf("search: index vehicles for guild %s: %v", guildID, err)
		}
	}()
}

// mergeRanked keeps the hit ordering for names that are actually allowed
// and appends the remainder in their existing order.
func mergeRanked(hits, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = struct{}{}
	}

	out := make([]string, 0, len(allowed))
	seen := make(map[string]struct{}, len(allowed))
	for _, hit := range hits {
		if _, ok := allowedSet[hit]; !ok {
			continue
		}
		if _, dup := seen[hit]; dup {
			continue
		}
		seen[hit] = struct{}{}
		out = append(out, hit)
	}
	for _, name := range allowed {
		if _, dup := seen[name]; dup {
			continue
		}
		out = append(out, name)
	}
	return out
}
