package store

import "time"

// MemberStats is a guild member's current running totals, one count per
// vehicle name.
type MemberStats struct {
	GuildID   string
	UserID    string
	Stats     map[string]int
	UpdatedAt time.Time
}

// ResolutionEntry records one completed resolution action for audit.
type ResolutionEntry struct {
	ID          string
	GuildID     string
	ActorID     string
	SubmitterID string
	Action      string
	Items       []string
	CreatedAt   time.Time
}
