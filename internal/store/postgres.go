package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// ReadStats returns a member's running totals. A member with no row yet
// has empty stats, not an error.
func (s *PostgresStore) ReadStats(ctx context.Context, guildID, userID string) (map[string]int, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT stats FROM member_stats WHERE guild_id=$1 AND user_id=$2`,
		guildID, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read member stats: %w", err)
	}

	var stats map[string]int
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal member stats: %w", err)
	}
	return stats, nil
}

// WriteStats replaces a member's running totals.
func (s *PostgresStore) WriteStats(ctx context.Context, guildID, userID string, stats map[string]int) error {
	if stats == nil {
		stats = map[string]int{}
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal member stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO member_stats (guild_id, user_id, stats, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET stats = EXCLUDED.stats, updated_at = NOW()
	`, guildID, userID, raw)
	if err != nil {
		return fmt.Errorf("write member stats: %w", err)
	}
	return nil
}

// InsertResolution appends an audit log entry. Missing ids and timestamps
// are filled in.
func (s *PostgresStore) InsertResolution(ctx context.Context, entry ResolutionEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	items := entry.Items
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal resolution items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolution_log (id, guild_id, actor_id, submitter_id, action, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
	`, entry.ID, entry.GuildID, entry.ActorID, entry.SubmitterID, entry.Action, raw, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert resolution entry: %w", err)
	}
	return nil
}

// ListResolutions returns a guild's audit entries, newest first.
func (s *PostgresStore) ListResolutions(ctx context.Context, guildID string, limit int) ([]ResolutionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, actor_id, submitter_id, action, items, created_at
		FROM resolution_log
		WHERE guild_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	defer rows.Close()

	var entries []ResolutionEntry
	for rows.Next() {
		var entry ResolutionEntry
		var raw []byte
		if err := rows.Scan(&entry.ID, &entry.GuildID, &entry.ActorID, &entry.SubmitterID, &entry.Action, &raw, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resolution entry: %w", err)
		}
		if err := json.Unmarshal(raw, &entry.Items); err != nil {
			return nil, fmt.Errorf("unmarshal resolution items: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
