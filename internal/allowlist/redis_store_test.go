package allowlist

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"mcmetrics/bot/internal/platform"
)

const (
	guildA platform.Snowflake = 110000000000000001
	guildB platform.Snowflake = 110000000000000002
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestAddAndRead(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Add(ctx, guildA, "Firetruck", "  AMBULANCE ", "firetruck"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	names, err := store.Read(ctx, guildA)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []string{"ambulance", "firetruck"}
	if len(names) != len(want) {
		t.Fatalf("Read = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Read[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAddIsIdempotent(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Add(ctx, guildA, "firetruck"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	names, err := store.Read(ctx, guildA)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(names) != 1 || names[0] != "firetruck" {
		t.Fatalf("Read = %v, want [firetruck]", names)
	}
}

func TestContains(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Add(ctx, guildA, "ladder truck"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ok, err := store.Contains(ctx, guildA, "Ladder Truck")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Error("expected normalized lookup to hit")
	}

	ok, err = store.Contains(ctx, guildA, "helicopter")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown name")
	}
}

func TestReplace(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Add(ctx, guildA, "firetruck", "ambulance"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Replace(ctx, guildA, []string{"Patrol Car"}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	names, err := store.Read(ctx, guildA)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(names) != 1 || names[0] != "patrol car" {
		t.Fatalf("Read = %v, want [patrol car]", names)
	}
}

func TestGuildIsolation(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.Add(ctx, guildA, "firetruck"); err != nil {
		t.Fatalf("Add guildA failed: %v", err)
	}
	if err := store.Add(ctx, guildB, "ambulance"); err != nil {
		t.Fatalf("Add guildB failed: %v", err)
	}

	names, err := store.Read(ctx, guildB)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(names) != 1 || names[0] != "ambulance" {
		t.Fatalf("guildB list = %v, want [ambulance]", names)
	}
}
