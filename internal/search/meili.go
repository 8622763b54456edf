package search

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxVehicles = "mcm_vehicles"

// Meili ranks vehicle names via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the vehicle index.
// The caller should proceed without it if the server is down; the health
// loop picks it back up when it recovers.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxVehicles,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxVehicles, err)
	}

	index := m.client.Index(idxVehicles)
	filterable := []interface{}{"guildId"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxVehicles, err)
	}
	searchable := []string{"name"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxVehicles, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search returns a guild's indexed names matching the query, best first.
func (m *Meili) Search(guildID, query string, limit int) ([]string, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxVehicles).Search(query, &meili.SearchRequest{
		Limit:  int64(limit),
		Filter: fmt.Sprintf("guildId = %q", guildID),
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	names := make([]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if name := decodeString(hit, "name"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// IndexVehicles replaces a guild's indexed names with the given list.
func (m *Meili) IndexVehicles(guildID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	records := make([]VehicleRecord, 0, len(names))
	for _, name := range names {
		records = append(records, VehicleRecord{
			ID:      recordID(guildID, name),
			GuildID: guildID,
			Name:    name,
		})
	}
	_, err := m.client.Index(idxVehicles).AddDocuments(records, nil)
	return err
}

func recordID(guildID, name string) string {
	sum := sha1.Sum([]byte(guildID + "\x00" + name))
	return guildID + "-" + hex.EncodeToString(sum[:6])
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
