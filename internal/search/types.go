// Package search ranks allow-listed vehicle names by similarity to an
// unrecognized name, so merge target menus lead with the likely match.
package search

// VehicleRecord is the indexed form of one allow-listed name.
type VehicleRecord struct {
	ID      string `json:"id"`
	GuildID string `json:"guildId"`
	Name    string `json:"name"`
}
