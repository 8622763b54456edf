package review

import (
	"context"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mcmetrics/bot/internal/platform"
)

// handleView renders the submitted counts to the requester only. It is
// read-only and open to anyone who can see the notification, at any
// point in the workflow, including after it closed.
func (s *Service) handleView(ctx context.Context, in *platform.Interaction, sub *Submission) error {
	embed := platform.Embed{
		Description: "```\n" + statsTable(sub.Stats) + "\n```",
		Color:       colorResolved,
	}
	return s.platform.RespondEmbed(ctx, in.ID, embed, true)
}

// statsTable renders the counts as a monospace table, sorted by name.
func statsTable(stats map[string]int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Vehicle", "Amount")
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		t.Row(name, strconv.Itoa(stats[name]))
	}
	return t.Render()
}
