package review

import (
	"context"
	"fmt"
	"log"

	"mcmetrics/bot/internal/platform"
)

const buttonAddAll = "add_all"

// handleAdd runs the Add Vehicles resolution: the moderator picks which
// unresolved names to append to the allow-list. Cancel or timeout on the
// selection leaves the notification untouched; there is no partial add.
func (s *Service) handleAdd(ctx context.Context, in *platform.Interaction, sub *Submission) error {
	if err := s.authorize(in); err != nil {
		return err
	}
	submitter, err := s.submitter(ctx, in)
	if err != nil {
		return err
	}

	prompt := platform.SelectPrompt{
		Content:       "Please select which vehicles you want to add from the below menu:",
		Menus:         buildMenus("add", "Select the vehicles you want to add:", sub.Unresolved, true),
		Buttons:       []platform.Button{{CustomID: buttonAddAll, Label: "Add All", Style: platform.ButtonSuccess}},
		Timeout:       s.timeout,
		AllowedUserID: in.Actor.ID,
	}
	selection, err := s.platform.PromptSelect(ctx, in.ID, prompt)
	if err != nil {
		return fmt.Errorf("prompt add selection: %w", err)
	}
	if selection.Outcome != platform.OutcomeResponded {
		return nil
	}

	chosen := selection.Values
	if selection.ButtonID == buttonAddAll {
		chosen = sub.Unresolved
	}
	chosen = normalizeNames(chosen)
	if len(chosen) == 0 {
		return nil
	}

	if err := s.allowlist.Add(ctx, sub.GuildID, chosen...); err != nil {
		return fmt.Errorf("extend allow-list: %w", err)
	}
	s.reindexAllowlist(ctx, sub.GuildID)

	sub.removeUnresolved(chosen...)
	if err := s.members.WriteStats(ctx, sub.GuildID.String(), submitter.ID.String(), sub.Stats); err != nil {
		return fmt.Errorf("write member stats: %w", err)
	}
	s.audit(ctx, in, submitter.ID, "add", chosen)

	resolved := len(sub.Unresolved) == 0
	if err := s.rewriteNotification(ctx, in, sub, resolved); err != nil {
		return err
	}
	if resolved {
		s.markAccepted(ctx, in, sub.Origin)
		s.report(ctx, in, fmt.Sprintf("Added %s to allowed vehicles. All vehicles resolved; the submission is accepted.", humanizeList(chosen)))
	} else {
		s.report(ctx, in, fmt.Sprintf("Added %s to allowed vehicles.", humanizeList(chosen)))
	}
	return nil
}

// reindexAllowlist refreshes the search index after the list changed,
// best effort.
func (s *Service) reindexAllowlist(ctx context.Context, guildID platform.Snowflake) {
	if s.search == nil {
		return
	}
	allowed, err := s.allowlist.Read(ctx, guildID)
	if err != nil {
		log.Printf("review: read allow-list for reindex: %v", err)
		return
	}
	s.search.IndexGuild(guildID.String(), allowed)
}
