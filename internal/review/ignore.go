package review

import (
	"context"
	"fmt"
	"log"

	"mcmetrics/bot/internal/platform"
)

// handleIgnore records the submitted stats as-is, unresolved names
// included, without touching the allow-list, and closes the workflow.
func (s *Service) handleIgnore(ctx context.Context, in *platform.Interaction, sub *Submission) error {
	if err := s.authorize(in); err != nil {
		return err
	}
	submitter, err := s.submitter(ctx, in)
	if err != nil {
		return err
	}

	if err := s.platform.ClearReactions(ctx, sub.Origin); err != nil {
		log.Printf("review: clear reactions on %s: %v", sub.Origin.JumpURL(), err)
		s.report(ctx, in, "Failed to clear reactions. Please clear them manually.")
	}

	if err := s.members.WriteStats(ctx, sub.GuildID.String(), submitter.ID.String(), sub.Stats); err != nil {
		return fmt.Errorf("write member stats: %w", err)
	}
	s.audit(ctx, in, submitter.ID, "ignore", sub.Unresolved)

	if err := s.disableControls(ctx, in, sub.Origin); err != nil {
		return err
	}
	s.report(ctx, in, "Ignoring the unknown vehicles.")
	return nil
}
