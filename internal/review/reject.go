package review

import (
	"context"
	"log"

	"mcmetrics/bot/internal/platform"
)

// handleReject closes the workflow and deletes the origin message. It
// never touches the allow-list or the member record store.
func (s *Service) handleReject(ctx context.Context, in *platform.Interaction, sub *Submission) error {
	if err := s.authorize(in); err != nil {
		return err
	}

	if err := s.disableControls(ctx, in, sub.Origin); err != nil {
		return err
	}
	s.report(ctx, in, "Rejecting the stats.")

	if err := s.platform.DeleteMessage(ctx, sub.Origin); err != nil {
		log.Printf("review: delete origin %s: %v", sub.Origin.JumpURL(), err)
		s.report(ctx, in, "Message not found. It might have been deleted already.")
	}

	// Audit with whatever submitter id the description still holds;
	// reject works even when the member is gone.
	submitterID, err := submitterID(in)
	if err != nil {
		log.Printf("review: recover submitter for audit: %v", err)
	}
	s.audit(ctx, in, submitterID, "reject", sub.Unresolved)
	return nil
}

func submitterID(in *platform.Interaction) (platform.Snowflake, error) {
	if len(in.Message.Embeds) == 0 {
		return 0, nil
	}
	return submitterFromDescription(in.Message.Embeds[0].Description)
}
