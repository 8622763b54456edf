package review

import (
	"context"
	"errors"
	"log"

	"mcmetrics/bot/internal/action"
	"mcmetrics/bot/internal/metadata"
	"mcmetrics/bot/internal/platform"
)

// handlers is the static dispatch table: one entry per action kind,
// fixed at startup.
var handlers = map[action.Kind]func(*Service, context.Context, *platform.Interaction, *Submission) error{
	action.KindAddVehicles: (*Service).handleAdd,
	action.KindIgnore:      (*Service).handleIgnore,
	action.KindReject:      (*Service).handleReject,
	action.KindMerge:       (*Service).handleMerge,
	action.KindView:        (*Service).handleView,
}

// Dispatch reconstructs the pending submission from the interaction's
// control identifier and the notification's embedded metadata, then runs
// the matching handler. Identifiers that don't belong to this workflow
// are ignored; workflow refusals are reported to the acting user and
// swallowed.
func (s *Service) Dispatch(ctx context.Context, in *platform.Interaction) error {
	kind, channelID, messageID, err := action.ParseID(in.CustomID)
	if errors.Is(err, action.ErrNoMatch) {
		return nil
	}
	if err != nil {
		return err
	}

	sub, err := s.reconstruct(in, channelID, messageID)
	if err != nil {
		return s.refuse(ctx, in, err)
	}

	handler, ok := handlers[kind]
	if !ok {
		return nil
	}
	if err := handler(s, ctx, in, sub); err != nil {
		return s.refuse(ctx, in, err)
	}
	return nil
}

// reconstruct rebuilds the Submission from the notification message. The
// origin handle is a reference only; it is not fetched, so an
// already-deleted origin still reconstructs and individual actions deal
// with the fallout.
func (s *Service) reconstruct(in *platform.Interaction, channelID, messageID platform.Snowflake) (*Submission, error) {
	if len(in.Message.Embeds) == 0 {
		return nil, workflowError(CodeDecodeError, "The notification is missing its embed.")
	}
	stats, unresolved, err := metadata.Decode(in.Message.Embeds[0].ImageURL)
	if err != nil {
		log.Printf("review: decode notification metadata: %v", err)
		return nil, workflowError(CodeDecodeError, "The notification metadata is corrupt; this submission can't be resumed.")
	}
	return &Submission{
		Stats:      stats,
		Unresolved: unresolved,
		Origin: platform.MessageRef{
			GuildID:   in.GuildID,
			ChannelID: channelID,
			MessageID: messageID,
		},
		GuildID: in.GuildID,
	}, nil
}

// refuse surfaces workflow refusals to the acting user and passes
// anything else (infrastructure failures) up to the caller.
func (s *Service) refuse(ctx context.Context, in *platform.Interaction, err error) error {
	var werr *WorkflowError
	if errors.As(err, &werr) {
		s.report(ctx, in, werr.Message)
		return nil
	}
	return err
}
