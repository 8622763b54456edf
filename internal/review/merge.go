package review

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"mcmetrics/bot/internal/platform"
)

// mergeSession is the transient state of one merge sub-workflow. It is
// owned by the in-flight interaction and never persisted: an abandoned
// session is simply discarded because it was never written back.
type mergeSession struct {
	candidates []string
	working    map[string]int
	snapshot   map[string]int
	sources    []string
}

func newMergeSession(sub *Submission) *mergeSession {
	return &mergeSession{
		candidates: slices.Clone(sub.Unresolved),
		working:    maps.Clone(sub.Stats),
		snapshot:   maps.Clone(sub.Stats),
	}
}

// apply moves the source's count under the target key. The target's
// prior value is overwritten, not summed.
func (m *mergeSession) apply(source, target string) {
	m.working[target] = m.working[source]
	delete(m.working, source)
	m.candidates = slices.DeleteFunc(m.candidates, func(name string) bool {
		return name == source
	})
	m.sources = append(m.sources, source)
}

func (m *mergeSession) changed() bool {
	return !maps.Equal(m.working, m.snapshot)
}

// handleMerge runs the merge sub-workflow: repeatedly pick an unresolved
// source and an allowed target until the candidates run out or the menu
// ends. Natural exhaustion finalizes without prompting; any other exit
// with pending merges requires confirmation before writing back.
func (s *Service) handleMerge(ctx context.Context, in *platform.Interaction, sub *Submission) error {
	if err := s.authorize(in); err != nil {
		return err
	}
	submitter, err := s.submitter(ctx, in)
	if err != nil {
		return err
	}
	allowed, err := s.allowlist.Read(ctx, sub.GuildID)
	if err != nil {
		return fmt.Errorf("read allow-list: %w", err)
	}

	session := newMergeSession(sub)
	applied, err := s.runMergeLoop(ctx, in, session, allowed)
	if err != nil {
		return err
	}
	if !applied {
		if !session.changed() {
			s.report(ctx, in, "No changes were made and the menu has timed out.")
		}
		return nil
	}

	sub.Stats = session.working
	sub.Unresolved = session.candidates

	if err := s.members.WriteStats(ctx, sub.GuildID.String(), submitter.ID.String(), sub.Stats); err != nil {
		return fmt.Errorf("write member stats: %w", err)
	}
	s.audit(ctx, in, submitter.ID, "merge", session.sources)

	resolved := len(sub.Unresolved) == 0
	if err := s.rewriteNotification(ctx, in, sub, resolved); err != nil {
		return err
	}
	if resolved {
		s.markAccepted(ctx, in, sub.Origin)
	}
	return nil
}

// runMergeLoop drives the two-stage selection until a terminal outcome.
// It reports true when the accumulated merges should be written back.
func (s *Service) runMergeLoop(ctx context.Context, in *platform.Interaction, session *mergeSession, allowed []string) (bool, error) {
	for len(session.candidates) > 0 {
		selection, err := s.platform.PromptSelect(ctx, in.ID, platform.SelectPrompt{
			Content:       "Please select the vehicle you want to merge with another:",
			Menus:         buildMenus("merge_source", "Select the vehicle you want to merge:", session.candidates, false),
			ShowClose:     true,
			Timeout:       s.timeout,
			AllowedUserID: in.Actor.ID,
		})
		if err != nil {
			return false, fmt.Errorf("prompt merge source: %w", err)
		}
		if selection.Outcome != platform.OutcomeResponded || len(selection.Values) == 0 {
			return s.confirmMerges(ctx, in, session)
		}
		source := selection.Values[0]

		targets := allowed
		if s.search != nil {
			targets = s.search.RankTargets(in.GuildID.String(), source, allowed)
		}
		targetSelection, err := s.platform.PromptSelect(ctx, in.ID, platform.SelectPrompt{
			Content:       "Please select the vehicle you want to merge with:",
			Menus:         buildMenus("merge_target", "Select the vehicle to merge into:", targets, false),
			Timeout:       s.timeout,
			AllowedUserID: in.Actor.ID,
		})
		if err != nil {
			return false, fmt.Errorf("prompt merge target: %w", err)
		}
		if targetSelection.Outcome != platform.OutcomeResponded || len(targetSelection.Values) == 0 {
			return s.confirmMerges(ctx, in, session)
		}
		target := targetSelection.Values[0]

		session.apply(source, target)
		s.report(ctx, in, fmt.Sprintf("Successfully merged %s with %s", source, target))
	}

	// All unresolved vehicles merged away: finalize without prompting.
	return true, nil
}

// confirmMerges decides what happens to merges accumulated before the
// menu ended early. Zero merges cancel silently; otherwise the moderator
// confirms, and a declined or timed-out confirmation discards them.
func (s *Service) confirmMerges(ctx context.Context, in *platform.Interaction, session *mergeSession) (bool, error) {
	if !session.changed() {
		return false, nil
	}

	confirm, err := s.platform.PromptConfirm(ctx, in.ID, platform.ConfirmPrompt{
		Content:       "The select menu has ended but I detected changes were made. Should I merge the stats?",
		Timeout:       s.timeout,
		AllowedUserID: in.Actor.ID,
	})
	if err != nil {
		return false, fmt.Errorf("prompt merge confirmation: %w", err)
	}
	if confirm.Outcome != platform.OutcomeResponded || !confirm.Confirmed {
		s.report(ctx, in, "Reverting changes made.")
		return false, nil
	}
	return true, nil
}
