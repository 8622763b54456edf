package review

import (
	"context"
	"log"
	"time"

	"mcmetrics/bot/internal/metadata"
	"mcmetrics/bot/internal/platform"
	"mcmetrics/bot/internal/rbac"
	"mcmetrics/bot/internal/store"
)

// DefaultPromptTimeout is the fixed idle window for every selection and
// confirmation prompt.
const DefaultPromptTimeout = 60 * time.Second

const (
	emojiAccepted = "✅"

	colorPending  = 0xE74C3C
	colorResolved = 0x2ECC71

	fieldUnknownVehicles = "Unknown Vehicles"
)

type AllowlistStore interface {
	Read(ctx context.Context, guildID platform.Snowflake) ([]string, error)
	Add(ctx context.Context, guildID platform.Snowflake, names ...string) error
}

type MemberStore interface {
	ReadStats(ctx context.Context, guildID, userID string) (map[string]int, error)
	WriteStats(ctx context.Context, guildID, userID string, stats map[string]int) error
}

// AuditStore records completed resolutions. It is distinct from the
// member record store: every action writes audit entries, including
// Reject, which otherwise mutates nothing but the messages.
type AuditStore interface {
	InsertResolution(ctx context.Context, entry store.ResolutionEntry) error
}

// Platform is the slice of the chat platform this workflow drives.
type Platform interface {
	EditMessage(ctx context.Context, ref platform.MessageRef, payload platform.MessagePayload) error
	DeleteMessage(ctx context.Context, ref platform.MessageRef) error
	AddReaction(ctx context.Context, ref platform.MessageRef, emoji string) error
	ClearReactions(ctx context.Context, ref platform.MessageRef) error
	Respond(ctx context.Context, interactionID, content string, ephemeral bool) error
	RespondEmbed(ctx context.Context, interactionID string, embed platform.Embed, ephemeral bool) error
	PromptSelect(ctx context.Context, interactionID string, prompt platform.SelectPrompt) (platform.Selection, error)
	PromptConfirm(ctx context.Context, interactionID string, prompt platform.ConfirmPrompt) (platform.Confirm, error)
	ResolveMember(ctx context.Context, guildID, userID platform.Snowflake) (platform.Member, error)
}

// Searcher orders merge-target candidates. Optional.
type Searcher interface {
	RankTargets(guildID, source string, allowed []string) []string
	IndexGuild(guildID string, names []string)
}

// Service runs the resolution workflow. It holds no per-submission state:
// everything a handler needs is reconstructed from the interaction.
type Service struct {
	platform  Platform
	allowlist AllowlistStore
	members   MemberStore
	auditLog  AuditStore
	search    Searcher
	timeout   time.Duration
}

func New(p Platform, allow AllowlistStore, members MemberStore, auditLog AuditStore, search Searcher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultPromptTimeout
	}
	return &Service{
		platform:  p,
		allowlist: allow,
		members:   members,
		auditLog:  auditLog,
		search:    search,
		timeout:   timeout,
	}
}

// authorize enforces the shared moderator guard. It refuses before any
// mutation happens.
func (s *Service) authorize(in *platform.Interaction) error {
	if rbac.Can(rbac.Normalize(in.Actor.Role), rbac.ActionResolve) {
		return nil
	}
	return workflowError(CodeAuthorizationDenied, "You aren't allowed to resolve this submission.")
}

// submitter resolves the member who posted the stats. A missing member
// aborts the whole action.
func (s *Service) submitter(ctx context.Context, in *platform.Interaction) (platform.Member, error) {
	if len(in.Message.Embeds) == 0 {
		return platform.Member{}, workflowError(CodeSubmitterUnresolvable, "The notification is missing its embed.")
	}
	id, err := submitterFromDescription(in.Message.Embeds[0].Description)
	if err != nil {
		log.Printf("review: recover submitter: %v", err)
		return platform.Member{}, workflowError(CodeSubmitterUnresolvable, "Couldn't read the submitter from the notification.")
	}
	member, err := s.platform.ResolveMember(ctx, in.GuildID, id)
	if err != nil {
		return platform.Member{}, workflowError(CodeSubmitterUnresolvable, "User not found. They might have left the server.")
	}
	return member, nil
}

// report sends an ephemeral note to the acting user, best effort.
func (s *Service) report(ctx context.Context, in *platform.Interaction, message string) {
	if err := s.platform.Respond(ctx, in.ID, message, true); err != nil {
		log.Printf("review: respond to interaction %s: %v", in.ID, err)
	}
}

// rewriteNotification re-embeds the submission's current state into the
// notification: fresh metadata token, updated unresolved field, and the
// control row (disabled when resolved). The platform has no transactional
// edit, so concurrent rewrites are last-writer-wins.
func (s *Service) rewriteNotification(ctx context.Context, in *platform.Interaction, sub *Submission, resolved bool) error {
	token, err := metadata.Encode(sub.Stats, sub.Unresolved)
	if err != nil {
		if err == metadata.ErrTooLarge {
			return workflowError(CodeEncodingTooLarge, "The updated stats no longer fit in the notification metadata.")
		}
		return err
	}

	embed := in.Message.Embeds[0]
	embed.ImageURL = token
	embed.SetField(fieldUnknownVehicles, bulletList(sub.Unresolved))
	if resolved {
		embed.Color = colorResolved
	}

	buttons, err := controlRow(sub.Origin, resolved)
	if err != nil {
		return err
	}
	return s.platform.EditMessage(ctx, in.Message.Ref, platform.MessagePayload{
		Embed:   &embed,
		Buttons: buttons,
	})
}

// disableControls closes the notification without touching its embedded
// metadata.
func (s *Service) disableControls(ctx context.Context, in *platform.Interaction, origin platform.MessageRef) error {
	embed := in.Message.Embeds[0]
	embed.Color = colorResolved
	buttons, err := controlRow(origin, true)
	if err != nil {
		return err
	}
	return s.platform.EditMessage(ctx, in.Message.Ref, platform.MessagePayload{
		Embed:   &embed,
		Buttons: buttons,
	})
}

// markAccepted swaps the review markers on the origin message for the
// accepted checkmark. The resolution has already landed when this runs,
// so failures are soft: logged and reported, never fatal.
func (s *Service) markAccepted(ctx context.Context, in *platform.Interaction, origin platform.MessageRef) {
	if err := s.platform.ClearReactions(ctx, origin); err != nil {
		log.Printf("review: clear reactions on %s: %v", origin.JumpURL(), err)
		s.report(ctx, in, "Failed to update the reactions on the stats message. Please clear them manually. "+origin.JumpURL())
		return
	}
	if err := s.platform.AddReaction(ctx, origin, emojiAccepted); err != nil {
		log.Printf("review: add accepted reaction on %s: %v", origin.JumpURL(), err)
		s.report(ctx, in, "Failed to mark the stats message as accepted. "+origin.JumpURL())
	}
}

// audit records a completed resolution, best effort.
func (s *Service) audit(ctx context.Context, in *platform.Interaction, submitterID platform.Snowflake, action string, items []string) {
	entry := store.ResolutionEntry{
		GuildID:     in.GuildID.String(),
		ActorID:     in.Actor.ID.String(),
		SubmitterID: submitterID.String(),
		Action:      action,
		Items:       items,
	}
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.InsertResolution(ctx, entry); err != nil {
		log.Printf("review: record %s resolution: %v", action, err)
	}
}
