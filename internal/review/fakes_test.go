package review

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"mcmetrics/bot/internal/action"
	"mcmetrics/bot/internal/allowlist"
	"mcmetrics/bot/internal/platform"
	"mcmetrics/bot/internal/store"
)

const (
	testGuildID     platform.Snowflake = 500000000000000001
	submitterUserID platform.Snowflake = 300000000000000001
	moderatorUserID platform.Snowflake = 300000000000000002
)

var (
	originRef = platform.MessageRef{
		GuildID:   testGuildID,
		ChannelID: 123456789012345678,
		MessageID: 987654321098765432,
	}
	notifRef = platform.MessageRef{
		GuildID:   testGuildID,
		ChannelID: 223456789012345678,
		MessageID: 887654321098765432,
	}
)

type editCall struct {
	ref     platform.MessageRef
	payload platform.MessagePayload
}

type fakePlatform struct {
	edits            []editCall
	deleted          []platform.MessageRef
	reactionsAdded   []string
	reactionsCleared []platform.MessageRef
	responses        []string
	embeds           []platform.Embed

	selections     []platform.Selection
	selectPrompts  []platform.SelectPrompt
	confirms       []platform.Confirm
	confirmPrompts []platform.ConfirmPrompt

	members map[platform.Snowflake]platform.Member

	clearReactionsErr error
	deleteErr         error
	resolveErr        error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members: map[platform.Snowflake]platform.Member{
			submitterUserID: {ID: submitterUserID, DisplayName: "submitter", Role: "member"},
		},
	}
}

func (f *fakePlatform) EditMessage(_ context.Context, ref platform.MessageRef, payload platform.MessagePayload) error {
	f.edits = append(f.edits, editCall{ref: ref, payload: payload})
	return nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, ref platform.MessageRef) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakePlatform) AddReaction(_ context.Context, _ platform.MessageRef, emoji string) error {
	f.reactionsAdded = append(f.reactionsAdded, emoji)
	return nil
}

func (f *fakePlatform) ClearReactions(_ context.Context, ref platform.MessageRef) error {
	if f.clearReactionsErr != nil {
		return f.clearReactionsErr
	}
	f.reactionsCleared = append(f.reactionsCleared, ref)
	return nil
}

func (f *fakePlatform) Respond(_ context.Context, _ string, content string, _ bool) error {
	f.responses = append(f.responses, content)
	return nil
}

func (f *fakePlatform) RespondEmbed(_ context.Context, _ string, embed platform.Embed, _ bool) error {
	f.embeds = append(f.embeds, embed)
	return nil
}

func (f *fakePlatform) PromptSelect(_ context.Context, _ string, prompt platform.SelectPrompt) (platform.Selection, error) {
	f.selectPrompts = append(f.selectPrompts, prompt)
	if len(f.selections) == 0 {
		return platform.Selection{Outcome: platform.OutcomeTimedOut}, nil
	}
	next := f.selections[0]
	f.selections = f.selections[1:]
	return next, nil
}

func (f *fakePlatform) PromptConfirm(_ context.Context, _ string, prompt platform.ConfirmPrompt) (platform.Confirm, error) {
	f.confirmPrompts = append(f.confirmPrompts, prompt)
	if len(f.confirms) == 0 {
		return platform.Confirm{Outcome: platform.OutcomeTimedOut}, nil
	}
	next := f.confirms[0]
	f.confirms = f.confirms[1:]
	return next, nil
}

func (f *fakePlatform) ResolveMember(_ context.Context, _ platform.Snowflake, userID platform.Snowflake) (platform.Member, error) {
	if f.resolveErr != nil {
		return platform.Member{}, f.resolveErr
	}
	member, ok := f.members[userID]
	if !ok {
		return platform.Member{}, fmt.Errorf("member %s not found", userID)
	}
	return member, nil
}

type fakeAllowlist struct {
	names  map[platform.Snowflake]map[string]struct{}
	adds   int
	addErr error
}

func newFakeAllowlist(names ...string) *fakeAllowlist {
	f := &fakeAllowlist{names: map[platform.Snowflake]map[string]struct{}{}}
	set := map[string]struct{}{}
	for _, name := range names {
		set[allowlist.Normalize(name)] = struct{}{}
	}
	f.names[testGuildID] = set
	return f
}

func (f *fakeAllowlist) Read(_ context.Context, guildID platform.Snowflake) ([]string, error) {
	var out []string
	for name := range f.names[guildID] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeAllowlist) Add(_ context.Context, guildID platform.Snowflake, names ...string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.adds++
	set := f.names[guildID]
	if set == nil {
		set = map[string]struct{}{}
		f.names[guildID] = set
	}
	for _, name := range names {
		set[allowlist.Normalize(name)] = struct{}{}
	}
	return nil
}

func (f *fakeAllowlist) contains(name string) bool {
	_, ok := f.names[testGuildID][name]
	return ok
}

type fakeMembers struct {
	stats  map[string]map[string]int
	writes int
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{stats: map[string]map[string]int{}}
}

func (f *fakeMembers) ReadStats(_ context.Context, guildID, userID string) (map[string]int, error) {
	stats := f.stats[guildID+"/"+userID]
	if stats == nil {
		return map[string]int{}, nil
	}
	return stats, nil
}

func (f *fakeMembers) WriteStats(_ context.Context, guildID, userID string, stats map[string]int) error {
	f.writes++
	f.stats[guildID+"/"+userID] = stats
	return nil
}

type fakeAudit struct {
	entries []store.ResolutionEntry
}

func (f *fakeAudit) InsertResolution(_ context.Context, entry store.ResolutionEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fixture struct {
	platform *fakePlatform
	allow    *fakeAllowlist
	members  *fakeMembers
	audit    *fakeAudit
	service  *Service
}

func newFixture(allowed ...string) *fixture {
	fp := newFakePlatform()
	allow := newFakeAllowlist(allowed...)
	members := newFakeMembers()
	audit := &fakeAudit{}
	return &fixture{
		platform: fp,
		allow:    allow,
		members:  members,
		audit:    audit,
		service:  New(fp, allow, members, audit, nil, time.Second),
	}
}

// interaction builds a control activation against a freshly rendered
// notification for the given pending state.
func (fx *fixture) interaction(t *testing.T, kind action.Kind, stats map[string]int, unresolved []string, actorRole string) *platform.Interaction {
	t.Helper()

	origin := platform.Message{Ref: originRef, AuthorID: submitterUserID, CreatedAt: time.Now()}
	submitter := platform.Member{ID: submitterUserID, DisplayName: "submitter", Role: "member"}
	payload, err := BuildNotification(origin, submitter, stats, unresolved)
	if err != nil {
		t.Fatalf("BuildNotification failed: %v", err)
	}

	customID, err := action.BuildID(kind, originRef.ChannelID, originRef.MessageID)
	if err != nil {
		t.Fatalf("BuildID failed: %v", err)
	}

	return &platform.Interaction{
		ID:       "interaction-1",
		GuildID:  testGuildID,
		CustomID: customID,
		Actor:    platform.Member{ID: moderatorUserID, DisplayName: "mod", Role: actorRole},
		Message:  platform.Message{Ref: notifRef, Embeds: []platform.Embed{*payload.Embed}},
	}
}

func (fx *fixture) memberStats(userID platform.Snowflake) map[string]int {
	return fx.members.stats[testGuildID.String()+"/"+userID.String()]
}
