// Package platform holds the types exchanged with the chat platform the
// workflow runs against: message handles, embeds, interactive controls
// and interaction payloads. The primitives themselves (editing messages,
// rendering prompts) live behind the Client implementation; the workflow
// core only depends on these types.
package platform

import (
	"fmt"
	"strconv"
	"time"
)

// Snowflake is a platform entity id. Valid ids are 17 to 20 decimal
// digits; the platform serializes them as strings.
type Snowflake uint64

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parse snowflake %q: %w", raw, err)
	}
	*s = Snowflake(parsed)
	return nil
}

// ParseSnowflake parses a decimal snowflake string.
func ParseSnowflake(raw string) (Snowflake, error) {
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse snowflake %q: %w", raw, err)
	}
	return Snowflake(parsed), nil
}

// MessageRef identifies a message without fetching it.
type MessageRef struct {
	GuildID   Snowflake `json:"guildId"`
	ChannelID Snowflake `json:"channelId"`
	MessageID Snowflake `json:"messageId"`
}

// JumpURL returns the deep link to the referenced message.
func (r MessageRef) JumpURL() string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", r.GuildID, r.ChannelID, r.MessageID)
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitzero"`
}

// Field returns the value of the named embed field, or "" if absent.
func (e *Embed) Field(name string) string {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// SetField replaces the named field's value, appending the field if it
// does not exist yet.
func (e *Embed) SetField(name, value string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value})
}

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

type Button struct {
	CustomID string      `json:"customId"`
	Label    string      `json:"label"`
	Style    ButtonStyle `json:"style"`
	Disabled bool        `json:"disabled,omitempty"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SelectMenu struct {
	CustomID    string         `json:"customId"`
	Placeholder string         `json:"placeholder,omitempty"`
	MinValues   int            `json:"minValues"`
	MaxValues   int            `json:"maxValues"`
	Options     []SelectOption `json:"options"`
}

// MessagePayload is the full renderable content of a message. Edits
// replace the previous content wholesale; the platform has no partial
// update primitive.
type MessagePayload struct {
	Content string       `json:"content,omitempty"`
	Embed   *Embed       `json:"embed,omitempty"`
	Buttons []Button     `json:"buttons,omitempty"`
	Menus   []SelectMenu `json:"menus,omitempty"`
}

// Member is a guild member as reported by the platform directory.
type Member struct {
	ID          Snowflake `json:"id"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
}

// Mention renders the member's chat mention.
func (m Member) Mention() string {
	return "<@" + m.ID.String() + ">"
}

// Message is the rendered state of a message as delivered alongside an
// interaction. For the notification message this is the single source of
// truth for pending workflow state.
type Message struct {
	Ref       MessageRef `json:"ref"`
	AuthorID  Snowflake  `json:"authorId"`
	Embeds    []Embed    `json:"embeds,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
}

// Interaction is a control activation delivered by the platform.
type Interaction struct {
	ID       string    `json:"id"`
	GuildID  Snowflake `json:"guildId"`
	CustomID string    `json:"customId"`
	Actor    Member    `json:"actor"`
	Message  Message   `json:"message"`
}

// PromptOutcome is how a selection or confirmation prompt ended. Idle
// timeout and explicit close are normal terminal transitions, not errors.
type PromptOutcome int

const (
	OutcomeResponded PromptOutcome = iota
	OutcomeTimedOut
	OutcomeClosed
)

// SelectPrompt displays one or more selection menus (plus optional
// buttons) to a single user and waits for the first response.
type SelectPrompt struct {
	Content       string        `json:"content"`
	Menus         []SelectMenu  `json:"menus"`
	Buttons       []Button      `json:"buttons,omitempty"`
	ShowClose     bool          `json:"showClose,omitempty"`
	Timeout       time.Duration `json:"timeout"`
	AllowedUserID Snowflake     `json:"allowedUserId"`
}

// Selection is the terminal result of a SelectPrompt. Exactly one of
// ButtonID and Values is populated when Outcome is OutcomeResponded.
type Selection struct {
	Outcome  PromptOutcome `json:"outcome"`
	ButtonID string        `json:"buttonId,omitempty"`
	Values   []string      `json:"values,omitempty"`
}

// ConfirmPrompt asks a single user a yes/no question.
type ConfirmPrompt struct {
	Content       string        `json:"content"`
	Timeout       time.Duration `json:"timeout"`
	AllowedUserID Snowflake     `json:"allowedUserId"`
}

type Confirm struct {
	Outcome   PromptOutcome `json:"outcome"`
	Confirmed bool          `json:"confirmed"`
}
