package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RESTClient talks to the platform bridge over JSON/HTTP. The bridge owns
// the actual chat connection and the rendering of prompts; prompt calls
// block server-side until the user responds, the idle timeout elapses, or
// the prompt is closed.
type RESTClient struct {
	base  string
	token string
	http  *http.Client
}

func NewRESTClient(baseURL, token string) *RESTClient {
	// No client-level timeout: prompt calls legitimately block for the
	// full idle window. Callers bound each call with a context.
	return &RESTClient{base: baseURL, token: token, http: &http.Client{}}
}

func (c *RESTClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call platform %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode platform %s response: %w", path, err)
	}
	return nil
}

type messageRequest struct {
	Ref     MessageRef      `json:"ref"`
	Payload *MessagePayload `json:"payload,omitempty"`
	Emoji   string          `json:"emoji,omitempty"`
}

type respondRequest struct {
	InteractionID string `json:"interactionId"`
	Content       string `json:"content,omitempty"`
	Embed         *Embed `json:"embed,omitempty"`
	Ephemeral     bool   `json:"ephemeral"`
}

type promptRequest struct {
	InteractionID string         `json:"interactionId"`
	Select        *SelectPrompt  `json:"select,omitempty"`
	Confirm       *ConfirmPrompt `json:"confirm,omitempty"`
}

func (c *RESTClient) EditMessage(ctx context.Context, ref MessageRef, payload MessagePayload) error {
	return c.post(ctx, "/messages/edit", messageRequest{Ref: ref, Payload: &payload}, nil)
}

func (c *RESTClient) DeleteMessage(ctx context.Context, ref MessageRef) error {
	return c.post(ctx, "/messages/delete", messageRequest{Ref: ref}, nil)
}

func (c *RESTClient) AddReaction(ctx context.Context, ref MessageRef, emoji string) error {
	return c.post(ctx, "/reactions/add", messageRequest{Ref: ref, Emoji: emoji}, nil)
}

func (c *RESTClient) ClearReactions(ctx context.Context, ref MessageRef) error {
	return c.post(ctx, "/reactions/clear", messageRequest{Ref: ref}, nil)
}

func (c *RESTClient) Respond(ctx context.Context, interactionID, content string, ephemeral bool) error {
	return c.post(ctx, "/interactions/respond", respondRequest{InteractionID: interactionID, Content: content, Ephemeral: ephemeral}, nil)
}

func (c *RESTClient) RespondEmbed(ctx context.Context, interactionID string, embed Embed, ephemeral bool) error {
	return c.post(ctx, "/interactions/respond", respondRequest{InteractionID: interactionID, Embed: &embed, Ephemeral: ephemeral}, nil)
}

func (c *RESTClient) PromptSelect(ctx context.Context, interactionID string, prompt SelectPrompt) (Selection, error) {
	ctx, cancel := promptContext(ctx, prompt.Timeout)
	defer cancel()
	var sel Selection
	if err := c.post(ctx, "/prompts/select", promptRequest{InteractionID: interactionID, Select: &prompt}, &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func (c *RESTClient) PromptConfirm(ctx context.Context, interactionID string, prompt ConfirmPrompt) (Confirm, error) {
	ctx, cancel := promptContext(ctx, prompt.Timeout)
	defer cancel()
	var conf Confirm
	if err := c.post(ctx, "/prompts/confirm", promptRequest{InteractionID: interactionID, Confirm: &prompt}, &conf); err != nil {
		return Confirm{}, err
	}
	return conf, nil
}

func (c *RESTClient) ResolveMember(ctx context.Context, guildID, userID Snowflake) (Member, error) {
	var member Member
	req := struct {
		GuildID Snowflake `json:"guildId"`
		UserID  Snowflake `json:"userId"`
	}{guildID, userID}
	if err := c.post(ctx, "/members/resolve", req, &member); err != nil {
		return Member{}, err
	}
	return member, nil
}

// promptContext bounds a blocking prompt call to its idle timeout plus
// slack for the bridge round trip.
func promptContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return context.WithTimeout(ctx, timeout+15*time.Second)
}
