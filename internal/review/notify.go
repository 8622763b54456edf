package review

import (
	"fmt"

	"mcmetrics/bot/internal/action"
	"mcmetrics/bot/internal/metadata"
	"mcmetrics/bot/internal/platform"
)

const instructions = "Use the buttons below to decide what to do.\n\n" +
	"- `Add Vehicles` - The selected vehicles are added to the list of allowed vehicles\n" +
	"- `Ignore` - The unknown vehicles are ignored and the stats are recorded as submitted\n" +
	"- `Reject` - The stats are rejected and the original message is deleted\n" +
	"- `Merge` - Merge the unknown vehicles into existing vehicles via a dropdown\n" +
	"- `View Stats` - Show the submitted counts\n"

// BuildNotification renders the message that hosts the resolution
// controls for an invalid submission. The returned payload carries
// everything a later interaction needs to resume: the metadata token in
// the embed image, the submitter mention in the description, and the
// control identifiers.
func BuildNotification(origin platform.Message, submitter platform.Member, stats map[string]int, unresolved []string) (platform.MessagePayload, error) {
	token, err := metadata.Encode(stats, unresolved)
	if err != nil {
		if err == metadata.ErrTooLarge {
			return platform.MessagePayload{}, workflowError(CodeEncodingTooLarge, "The submission is too large to track in a notification.")
		}
		return platform.MessagePayload{}, err
	}

	buttons, err := controlRow(origin.Ref, false)
	if err != nil {
		return platform.MessagePayload{}, err
	}

	embed := platform.Embed{
		Title:       fmt.Sprintf("Invalid Stats Posted: **__%s__**", origin.Ref.JumpURL()),
		Description: notificationDescription(submitter),
		Color:       colorPending,
		Timestamp:   origin.CreatedAt,
		ImageURL:    token,
		Fields: []platform.EmbedField{
			{Name: fieldUnknownVehicles, Value: bulletList(unresolved)},
			{Name: "Instructions", Value: instructions},
		},
	}
	return platform.MessagePayload{Embed: &embed, Buttons: buttons}, nil
}

// notificationDescription puts the submitter mention at the head of the
// second line; submitterFromDescription depends on that layout.
func notificationDescription(submitter platform.Member) string {
	return "A stats submission referenced vehicles that are not on the allow-list.\n" +
		submitter.Mention() + " submitted the counts below. Use the controls to resolve them."
}

// controlRow builds the five controls. View stays enabled after the
// workflow closes; the four resolution controls do not.
func controlRow(origin platform.MessageRef, closed bool) ([]platform.Button, error) {
	controls := []struct {
		kind  action.Kind
		label string
		style platform.ButtonStyle
	}{
		{action.KindAddVehicles, "Add Vehicles", platform.ButtonPrimary},
		{action.KindIgnore, "Ignore", platform.ButtonSecondary},
		{action.KindReject, "Reject", platform.ButtonDanger},
		{action.KindMerge, "Merge", platform.ButtonPrimary},
		{action.KindView, "View Stats", platform.ButtonSecondary},
	}

	buttons := make([]platform.Button, 0, len(controls))
	for _, control := range controls {
		id, err := action.BuildID(control.kind, origin.ChannelID, origin.MessageID)
		if err != nil {
			return nil, fmt.Errorf("build %s control id: %w", control.kind, err)
		}
		buttons = append(buttons, platform.Button{
			CustomID: id,
			Label:    control.label,
			Style:    control.style,
			Disabled: closed && control.kind != action.KindView,
		})
	}
	return buttons, nil
}

// buildMenus chunks options into selection menus of at most 25 entries.
func buildMenus(idPrefix, placeholder string, options []string, multi bool) []platform.SelectMenu {
	const pageSize = 25
	var menus []platform.SelectMenu
	for i, page := range chunkStrings(options, pageSize) {
		maxValues := 1
		if multi {
			maxValues = len(page)
		}
		selectOptions := make([]platform.SelectOption, 0, len(page))
		for _, name := range page {
			selectOptions = append(selectOptions, platform.SelectOption{Label: name, Value: name})
		}
		menus = append(menus, platform.SelectMenu{
			CustomID:    fmt.Sprintf("%s_select_%d", idPrefix, i+1),
			Placeholder: placeholder,
			MinValues:   1,
			MaxValues:   maxValues,
			Options:     selectOptions,
		})
	}
	return menus
}
