// Package action defines the opaque identifier grammar carried by the
// notification's interactive controls. An identifier is the only state a
// persisted control holds; everything else is re-derived from the
// notification message when the control fires, so identifiers must be
// stable across restarts.
package action

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"mcmetrics/bot/internal/platform"
)

// Kind is a resolution action discriminator.
type Kind string

const (
	KindAddVehicles Kind = "ADD_VEHICLES"
	KindIgnore      Kind = "IGNORE"
	KindReject      Kind = "REJECT"
	KindMerge       Kind = "MERGE"
	KindView        Kind = "VIEW"
)

// Kinds lists every action kind, in control-row order.
var Kinds = []Kind{KindAddVehicles, KindIgnore, KindReject, KindMerge, KindView}

const prefix = "MCM_IS"

var (
	// ErrNoMatch means the identifier was not produced by BuildID.
	// Callers treat it as "not one of ours" and ignore the control.
	ErrNoMatch = errors.New("action: identifier does not match the scheme")

	// ErrInvalidID means BuildID was given an out-of-range snowflake or
	// an unknown kind.
	ErrInvalidID = errors.New("action: invalid identifier input")
)

// Snowflakes are 17 to 20 decimal digits. The upper bound is the uint64
// range itself.
const minSnowflake platform.Snowflake = 10_000_000_000_000_000

var idPattern = regexp.MustCompile(
	`^` + prefix + `_(ADD_VEHICLES|IGNORE|REJECT|MERGE|VIEW)_(\d{17,20})_(\d{17,20})$`,
)

// BuildID formats the identifier for a control. The same inputs always
// yield the same identifier, so re-rendering a notification reuses it.
func BuildID(kind Kind, channelID, messageID platform.Snowflake) (string, error) {
	switch kind {
	case KindAddVehicles, KindIgnore, KindReject, KindMerge, KindView:
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidID, kind)
	}
	if channelID < minSnowflake || messageID < minSnowflake {
		return "", fmt.Errorf("%w: snowflake below the valid range", ErrInvalidID)
	}
	return fmt.Sprintf("%s_%s_%s_%s", prefix, kind, channelID, messageID), nil
}

// ParseID reverses BuildID, returning ErrNoMatch for any string the
// scheme did not produce.
func ParseID(id string) (Kind, platform.Snowflake, platform.Snowflake, error) {
	match := idPattern.FindStringSubmatch(id)
	if match == nil {
		return "", 0, 0, ErrNoMatch
	}
	channelID, err := strconv.ParseUint(match[2], 10, 64)
	if err != nil {
		// 20-digit fields can overflow uint64
		return "", 0, 0, ErrNoMatch
	}
	messageID, err := strconv.ParseUint(match[3], 10, 64)
	if err != nil {
		return "", 0, 0, ErrNoMatch
	}
	return Kind(match[1]), platform.Snowflake(channelID), platform.Snowflake(messageID), nil
}
