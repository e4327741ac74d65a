package detect

import (
	"strings"

	"ChannelMonitor/internal/domain"
)

// minIDLength guards against malformed or placeholder identifiers returned
// by the provider; genuine video ids are always longer than this.
const minIDLength = 5

// channelIDPrefix marks a channel/collection reference embedded in a listing
// rather than a playable video.
const channelIDPrefix = "UC"

// Outcome classifies the result of comparing a fetched video against the
// channel's last processed id.
type Outcome int

const (
	// OutcomeUnavailable means the listing could not be retrieved or was empty.
	OutcomeUnavailable Outcome = iota
	// OutcomeInvalidID means the fetched id is too short to be a real video.
	OutcomeInvalidID
	// OutcomeUnchanged means the fetched id matches the last processed one.
	OutcomeUnchanged
	// OutcomeNew means a fresh video should be processed.
	OutcomeNew
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeInvalidID:
		return "invalid-id"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNew:
		return "new"
	default:
		return "unknown"
	}
}

// Decision carries the outcome and, for OutcomeNew, the video to process.
type Decision struct {
	Outcome Outcome
	Video   domain.Video
}

// Evaluate applies the change-detection rules in order: missing fetch,
// identifier validity, then last-seen equality.
func Evaluate(fetched *domain.Video, lastProcessedID string) Decision {
	if fetched == nil || fetched.ID == "" {
		return Decision{Outcome: OutcomeUnavailable}
	}
	if len(fetched.ID) <= minIDLength {
		return Decision{Outcome: OutcomeInvalidID}
	}
	if fetched.ID == lastProcessedID {
		return Decision{Outcome: OutcomeUnchanged}
	}
	return Decision{Outcome: OutcomeNew, Video: *fetched}
}

// IsChannelReference reports whether a listing entry id denotes the channel
// itself rather than a video; listing scans skip these.
func IsChannelReference(id string) bool {
	return strings.HasPrefix(id, channelIDPrefix)
}
