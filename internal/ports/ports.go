package ports

import (
	"context"

	"ChannelMonitor/internal/domain"
)

// VideoSource lists a channel's newest uploads.
type VideoSource interface {
	// LatestVideo scans the channel's most recent listing entries and returns
	// the newest playable video, skipping embedded channel references.
	LatestVideo(ctx context.Context, channelURL string) (domain.Video, error)
}

// TranscriptProvider resolves the caption track of a video into plain text.
type TranscriptProvider interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// Summarizer turns a title and transcript into structured insight text.
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (string, error)
}

// InsightStore persists generated insights as on-disk artifacts.
type InsightStore interface {
	Save(insight domain.Insight) (string, error)
}

// Notifier delivers a generated insight to the configured recipients.
type Notifier interface {
	// Enabled reports whether the notifier has enough configuration to send.
	Enabled() bool
	Send(ctx context.Context, insight domain.Insight, videoID string) error
}

// StateStore keeps the per-channel last-processed video id across restarts.
type StateStore interface {
	Load() (map[string]string, error)
	Save(state map[string]string) error
}
