package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/ports"
)

// PipelineDeps wires all collaborators into the per-video workflow.
type PipelineDeps struct {
	Transcripts ports.TranscriptProvider
	Summarizer  ports.Summarizer
	Insights    ports.InsightStore
	Notifier    ports.Notifier
	State       ports.StateStore
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline runs extract → summarize → persist → commit → notify for a single
// detected video. Every stage gates the next; a failed stage leaves the
// channel state untouched so the same video is retried next cycle.
type Pipeline struct {
	transcripts ports.TranscriptProvider
	summarizer  ports.Summarizer
	insights    ports.InsightStore
	notifier    ports.Notifier
	state       ports.StateStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		transcripts: deps.Transcripts,
		summarizer:  deps.Summarizer,
		insights:    deps.Insights,
		notifier:    deps.Notifier,
		state:       deps.State,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// Process handles one new video for a channel. The state mapping is mutated
// and committed wholesale once persistence succeeds; notification runs after
// the commit so a delivery failure can never cause reprocessing.
func (p *Pipeline) Process(ctx context.Context, channelURL string, video domain.Video, state map[string]string) error {
	log := p.logger.With("channel", channelURL, "video", video.ID)

	transcript, err := p.transcripts.Transcript(ctx, video.ID)
	if err != nil {
		log.Warn("skipping analysis, transcript unavailable", "error", err)
		return fmt.Errorf("extract transcript: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		log.Warn("skipping analysis, transcript is empty")
		return fmt.Errorf("extract transcript: empty caption track")
	}

	body, err := p.summarizer.Summarize(ctx, video.Title, transcript)
	if err != nil {
		log.Warn("failed to generate insights", "error", err)
		return fmt.Errorf("summarize: %w", err)
	}

	in := domain.Insight{
		Title:       video.Title,
		GeneratedAt: p.now(),
		Body:        body,
	}

	path, err := p.insights.Save(in)
	if err != nil {
		log.Error("failed to persist insight", "error", err)
		return fmt.Errorf("persist insight: %w", err)
	}
	log.Info("insight saved", "path", path)

	// The state map is shared across the whole cycle, so the new entry must
	// not survive a failed commit: a later channel's successful save would
	// otherwise write it to disk and suppress this channel's retry.
	prev, hadPrev := state[channelURL]
	state[channelURL] = video.ID
	if err := p.state.Save(state); err != nil {
		if hadPrev {
			state[channelURL] = prev
		} else {
			delete(state, channelURL)
		}
		log.Error("failed to commit channel state", "error", err)
		return fmt.Errorf("commit state: %w", err)
	}

	if p.notifier == nil || !p.notifier.Enabled() {
		log.Debug("notification disabled, skipping")
		return nil
	}
	if err := p.notifier.Send(ctx, in, video.ID); err != nil {
		// Best effort only: the state is already committed.
		log.Warn("failed to send notification", "error", err)
		return nil
	}
	log.Info("notification sent", "title", in.Title)
	return nil
}
