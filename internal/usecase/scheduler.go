package usecase

import (
	"context"
	"log/slog"
	"time"

	"ChannelMonitor/internal/detect"
	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/ports"
)

// SleepFunc blocks for the given duration or until the context ends.
type SleepFunc func(ctx context.Context, d time.Duration)

// SchedulerDeps wires the polling loop.
type SchedulerDeps struct {
	Source        ports.VideoSource
	Pipeline      *Pipeline
	State         ports.StateStore
	Channels      []string
	CheckInterval time.Duration
	ChannelDelay  time.Duration
	Logger        *slog.Logger
	Sleep         SleepFunc
	Now           func() time.Time
}

// Scheduler drives the endless polling cycle over all configured channels.
// Channels are processed strictly in order, one at a time; a channel's
// failure never interrupts the rest of the cycle.
type Scheduler struct {
	source        ports.VideoSource
	pipeline      *Pipeline
	state         ports.StateStore
	channels      []string
	checkInterval time.Duration
	channelDelay  time.Duration
	logger        *slog.Logger
	sleep         SleepFunc
	now           func() time.Time
}

// NewScheduler builds the loop; clock and sleep are injectable for tests.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Scheduler{
		source:        deps.Source,
		pipeline:      deps.Pipeline,
		state:         deps.State,
		channels:      deps.Channels,
		checkInterval: deps.CheckInterval,
		channelDelay:  deps.ChannelDelay,
		logger:        deps.Logger,
		sleep:         deps.Sleep,
		now:           deps.Now,
	}
}

// Run polls forever until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("monitor started", "channels", len(s.channels))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.RunCycle(ctx)

		s.logger.Info("cycle complete", "wait", s.checkInterval)
		s.sleep(ctx, s.checkInterval)
	}
}

// RunCycle performs one full pass over all channels. State is loaded fresh
// each cycle so out-of-band edits to the state file take effect.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.logger.Info("starting check cycle", "at", s.now().Format("15:04:05"))

	state, err := s.state.Load()
	if err != nil {
		s.logger.Error("failed to load channel state", "error", err)
		state = map[string]string{}
	}

	for _, channel := range s.channels {
		if ctx.Err() != nil {
			return
		}

		s.checkChannel(ctx, channel, state)
		s.sleep(ctx, s.channelDelay)
	}
}

func (s *Scheduler) checkChannel(ctx context.Context, channel string, state map[string]string) {
	log := s.logger.With("channel", channel)
	log.Debug("checking channel")

	var fetched *domain.Video
	video, err := s.source.LatestVideo(ctx, channel)
	if err != nil {
		log.Warn("could not retrieve video list", "error", err)
	} else {
		fetched = &video
	}

	decision := detect.Evaluate(fetched, state[channel])
	switch decision.Outcome {
	case detect.OutcomeUnavailable:
		// Already reported above.
	case detect.OutcomeInvalidID:
		log.Debug("ignoring malformed video id", "id", video.ID)
	case detect.OutcomeUnchanged:
		log.Debug("no new videos")
	case detect.OutcomeNew:
		log.Info("new video detected", "id", decision.Video.ID, "title", decision.Video.Title)
		if err := s.pipeline.Process(ctx, channel, decision.Video, state); err != nil {
			log.Warn("video processing incomplete, will retry next cycle", "error", err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
