package app

import (
	"context"
	"log/slog"

	"ChannelMonitor/internal/config"
	"ChannelMonitor/internal/infrastructure/email"
	"ChannelMonitor/internal/infrastructure/gemini"
	"ChannelMonitor/internal/infrastructure/youtube"
	"ChannelMonitor/internal/insight"
	"ChannelMonitor/internal/logging"
	"ChannelMonitor/internal/state"
	"ChannelMonitor/internal/usecase"
)

// Application wires configuration to use cases and the polling loop.
type Application struct {
	cfg       config.Config
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	provider := youtube.NewProvider(nil)
	stateStore := state.NewFileStore(cfg.Storage.StateFile)
	notifier := email.NewNotifier(cfg.Email)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Transcripts: provider,
		Summarizer:  gemini.NewClient(cfg.Gemini),
		Insights:    insight.NewFileStore(cfg.Storage.OutputDir),
		Notifier:    notifier,
		State:       stateStore,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	scheduler := usecase.NewScheduler(usecase.SchedulerDeps{
		Source:        provider,
		Pipeline:      pipeline,
		State:         stateStore,
		Channels:      cfg.Channels,
		CheckInterval: cfg.Scheduler.CheckInterval(),
		ChannelDelay:  cfg.Scheduler.ChannelDelay(),
		Logger:        baseLogger.With("component", "scheduler"),
	})

	if !notifier.Enabled() {
		baseLogger.Info("email notifications disabled, missing credentials or recipients")
	}

	return &Application{cfg: cfg, scheduler: scheduler}
}

// Run blocks on the polling loop until the context ends.
func (a *Application) Run(ctx context.Context) error {
	return a.scheduler.Run(ctx)
}
