package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ChannelMonitor/internal/domain"
)

type fakeSource struct {
	videos map[string]domain.Video
	errs   map[string]error
	order  []string
}

func (f *fakeSource) LatestVideo(_ context.Context, channelURL string) (domain.Video, error) {
	f.order = append(f.order, channelURL)
	if err := f.errs[channelURL]; err != nil {
		return domain.Video{}, err
	}
	return f.videos[channelURL], nil
}

type countingState struct {
	fakeState
	loads int
}

func (c *countingState) Load() (map[string]string, error) {
	c.loads++
	return c.fakeState.Load()
}

type schedulerFixture struct {
	source   *fakeSource
	state    *countingState
	insights *fakeInsights
	notifier *fakeNotifier
	sleeps   []time.Duration
	sched    *Scheduler
}

func newSchedulerFixture(channels []string) *schedulerFixture {
	f := &schedulerFixture{
		source:   &fakeSource{videos: map[string]domain.Video{}, errs: map[string]error{}},
		state:    &countingState{fakeState: fakeState{mapping: map[string]string{}}},
		insights: &fakeInsights{},
		notifier: &fakeNotifier{enabled: true},
	}

	pipeline := NewPipeline(PipelineDeps{
		Transcripts: &fakeTranscripts{text: "a transcript"},
		Summarizer:  &fakeSummarizer{text: summaryBody},
		Insights:    f.insights,
		Notifier:    f.notifier,
		State:       f.state,
	})

	f.sched = NewScheduler(SchedulerDeps{
		Source:        f.source,
		Pipeline:      pipeline,
		State:         f.state,
		Channels:      channels,
		CheckInterval: 3000 * time.Second,
		ChannelDelay:  2 * time.Second,
		Sleep: func(_ context.Context, d time.Duration) {
			f.sleeps = append(f.sleeps, d)
		},
		Now: func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) },
	})
	return f
}

func TestRunCycleProcessesNewVideo(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"channelA"})
	f.source.videos["channelA"] = domain.Video{ID: "abc12345", Title: "Test"}

	f.sched.RunCycle(context.Background())

	require.Len(t, f.insights.saved, 1)
	require.Equal(t, map[string]string{"channelA": "abc12345"}, f.state.mapping)
	require.Len(t, f.notifier.sent, 1)
}

func TestRunCycleShortIDIsIgnored(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"channelB"})
	f.source.videos["channelB"] = domain.Video{ID: "ab12", Title: "Garbage"}

	f.sched.RunCycle(context.Background())

	require.Empty(t, f.insights.saved, "no pipeline invocation for a malformed id")
	require.Zero(t, f.state.saves, "no state mutation for a malformed id")
}

func TestRunCycleUnchangedVideoIsSkipped(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"channelA"})
	f.state.mapping["channelA"] = "abc12345"
	f.source.videos["channelA"] = domain.Video{ID: "abc12345", Title: "Seen"}

	f.sched.RunCycle(context.Background())

	require.Empty(t, f.insights.saved)
	require.Zero(t, f.state.saves)
}

func TestRunCycleChannelFailureIsIsolated(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"broken", "healthy"})
	f.source.errs["broken"] = errors.New("listing unavailable")
	f.source.videos["healthy"] = domain.Video{ID: "xyz99999", Title: "Still Works"}

	f.sched.RunCycle(context.Background())

	require.Equal(t, []string{"broken", "healthy"}, f.source.order, "channels keep their configured order")
	require.Len(t, f.insights.saved, 1)
	require.Equal(t, "xyz99999", f.state.mapping["healthy"])
}

func TestRunCycleDelaysBetweenChannels(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"a", "b", "c"})

	f.sched.RunCycle(context.Background())

	require.Equal(t, []time.Duration{
		2 * time.Second, 2 * time.Second, 2 * time.Second,
	}, f.sleeps)
}

func TestRunCycleReloadsStateEachCycle(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"channelA"})

	f.sched.RunCycle(context.Background())
	f.sched.RunCycle(context.Background())

	require.Equal(t, 2, f.state.loads, "state is loaded fresh every cycle")
}

type flakyState struct {
	countingState
	failNextSaves int
}

func (f *flakyState) Save(mapping map[string]string) error {
	if f.failNextSaves > 0 {
		f.failNextSaves--
		return errors.New("transient write failure")
	}
	return f.countingState.Save(mapping)
}

func TestRunCycleFailedCommitDoesNotLeakIntoLaterCommits(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"chanA", "chanB"})
	f.source.videos["chanA"] = domain.Video{ID: "aaaaaaaaaaa", Title: "A"}
	f.source.videos["chanB"] = domain.Video{ID: "bbbbbbbbbbb", Title: "B"}

	// chanA's commit fails; chanB's succeeds and writes the map wholesale.
	flaky := &flakyState{countingState: countingState{fakeState: fakeState{mapping: map[string]string{}}}, failNextSaves: 1}
	pipeline := NewPipeline(PipelineDeps{
		Transcripts: &fakeTranscripts{text: "a transcript"},
		Summarizer:  &fakeSummarizer{text: summaryBody},
		Insights:    f.insights,
		Notifier:    f.notifier,
		State:       flaky,
	})
	f.sched.pipeline = pipeline
	f.sched.state = flaky

	f.sched.RunCycle(context.Background())

	require.Equal(t, map[string]string{"chanB": "bbbbbbbbbbb"}, flaky.mapping,
		"chanB's commit must not carry chanA's uncommitted entry to disk")

	f.sched.RunCycle(context.Background())

	require.Equal(t, "aaaaaaaaaaa", flaky.mapping["chanA"], "chanA is retried next cycle")
	require.Len(t, f.notifier.sent, 2, "chanB in cycle one, then chanA's retry in cycle two")
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture([]string{"channelA"})
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	f.sched.sleep = func(_ context.Context, d time.Duration) {
		if d == 3000*time.Second {
			cycles++
			if cycles == 2 {
				cancel()
			}
		}
	}

	err := f.sched.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, cycles)
	require.Equal(t, 2, f.state.loads)
}
