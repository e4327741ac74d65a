package insight

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ChannelMonitor/internal/domain"
)

func TestFileStoreSave(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "insights")
	store := NewFileStore(dir)

	path, err := store.Save(domain.Insight{
		Title:       "Go Scheduler Deep-Dive",
		GeneratedAt: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
		Body:        "Summary:\nAll about Ps and Ms.",
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "insight_Go_Scheduler_Deep-Dive.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	require.Contains(t, content, "# Insights: Go Scheduler Deep-Dive")
	require.Contains(t, content, "**Date:** 2026-03-14 09:30:00")
	require.Contains(t, content, "All about Ps and Ms.")
}

func TestFileStoreOverwritesSameTitle(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	in := domain.Insight{Title: "Repeat", GeneratedAt: time.Now(), Body: "first"}

	_, err := store.Save(in)
	require.NoError(t, err)

	in.Body = "second"
	path, err := store.Save(in)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "second")
	require.NotContains(t, string(raw), "first")
}
