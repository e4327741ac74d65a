package domain

import "time"

// Video is the latest item fetched from a channel's listing.
type Video struct {
	ID    string
	Title string
}

// Insight is the generated analysis for a single video.
type Insight struct {
	Title       string
	GeneratedAt time.Time
	Body        string
}

// InsightSections is the summary body split into its logical zones.
type InsightSections struct {
	Summary  string
	Insights []string
	Notes    string
}

// Empty reports whether section parsing recognized nothing at all.
func (s InsightSections) Empty() bool {
	return s.Summary == "" && len(s.Insights) == 0 && s.Notes == ""
}
