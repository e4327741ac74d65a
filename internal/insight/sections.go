package insight

import (
	"strings"

	"ChannelMonitor/internal/domain"
)

var bulletGlyphs = []string{"*", "-", "•"}

// ParseSections splits generated summary text into its three logical zones
// using case-insensitive keyword matching on section headers. Lines before
// the first recognized header are discarded. The matching rules are
// deliberately the only place that knows the model's output shape; swap this
// function to change the heuristic.
func ParseSections(text string) domain.InsightSections {
	var (
		sections domain.InsightSections
		summary  strings.Builder
		notes    strings.Builder
		current  = ""
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "summary:"):
			current = "summary"
			continue
		case strings.Contains(lower, "key insights") || strings.Contains(lower, "takeaways"):
			current = "insights"
			continue
		case strings.Contains(lower, "optional notes") || strings.Contains(lower, "notes:"):
			current = "notes"
			continue
		}

		switch current {
		case "summary":
			summary.WriteString(line)
			summary.WriteString(" ")
		case "insights":
			if item, ok := stripBullet(line); ok {
				sections.Insights = append(sections.Insights, item)
			}
		case "notes":
			notes.WriteString(line)
			notes.WriteString(" ")
		}
	}

	sections.Summary = strings.TrimSpace(summary.String())
	sections.Notes = strings.TrimSpace(notes.String())
	return sections
}

func stripBullet(line string) (string, bool) {
	for _, glyph := range bulletGlyphs {
		if strings.HasPrefix(line, glyph) {
			return strings.TrimSpace(strings.TrimLeft(line, "*-• ")), true
		}
	}
	return "", false
}
