package email

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/insight"
)

const (
	watchURLFormat     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLFormat = "https://img.youtube.com/vi/%s/maxresdefault.jpg"
)

var boldExpr = regexp.MustCompile(`\*\*([^*]+)\*\*`)

var htmlTemplate = template.Must(template.New("insight").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: 'Segoe UI', Tahoma, sans-serif; background: #f0f2f5; margin: 0; padding: 20px; }
.container { max-width: 650px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 8px 24px rgba(0,0,0,0.15); }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 24px; text-align: center; }
.header h1 { margin: 0; font-size: 24px; }
.thumbnail { width: 100%; display: block; }
.content { padding: 32px 28px; }
.title { font-size: 22px; font-weight: 700; color: #2d3748; margin-bottom: 18px; }
.section-title { font-size: 17px; font-weight: 700; color: #667eea; margin: 24px 0 10px; }
.summary { font-size: 15px; line-height: 1.7; color: #4a5568; background: #f7fafc; padding: 16px; border-radius: 8px; border-left: 4px solid #667eea; }
.insights { list-style: none; padding: 0; margin: 0; }
.insights li { font-size: 14px; line-height: 1.6; color: #4a5568; padding: 12px 16px; margin-bottom: 8px; background: #f7fafc; border-radius: 8px; border-left: 4px solid #48bb78; }
.notes { background: #fff5f5; padding: 16px; border-radius: 8px; border-left: 4px solid #fc8181; font-size: 14px; color: #4a5568; }
.watch { display: inline-block; background: #667eea; color: white; padding: 12px 32px; text-decoration: none; border-radius: 24px; font-weight: 700; margin-top: 24px; }
.footer { background: #2d3748; color: #a0aec0; padding: 20px; text-align: center; font-size: 12px; }
.footer a { color: #667eea; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>YouTube Insights Report</h1></div>
  <a href="{{.WatchURL}}"><img src="{{.ThumbnailURL}}" alt="Video thumbnail" class="thumbnail"/></a>
  <div class="content">
    <div class="title">{{.Title}}</div>
    {{if .Summary}}
    <div class="section-title">Summary</div>
    <div class="summary">{{.Summary}}</div>
    {{end}}
    {{if .Insights}}
    <div class="section-title">Key Insights &amp; Takeaways</div>
    <ul class="insights">{{range .Insights}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
    {{if .Notes}}
    <div class="section-title">Additional Notes</div>
    <div class="notes">{{.Notes}}</div>
    {{end}}
    <div style="text-align: center;"><a href="{{.WatchURL}}" class="watch">Watch Full Video</a></div>
  </div>
  <div class="footer">
    <p>Generated by Channel Monitor on {{.Generated}}</p>
    <p>This is an automated summary. <a href="{{.WatchURL}}">Watch the full video</a> for complete details.</p>
  </div>
</div>
</body>
</html>
`))

type templateData struct {
	Title        string
	WatchURL     string
	ThumbnailURL string
	Summary      template.HTML
	Insights     []template.HTML
	Notes        template.HTML
	Generated    string
}

// renderHTML builds the rich body from the parsed insight sections.
func renderHTML(in domain.Insight, videoID string) (string, error) {
	sections := insight.ParseSections(in.Body)

	data := templateData{
		Title:        in.Title,
		WatchURL:     fmt.Sprintf(watchURLFormat, videoID),
		ThumbnailURL: fmt.Sprintf(thumbnailURLFormat, videoID),
		Summary:      emphasize(sections.Summary),
		Notes:        emphasize(sections.Notes),
		Generated:    in.GeneratedAt.Format("January 2, 2006 at 3:04 PM"),
	}
	for _, item := range sections.Insights {
		data.Insights = append(data.Insights, emphasize(item))
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderPlain is the fallback body carrying the raw summary text.
func renderPlain(in domain.Insight, videoID string) string {
	var b strings.Builder
	b.WriteString("YouTube Insights Report\n")
	b.WriteString("=======================\n\n")
	fmt.Fprintf(&b, "Video: %s\n", in.Title)
	fmt.Fprintf(&b, "Watch: "+watchURLFormat+"\n\n", videoID)
	b.WriteString(in.Body)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Generated on %s\n", in.GeneratedAt.Format("January 2, 2006 at 3:04 PM"))
	return b.String()
}

// emphasize escapes the text, then upgrades **bold** markers to <strong>.
// Escaping first keeps model output from injecting markup.
func emphasize(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(boldExpr.ReplaceAllString(escaped, "<strong>$1</strong>"))
}
