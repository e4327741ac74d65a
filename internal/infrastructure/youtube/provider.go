package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ChannelMonitor/internal/detect"
	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/ports"
	"ChannelMonitor/internal/subtitle"
)

const (
	watchURLFormat = "https://www.youtube.com/watch?v=%s"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) ChannelMonitor/1.0"

	// defaultLookahead bounds how many listing entries are inspected while
	// searching for a playable video.
	defaultLookahead = 5

	maxPageBytes = 8 << 20
)

// ErrNoVideo signals an empty listing or one holding only channel references.
var ErrNoVideo = errors.New("youtube: no playable video in listing")

// ErrNoCaptions signals a video without any caption track.
var ErrNoCaptions = errors.New("youtube: no caption track available")

var (
	videoEntryExpr   = regexp.MustCompile(`(?s)"videoId":"([A-Za-z0-9_-]+)".{0,400}?"title":\{"runs":\[\{"text":"((?:[^"\\]|\\.)*)"`)
	captionTrackExpr = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"((?:[^"\\]|\\.)*)"`)
)

// Provider scrapes channel listings and caption tracks over plain HTTP.
type Provider struct {
	client     *http.Client
	normalizer *subtitle.Normalizer
	lookahead  int

	// baseURL overrides the public watch endpoint in tests.
	baseURL string
}

var (
	_ ports.VideoSource        = (*Provider)(nil)
	_ ports.TranscriptProvider = (*Provider)(nil)
)

// NewProvider wires an HTTP client; lookahead defaults to 5 listing entries.
func NewProvider(client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Provider{
		client:     client,
		normalizer: subtitle.NewNormalizer(),
		lookahead:  defaultLookahead,
	}
}

// LatestVideo fetches the channel's videos tab and returns the newest
// playable entry, skipping embedded channel references. Returns ErrNoVideo
// when no valid entry exists within the lookahead window.
func (p *Provider) LatestVideo(ctx context.Context, channelURL string) (domain.Video, error) {
	page, err := p.fetchPage(ctx, videosTabURL(channelURL))
	if err != nil {
		return domain.Video{}, fmt.Errorf("fetch channel listing: %w", err)
	}

	entries := extractListing(page, p.lookahead)
	for _, entry := range entries {
		if detect.IsChannelReference(entry.ID) {
			continue
		}
		return entry, nil
	}
	return domain.Video{}, ErrNoVideo
}

// Transcript downloads the video's caption track and returns it normalized
// to plain text. Returns ErrNoCaptions when the watch page advertises no
// track at all; an empty but present track yields an empty string.
func (p *Provider) Transcript(ctx context.Context, videoID string) (string, error) {
	page, err := p.fetchPage(ctx, p.watchURL(videoID))
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}

	trackURL, ok := captionTrackURL(page)
	if !ok {
		return "", ErrNoCaptions
	}

	payload, err := p.fetchRaw(ctx, trackURL)
	if err != nil {
		return "", fmt.Errorf("fetch caption track: %w", err)
	}

	return p.normalizer.Normalize(strings.NewReader(payload))
}

func (p *Provider) watchURL(videoID string) string {
	if p.baseURL != "" {
		return p.baseURL + "/watch?v=" + videoID
	}
	return fmt.Sprintf(watchURLFormat, videoID)
}

func (p *Provider) fetchPage(ctx context.Context, pageURL string) (string, error) {
	doc, raw, err := p.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}

	// The listing and player payloads live inside inline script tags; the
	// surrounding HTML carries nothing useful.
	var blob strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.Contains(text, "ytInitialData") || strings.Contains(text, "ytInitialPlayerResponse") {
			blob.WriteString(text)
		}
	})
	if blob.Len() == 0 {
		return raw, nil
	}
	return blob.String(), nil
}

func (p *Provider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	raw, err := p.fetchRaw(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("parse document: %w", err)
	}
	return doc, raw, nil
}

func (p *Provider) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}

// videosTabURL forces the /videos tab so the newest uploads come first.
func videosTabURL(channelURL string) string {
	if strings.HasSuffix(channelURL, "/videos") {
		return channelURL
	}
	return strings.TrimRight(channelURL, "/") + "/videos"
}

// extractListing pulls (videoId, title) pairs out of the listing payload,
// first occurrence wins, bounded by the lookahead window.
func extractListing(page string, lookahead int) []domain.Video {
	var (
		videos []domain.Video
		seen   = map[string]struct{}{}
	)

	for _, match := range videoEntryExpr.FindAllStringSubmatch(page, -1) {
		id := match[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		videos = append(videos, domain.Video{ID: id, Title: unescapeJSON(match[2])})
		if len(videos) >= lookahead {
			break
		}
	}
	return videos
}

// captionTrackURL finds the first caption track advertised by the player
// payload and appends the VTT format selector.
func captionTrackURL(page string) (string, bool) {
	match := captionTrackExpr.FindStringSubmatch(page)
	if match == nil {
		return "", false
	}

	trackURL := unescapeJSON(match[1])
	if trackURL == "" {
		return "", false
	}
	if strings.Contains(trackURL, "?") {
		return trackURL + "&fmt=vtt", true
	}
	return trackURL + "?fmt=vtt", true
}

func unescapeJSON(s string) string {
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}
