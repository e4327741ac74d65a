package insight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/ports"
)

const artifactPrefix = "insight_"

// FileStore writes one markdown artifact per generated insight under a fixed
// output directory.
type FileStore struct {
	dir string
}

var _ ports.InsightStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir; the directory is created lazily
// on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save renders the insight to markdown and writes it under the output
// directory, named from the sanitized title. Repeated titles overwrite.
func (s *FileStore) Save(in domain.Insight) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, artifactPrefix+Slug(in.Title)+".md")

	var b strings.Builder
	fmt.Fprintf(&b, "# Insights: %s\n\n", in.Title)
	fmt.Fprintf(&b, "**Date:** %s\n\n", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(in.Body)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write insight file: %w", err)
	}
	return path, nil
}

// Slug reduces a title to a filesystem-safe name: letters, digits, hyphens
// and underscores survive; spaces collapse to underscores; the rest is
// dropped.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}
