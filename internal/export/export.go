// Package export turns a generated style guide into a downloadable file
// and, when object storage is configured, a time-limited share link.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"aistyleguide/internal/markdown"
	"aistyleguide/internal/render"
	"aistyleguide/internal/slug"
)

// ShareExpiry is how long a share link stays valid.
const ShareExpiry = 7 * 24 * time.Hour

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var (
	ErrUnsupportedFormat = errors.New("export: unsupported format")
	ErrEmptyContent      = errors.New("export: content is empty")
	ErrSharingDisabled   = errors.New("export: sharing is not configured")
)

// ParseFormat accepts "markdown", "md" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// File is a rendered export ready to be sent or stored.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Uploader stores objects and signs download URLs.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Exporter renders exports. The uploader may be nil.
type Exporter struct {
	renderer *render.Renderer
	uploader Uploader
	now      func() time.Time
}

// New creates an exporter.
func New(renderer *render.Renderer, uploader Uploader) *Exporter {
	return &Exporter{renderer: renderer, uploader: uploader, now: time.Now}
}

// CanShare reports whether share links are available.
func (e *Exporter) CanShare() bool {
	return e.uploader != nil
}

// Render produces the export file for content in the given format.
func (e *Exporter) Render(content string, format Format, title string) (*File, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Style Guide"
	}
	base := slug.Generate(title)
	if base == "" {
		base = "style-guide"
	}

	switch format {
	case FormatMarkdown:
		return &File{Name: base + ".md", ContentType: "text/markdown; charset=utf-8", Body: []byte(content)}, nil
	case FormatHTML:
		body, err := markdown.ToHTML(content)
		if err != nil {
			return nil, err
		}
		doc, err := e.renderer.Export(render.ExportData{
			Title:       title,
			Body:        template.HTML(body),
			GeneratedAt: e.now(),
		})
		if err != nil {
			return nil, err
		}
		return &File{Name: base + ".html", ContentType: "text/html; charset=utf-8", Body: doc}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Share renders an HTML export, uploads it under a random key and returns
// a presigned URL valid for ShareExpiry.
func (e *Exporter) Share(ctx context.Context, content, title string) (string, error) {
	if e.uploader == nil {
		return "", ErrSharingDisabled
	}
	f, err := e.Render(content, FormatHTML, title)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("shares/%s/%s", uuid.NewString(), f.Name)
	if err := e.uploader.Upload(ctx, key, f.ContentType, bytes.NewReader(f.Body), int64(len(f.Body))); err != nil {
		return "", fmt.Errorf("share export: %w", err)
	}
	url, err := e.uploader.PresignedURL(ctx, key, ShareExpiry)
	if err != nil {
		return "", fmt.Errorf("share export: %w", err)
	}
	return url, nil
}
