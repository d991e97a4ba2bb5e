// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders the markdown document templates. Templates are
// markdown files containing {{token}} placeholders. The built-in set is
// embedded in the binary; a directory on disk may override any of them.
package engine

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Template names shipped with the binary.
const (
	TemplatePreview  = "preview"
	TemplateCore     = "core"
	TemplateComplete = "complete"
	TemplateBlogPost = "blog_post"
)

// Placeholder replaces any token that has no generated value.
const Placeholder = "_Could not generate this section._"

//go:embed templates/*.md
var builtin embed.FS

var (
	tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)
	leftover     = regexp.MustCompile(`\{\{[^{}]*\}\}`)
)

// ErrTemplateNotFound is returned when no template exists for a name.
var ErrTemplateNotFound = errors.New("engine: template not found")

// Engine loads templates by name and substitutes generated sections into
// them. Loaded sources are kept in an L1 cache.
type Engine struct {
	dir      string // optional override directory, empty for built-ins only
	override fs.FS
	cache    *templateCache
}

// New creates an engine. When dir is non-empty, templates found there take
// precedence over the embedded ones.
func New(dir string) (*Engine, error) {
	e := &Engine{dir: dir, cache: newTemplateCache()}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template dir %s is not a directory", dir)
		}
		e.override = os.DirFS(dir)
	}
	return e, nil
}

// Load returns the template source for name.
func (e *Engine) Load(name string) (string, error) {
	if src, ok := e.cache.get(name); ok {
		return src, nil
	}

	file := name + ".md"
	var data []byte
	var err error
	if e.override != nil {
		data, err = fs.ReadFile(e.override, file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	if data == nil {
		data, err = builtin.ReadFile("templates/" + file)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
	}

	src := string(data)
	e.cache.put(name, src)
	return src, nil
}

// Names lists the built-in template names.
func (e *Engine) Names() []string {
	files, _ := fs.Glob(builtin, "templates/*.md")
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), ".md"))
	}
	return names
}

// Render loads the named template and substitutes values into it.
func (e *Engine) Render(name string, values map[string]string) (string, error) {
	src, err := e.Load(name)
	if err != nil {
		return "", err
	}
	return Substitute(src, values), nil
}

// Tokens lists the distinct token names used by the named template.
func (e *Engine) Tokens(name string) ([]string, error) {
	src, err := e.Load(name)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

// Invalidate drops one template from the cache.
func (e *Engine) Invalidate(name string) { e.cache.invalidate(name) }

// InvalidateAll clears the template cache.
func (e *Engine) InvalidateAll() { e.cache.invalidateAll() }

// Substitute replaces every {{token}} in src in a single pass. Tokens
// without a value become Placeholder. Values are never rescanned for
// tokens, and any brace pairs left over are neutralised, so the result
// never contains "{{" or "}}".
func Substitute(src string, values map[string]string) string {
	out := tokenPattern.ReplaceAllStringFunc(src, func(m string) string {
		name := tokenPattern.FindStringSubmatch(m)[1]
		v, ok := values[name]
		if !ok {
			return Placeholder
		}
		return scrubBraces(v)
	})
	out = leftover.ReplaceAllString(out, Placeholder)
	return scrubBraces(out)
}

func scrubBraces(s string) string {
	for strings.Contains(s, "{{") || strings.Contains(s, "}}") {
		s = strings.ReplaceAll(s, "{{", "{")
		s = strings.ReplaceAll(s, "}}", "}")
	}
	return s
}

// Watch invalidates cached templates whenever a file in the override
// directory changes. It blocks until ctx is cancelled. Without an override
// directory it returns immediately.
func (e *Engine) Watch(ctx context.Context) error {
	if e.dir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(e.dir); err != nil {
		return fmt.Errorf("watch %s: %w", e.dir, err)
	}
	slog.Info("watching templates for changes", "dir", e.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			e.handleEvent(event)
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("template watcher error", "error", werr)
		}
	}
}

func (e *Engine) handleEvent(event fsnotify.Event) {
	if filepath.Ext(event.Name) != ".md" {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	name := strings.TrimSuffix(filepath.Base(event.Name), ".md")
	e.Invalidate(name)
	slog.Info("template reloaded", "name", name, "op", event.Op.String())
}
