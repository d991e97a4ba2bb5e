package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values map[string]string
		want   string
	}{
		{
			name:   "all tokens",
			src:    "# {{brand_name}}\n{{traits}}",
			values: map[string]string{"brand_name": "Nike", "traits": "### Direct"},
			want:   "# Nike\n### Direct",
		},
		{
			name:   "repeated token replaced globally",
			src:    "{{brand_name}} and {{ brand_name }}",
			values: map[string]string{"brand_name": "Acme"},
			want:   "Acme and Acme",
		},
		{
			name:   "missing value",
			src:    "Rules: {{rules}}",
			values: map[string]string{},
			want:   "Rules: " + Placeholder,
		},
		{
			name:   "malformed token",
			src:    "x {{not a token}} y",
			values: nil,
			want:   "x " + Placeholder + " y",
		},
		{
			name:   "value with braces is not rescanned",
			src:    "{{a}}",
			values: map[string]string{"a": "{{b}} and }}}"},
			want:   "{b} and }",
		},
		{
			name:   "explicit empty value",
			src:    "[{{a}}]",
			values: map[string]string{"a": ""},
			want:   "[]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.src, tt.values))
		})
	}
}

// TestRenderBuiltinsHaveNoBraces renders every embedded template with no
// values at all and with hostile values.
func TestRenderBuiltinsHaveNoBraces(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	hostile := map[string]string{
		"brand_name": "{{brand_name}}",
		"traits":     "}} {{",
		"rules":      "{{{rules}}}",
	}
	for _, name := range []string{TemplatePreview, TemplateCore, TemplateComplete, TemplateBlogPost} {
		for _, values := range []map[string]string{nil, hostile} {
			out, err := e.Render(name, values)
			require.NoError(t, err, name)
			assert.NotContains(t, out, "{{", name)
			assert.NotContains(t, out, "}}", name)
		}
	}
}

func TestTokens(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	tokens, err := e.Tokens(TemplateCore)
	require.NoError(t, err)
	for _, want := range []string{"brand_name", "traits", "rules", "audience", "keywords", "before_after"} {
		assert.Contains(t, tokens, want)
	}

	previewTokens, err := e.Tokens(TemplatePreview)
	require.NoError(t, err)
	assert.NotContains(t, previewTokens, "rules")
}

func TestLoadUnknownTemplate(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	_, err = e.Load("missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preview.md"), []byte("custom {{brand_name}}"), 0o644))

	e, err := New(dir)
	require.NoError(t, err)

	out, err := e.Render(TemplatePreview, map[string]string{"brand_name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "custom Acme", out)

	// Templates missing from the directory fall back to the embedded set.
	core, err := e.Load(TemplateCore)
	require.NoError(t, err)
	assert.Contains(t, core, "{{rules}}")
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.md")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	e, err := New(dir)
	require.NoError(t, err)

	src, err := e.Load(TemplatePreview)
	require.NoError(t, err)
	assert.Equal(t, "v1", src)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	src, _ = e.Load(TemplatePreview)
	assert.Equal(t, "v1", src, "cached copy should be served")

	e.Invalidate(TemplatePreview)
	src, _ = e.Load(TemplatePreview)
	assert.Equal(t, "v2", src)

	e.InvalidateAll()
	assert.Equal(t, 0, e.cache.len())
}

func TestWatchReloadsChangedTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.md")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	e, err := New(dir)
	require.NoError(t, err)

	src, err := e.Load(TemplateCore)
	require.NoError(t, err)
	require.Equal(t, "first", src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher a moment to register the directory, then keep
	// rewriting until the change is observed.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("second"), 0o644)
		got, err := e.Load(TemplateCore)
		return err == nil && strings.TrimSpace(got) == "second"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchWithoutDirectoryReturns(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	assert.NoError(t, e.Watch(context.Background()))
}

func TestNamesListsBuiltins(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	names := e.Names()
	for _, want := range []string{TemplatePreview, TemplateCore, TemplateComplete, TemplateBlogPost} {
		assert.Contains(t, names, want)
	}
}
