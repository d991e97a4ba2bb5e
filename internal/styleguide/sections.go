package styleguide

import (
	"fmt"
	"strings"
	"sync"

	"aistyleguide/internal/models"
	"aistyleguide/internal/prompts"
)

// sectionSet collects concurrently generated sections. Empty sections are
// left out so the renderer substitutes its placeholder.
type sectionSet struct {
	mu     sync.Mutex
	values map[string]string
}

func newSectionSet() *sectionSet {
	return &sectionSet{values: map[string]string{}}
}

func (s *sectionSet) set(key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

func (s *sectionSet) merge(into map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.values {
		into[k] = v
	}
}

func renderWordList(wl models.WordList) string {
	var sb strings.Builder
	writeEntries(&sb, "Words to use", wl.Use)
	writeEntries(&sb, "Words to avoid", wl.Avoid)
	return strings.TrimSpace(sb.String())
}

func writeEntries(sb *strings.Builder, heading string, entries []models.WordEntry) {
	var lines []string
	for _, e := range entries {
		term := strings.TrimSpace(e.Term)
		if term == "" {
			continue
		}
		if note := strings.TrimSpace(e.Note); note != "" {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", term, note))
		} else {
			lines = append(lines, fmt.Sprintf("- **%s**", term))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(sb, "### %s\n\n%s\n\n", heading, strings.Join(lines, "\n"))
}

// keywordFallback lists the brand's own keywords when the word list call
// fails, or returns "" when there are none.
func keywordFallback(b models.BrandDetails) string {
	kws := prompts.Keywords(b.Keywords)
	if len(kws) == 0 {
		return ""
	}
	entries := make([]models.WordEntry, len(kws))
	for i, k := range kws {
		entries[i] = models.WordEntry{Term: k}
	}
	return renderWordList(models.WordList{Use: entries})
}
