// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompts builds the system and user instructions sent to the
// language model for every generated section. All builders are pure: they
// do no I/O and never fail. Missing brand fields are replaced with
// fallback wording.
package prompts

import (
	"fmt"
	"strings"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/models"
)

// Limits applied while assembling prompts.
const (
	MaxKeywords        = 15
	TraitContextBudget = 3000
	FallbackAudience   = "general audience"
)

// Prompt is one model call's instructions.
type Prompt struct {
	System    string
	User      string
	JSON      bool   // expect a JSON document instead of markdown
	MaxTokens int    // completion budget
	Effort    string // reasoning effort for models that support it
}

// Request converts the prompt into a generation request.
func (p Prompt) Request() ai.Request {
	format := ai.FormatMarkdown
	if p.JSON {
		format = ai.FormatJSON
	}
	return ai.Request{
		System:    p.System,
		User:      p.User,
		Format:    format,
		MaxTokens: p.MaxTokens,
		Effort:    p.Effort,
	}
}

// writingRules are appended to every prose prompt.
const writingRules = `Writing rules:
- Use numerals for numbers above ten; spell out one to ten.
- Do not use em dashes. Use commas, colons or full stops instead.
- Keep sentences under 25 words.
- Never invent facts about the brand that are not in the brief.`

func systemFor(b models.BrandDetails) string {
	return fmt.Sprintf("You are a senior brand strategist and copy editor who writes practical, "+
		"specific brand style guides. Write in %s English. Output clean markdown only, "+
		"with no preamble and no closing remarks.", variantLabel(b.EnglishVariant))
}

// brandBrief renders the brand fields shared by most prompts.
func brandBrief(b models.BrandDetails) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Brand name: %s\n", orDefault(b.Name, "the brand"))
	fmt.Fprintf(&sb, "Description: %s\n", orDefault(b.Description, "not provided"))
	fmt.Fprintf(&sb, "Audience: %s\n", Audience(b))
	if kws := Keywords(b.Keywords); len(kws) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(kws, ", "))
	}
	if len(b.ProductsServices) > 0 {
		fmt.Fprintf(&sb, "Products and services: %s\n", strings.Join(b.ProductsServices, ", "))
	}
	fmt.Fprintf(&sb, "Formality: %s\n", formalityLabel(b.FormalityLevel))
	fmt.Fprintf(&sb, "Reading level: %s\n", readingLabel(b.ReadingLevel))
	if len(b.Traits) > 0 {
		fmt.Fprintf(&sb, "Voice traits: %s\n", strings.Join(traitNames(b.Traits), ", "))
	}
	return sb.String()
}

// Audience returns the audience text or the fallback literal.
func Audience(b models.BrandDetails) string {
	return orDefault(b.Audience, FallbackAudience)
}

// Keywords trims, drops empties, and caps the list at MaxKeywords.
func Keywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// TraitContext truncates previously generated trait text to the context
// budget, cutting at the last line break that fits.
func TraitContext(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= TraitContextBudget {
		return s
	}
	cut := string(r[:TraitContextBudget])
	if i := strings.LastIndex(cut, "\n"); i > TraitContextBudget/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

func traitNames(names []string) []string {
	traits := models.ResolveTraits(names)
	out := make([]string, len(traits))
	for i, t := range traits {
		out[i] = t.Name
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func variantLabel(v models.EnglishVariant) string {
	switch v {
	case models.EnglishBritish:
		return "British"
	case models.EnglishAustralian:
		return "Australian"
	case models.EnglishCanadian:
		return "Canadian"
	default:
		return "American"
	}
}

// VariantLabel is the display name of an English variant.
func VariantLabel(v models.EnglishVariant) string { return variantLabel(v) }

func formalityLabel(f models.FormalityLevel) string {
	switch f {
	case models.FormalityVeryCasual:
		return "very casual, like a text to a friend"
	case models.FormalityCasual:
		return "casual and relaxed"
	case models.FormalityFormal:
		return "formal and polished"
	case models.FormalityVeryFormal:
		return "very formal, suitable for legal or institutional settings"
	default:
		return "neutral, professional but approachable"
	}
}

// FormalityLabel is the display name of a formality level.
func FormalityLabel(f models.FormalityLevel) string { return formalityLabel(f) }

func readingLabel(r models.ReadingLevel) string {
	switch r {
	case models.ReadingGrade6to8:
		return "grades 6 to 8, plain and simple"
	case models.ReadingGrade13Plus:
		return "college level"
	case models.ReadingProfessional:
		return "professional and technical readers"
	default:
		return "grades 10 to 12, general adult readers"
	}
}

// ReadingLabel is the display name of a reading level.
func ReadingLabel(r models.ReadingLevel) string { return readingLabel(r) }
