package prompts

import (
	"fmt"
	"strings"

	"aistyleguide/internal/models"
)

// Research note limits for the outline prompt.
const (
	MaxResearchNotes    = 5
	MaxResearchNoteText = 1500
)

// Article length targets embedded in the article prompt. The model is asked
// to honour them; nothing verifies compliance.
const (
	ArticleMinWords = 1500
	ArticleMaxWords = 2500
)

const blogSystem = "You are an expert content marketer writing for AI Style Guide, a product that " +
	"generates brand voice and writing style guides. You write practical, well-structured articles " +
	"for marketers and founders."

// WantsTemplate reports whether a blog topic asks for a template.
func WantsTemplate(topic string) bool {
	return strings.Contains(strings.ToLower(topic), "template")
}

// Outline asks for a structured article plan as JSON.
func Outline(req models.BlogRequest, notes []models.ResearchNote) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan a blog article on the topic: %q.\n", req.Topic)
	if kws := Keywords(req.Keywords); len(kws) > 0 {
		fmt.Fprintf(&sb, "Target keywords: %s\n", strings.Join(kws, ", "))
	}
	if req.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", req.Category)
	}
	if WantsTemplate(req.Topic) {
		sb.WriteString("\nThe reader wants a ready-to-use template. Set includes_template to true, ")
		sb.WriteString("use the word \"template\" in the title, and plan a section containing the template itself.\n")
	}
	if len(notes) > 0 {
		sb.WriteString("\nResearch notes (cite them in research_excerpts with their source_url):\n")
		for i, n := range notes {
			if i == MaxResearchNotes {
				break
			}
			fmt.Fprintf(&sb, "\nSource: %s (%s)\n%s\n", n.Title, n.URL, clip(n.Markdown, MaxResearchNoteText))
		}
	}
	sb.WriteString("\nPlan between 5 and 8 sections, each with 3 to 5 key points.\n\n")
	sb.WriteString(jsonInstruction(SchemaOutline))
	return Prompt{System: blogSystem + " " + jsonSystem, User: sb.String(), JSON: true, MaxTokens: 1500, Effort: "low"}
}

// Article asks for the full article from an outline as JSON.
func Article(outline models.Outline, req models.BlogRequest) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write the full blog article titled %q following this outline.\n\n", outline.Title)
	fmt.Fprintf(&sb, "Format: %s\n", orDefault(outline.Format, "guide"))
	for i, s := range outline.Sections {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, s.Heading)
		for _, p := range s.KeyPoints {
			fmt.Fprintf(&sb, "   - %s\n", p)
		}
	}
	if len(outline.ResearchExcerpts) > 0 {
		sb.WriteString("\nWeave in these sources and link to them inline:\n")
		for _, ex := range outline.ResearchExcerpts {
			fmt.Fprintf(&sb, "- %s: %s\n", ex.SourceURL, ex.Excerpt)
		}
	}
	if kws := Keywords(req.Keywords); len(kws) > 0 {
		fmt.Fprintf(&sb, "\nUse these keywords naturally: %s\n", strings.Join(kws, ", "))
	}
	if outline.IncludesTemplate {
		sb.WriteString("\nInclude a complete, copy-ready template in its own section.\n")
	}
	fmt.Fprintf(&sb, "\nRequirements:\n- Between %d and %d words.\n", ArticleMinWords, ArticleMaxWords)
	sb.WriteString("- Use ## for section headings and ### for subsections. No H1.\n")
	sb.WriteString("- Open with a short hook paragraph and close with a clear call to action.\n")
	sb.WriteString("- The excerpt is one or two sentences, under 300 characters.\n\n")
	sb.WriteString(writingRules)
	sb.WriteString("\n\n")
	sb.WriteString(jsonInstruction(SchemaArticle))
	return Prompt{System: blogSystem + " " + jsonSystem, User: sb.String(), JSON: true, MaxTokens: 6000, Effort: "medium"}
}
