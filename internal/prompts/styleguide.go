package prompts

import (
	"fmt"
	"strings"

	"aistyleguide/internal/models"
)

// Traits asks for one section per selected voice trait.
func Traits(b models.BrandDetails) Prompt {
	var sb strings.Builder
	sb.WriteString("Write the brand voice section of a style guide.\n\n")
	sb.WriteString(brandBrief(b))
	sb.WriteString("\nFor each trait below write a section in this exact shape:\n\n")
	sb.WriteString("### <Trait name>\n")
	sb.WriteString("One or two sentences on what this trait means for this brand.\n\n")
	sb.WriteString("What it means:\n")
	sb.WriteString("✅ three short bullet-free lines, each starting with ✅\n\n")
	sb.WriteString("What it doesn't mean:\n")
	sb.WriteString("❌ three short lines, each starting with ❌\n\n")

	sb.WriteString("Traits:\n")
	for _, t := range models.ResolveTraits(b.Traits) {
		if t.Custom {
			fmt.Fprintf(&sb, "- %s (custom trait, define it from the brand description)\n", t.Name)
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s Do: %s Don't: %s\n", t.Name, t.Definition, t.Do, t.Dont)
	}
	sb.WriteString("\nUse the trait names exactly as given as the ### headings and use no other headings. Write nothing else.\n\n")
	sb.WriteString(writingRules)

	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: 2000, Effort: "low"}
}

// Rules asks for one rule per category. traitContext is the generated
// trait text, truncated to the context budget.
func Rules(b models.BrandDetails, categories []string, traitContext string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d writing rules for this brand's style guide, one per category, in the order given.\n\n", len(categories))
	sb.WriteString(brandBrief(b))
	if tc := TraitContext(traitContext); tc != "" {
		sb.WriteString("\nThe brand voice is defined as:\n")
		sb.WriteString(tc)
		sb.WriteString("\n")
	}
	sb.WriteString("\nCategories:\n")
	for i, c := range categories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
	}
	sb.WriteString("\nFor every category use exactly this shape:\n\n")
	sb.WriteString("### <Category>\n")
	sb.WriteString("The rule in one or two sentences. Front-load the reason and reference one of the named traits.\n")
	sb.WriteString("✅ one correct example in the brand's voice\n")
	sb.WriteString("❌ one incorrect example\n\n")
	sb.WriteString("Each category must have exactly one ✅ line and exactly one ❌ line. Do not add any other headings.\n\n")
	sb.WriteString(writingRules)

	budget := 250*len(categories) + 500
	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: budget, Effort: "medium"}
}

// AudienceSummary asks for a short audience profile.
func AudienceSummary(b models.BrandDetails) Prompt {
	var sb strings.Builder
	sb.WriteString("Write the audience section of a style guide.\n\n")
	sb.WriteString(brandBrief(b))
	sb.WriteString("\nDescribe the primary audience in one paragraph, then list what they care about ")
	sb.WriteString("and how the brand should speak to them, as two short lists under ### headings ")
	sb.WriteString("named \"What they care about\" and \"How to speak to them\".\n\n")
	sb.WriteString(writingRules)
	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: 800, Effort: "low"}
}

// Overview asks for the brand overview paragraph.
func Overview(b models.BrandDetails) Prompt {
	var sb strings.Builder
	sb.WriteString("Write a two-paragraph brand overview for the start of a style guide.\n\n")
	sb.WriteString(brandBrief(b))
	sb.WriteString("\nNo headings. Plain paragraphs only.\n\n")
	sb.WriteString(writingRules)
	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: 500, Effort: "low"}
}

// WordList asks for preferred and avoided terms as JSON.
func WordList(b models.BrandDetails) Prompt {
	var sb strings.Builder
	sb.WriteString("Build the word list for this brand's style guide.\n\n")
	sb.WriteString(brandBrief(b))
	sb.WriteString("\nReturn 10 to 15 terms the brand should use and 8 to 12 terms to avoid, ")
	sb.WriteString("each with a short note. Prefer the brand's own keywords where they fit.\n\n")
	sb.WriteString(jsonInstruction(SchemaWordList))
	return Prompt{System: jsonSystem, User: sb.String(), JSON: true, MaxTokens: 1200, Effort: "low"}
}

// BeforeAfter asks for rewritten examples that show the voice in action.
func BeforeAfter(b models.BrandDetails, traitContext string) Prompt {
	var sb strings.Builder
	sb.WriteString("Write before and after examples for this brand's style guide.\n\n")
	sb.WriteString(brandBrief(b))
	if tc := TraitContext(traitContext); tc != "" {
		sb.WriteString("\nThe brand voice is defined as:\n")
		sb.WriteString(tc)
		sb.WriteString("\n")
	}
	sb.WriteString("\nWrite 4 examples covering a headline, an email, an error message and a social post. ")
	sb.WriteString("For each use a ### heading naming the channel, then a line starting with \"Before →\" ")
	sb.WriteString("holding generic copy, a line starting with \"After →\" holding the on-brand rewrite, ")
	sb.WriteString("and one sentence naming the trait that drove the change.\n\n")
	sb.WriteString(writingRules)
	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: 1200, Effort: "low"}
}

// Rewrite asks for a single section to be rewritten per the user's note.
func Rewrite(b models.BrandDetails, section, instruction string) Prompt {
	var sb strings.Builder
	sb.WriteString("Rewrite the following section of a brand style guide.\n\n")
	sb.WriteString(brandBrief(b))
	sb.WriteString("\nInstruction: ")
	sb.WriteString(orDefault(instruction, "Make it clearer and more specific to the brand."))
	sb.WriteString("\n\nKeep the same markdown structure and headings. Return only the rewritten section.\n\n")
	sb.WriteString("Section:\n")
	sb.WriteString(section)
	sb.WriteString("\n\n")
	sb.WriteString(writingRules)
	return Prompt{System: systemFor(b), User: sb.String(), MaxTokens: 2000, Effort: "low"}
}
