package prompts

import (
	"strings"
)

// MaxPageText bounds the scraped text included in an extraction prompt.
const MaxPageText = 12000

// ExtractFromWebsite asks the model to read scraped pages and fill in the
// brand fields.
func ExtractFromWebsite(url, pageText string) Prompt {
	var sb strings.Builder
	sb.WriteString("Read the text scraped from a company website and describe the brand.\n\n")
	sb.WriteString("Website: ")
	sb.WriteString(url)
	sb.WriteString("\n\nScraped text:\n")
	sb.WriteString(clip(pageText, MaxPageText))
	sb.WriteString("\n\n")
	sb.WriteString(extractionGuidance)
	sb.WriteString(jsonInstruction(SchemaExtractedBrand))
	return Prompt{System: jsonSystem, User: sb.String(), JSON: true, MaxTokens: 1000, Effort: "low"}
}

// ExtractFromDescription turns a free-text description into brand fields.
func ExtractFromDescription(description string) Prompt {
	var sb strings.Builder
	sb.WriteString("Read this description of a business and describe the brand.\n\n")
	sb.WriteString("Description:\n")
	sb.WriteString(clip(description, MaxPageText))
	sb.WriteString("\n\n")
	sb.WriteString(extractionGuidance)
	sb.WriteString(jsonInstruction(SchemaExtractedBrand))
	return Prompt{System: jsonSystem, User: sb.String(), JSON: true, MaxTokens: 1000, Effort: "low"}
}

const extractionGuidance = "Keep the name under 50 characters, the description between 2 and 4 sentences, " +
	"and the audience to one sentence. Suggest exactly 3 voice traits, preferring these when they fit: " +
	"Assertive, Witty, Direct, Inclusive, Inspiring, Playful, Refined, Warm, Curious, Confident, Thoughtful, Supportive.\n\n"

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
