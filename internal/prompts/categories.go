package prompts

import "aistyleguide/internal/models"

// BatchSize is the number of rule categories requested per model call.
const BatchSize = 25

// coreCategories are the rule categories in the Core guide. The Complete
// guide starts with the same 25 and adds the rest.
var coreCategories = []string{
	"Numbers",
	"Dates and Times",
	"Capitalization",
	"Headlines and Titles",
	"Commas",
	"Contractions",
	"Active Voice",
	"Sentence Length",
	"Paragraph Length",
	"Abbreviations and Acronyms",
	"Bulleted Lists",
	"Calls to Action",
	"Inclusive Language",
	"Jargon",
	"Exclamation Points",
	"Emoji",
	"Spelling Conventions",
	"Person and Pronouns",
	"Hyphens and Dashes",
	"Quotation Marks",
	"Links and Anchor Text",
	"Error Messages",
	"Product and Feature Names",
	"Currency and Prices",
	"Tone in Difficult Moments",
}

var extendedCategories = []string{
	"Apostrophes",
	"Colons",
	"Semicolons",
	"Ellipses",
	"Parentheses",
	"Slashes",
	"Ampersands",
	"Percentages",
	"Units of Measurement",
	"Phone Numbers",
	"Addresses",
	"Time Zones",
	"Ranges",
	"Ordinals",
	"Fractions and Decimals",
	"Job Titles",
	"Company Name Usage",
	"Trademarks",
	"Third-Party Brands",
	"Geographic Names",
	"Names of People",
	"Gender-Neutral Language",
	"Disability Language",
	"Age-Related Language",
	"Plain Language",
	"Reading Level",
	"Word Choice",
	"Filler Words",
	"Hedging",
	"Superlatives",
	"Clichés",
	"Idioms",
	"Passive Voice Exceptions",
	"Verb Tense",
	"Questions",
	"Humour",
	"Formality Shifts",
	"Email Subject Lines",
	"Email Body Copy",
	"Push Notifications",
	"SMS Messages",
	"Social Media Posts",
	"Hashtags",
	"Blog Posts",
	"Press Releases",
	"Landing Pages",
	"Product Descriptions",
	"Onboarding Copy",
	"Button Labels",
	"Form Labels",
	"Placeholder Text",
	"Tooltips",
	"Empty States",
	"Success Messages",
	"Confirmation Dialogs",
	"Loading States",
	"Accessibility Text",
	"Image Alt Text",
	"Video Captions",
	"Legal Disclaimers",
	"Privacy Language",
	"Customer Support Replies",
	"Apologies",
	"Testimonials and Quotes",
	"Statistics and Claims",
	"Competitor Comparisons",
	"Heading Hierarchy",
	"Tables",
	"Technical Terms",
	"File Names and Formats",
	"Keyboard Shortcuts",
	"Internationalization",
	"Localization",
	"Search Optimization",
}

// Categories returns the rule categories for a plan in order. Previews
// have none.
func Categories(p models.Plan) []string {
	switch p {
	case models.PlanCore:
		return append([]string(nil), coreCategories...)
	case models.PlanComplete:
		all := make([]string, 0, len(coreCategories)+len(extendedCategories))
		all = append(all, coreCategories...)
		return append(all, extendedCategories...)
	default:
		return nil
	}
}

// Batches splits categories into consecutive groups of at most size.
func Batches(categories []string, size int) [][]string {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]string
	for len(categories) > 0 {
		n := size
		if n > len(categories) {
			n = len(categories)
		}
		out = append(out, categories[:n:n])
		categories = categories[n:]
	}
	return out
}
