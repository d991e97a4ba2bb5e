package models

// ExtractedBrand is what the model returns when reading a website or a
// free-text description.
type ExtractedBrand struct {
	Name             string   `json:"name" jsonschema:"required,maxLength=50"`
	Description      string   `json:"description" jsonschema:"required,maxLength=2000"`
	Audience         string   `json:"audience" jsonschema:"required,maxLength=500"`
	Keywords         []string `json:"keywords" jsonschema:"required,maxItems=15"`
	ProductsServices []string `json:"productsServices"`
	SuggestedTraits  []string `json:"suggestedTraits" jsonschema:"maxItems=3"`
}

// BrandDetails converts the extraction result into editable brand details.
func (e ExtractedBrand) BrandDetails() BrandDetails {
	b := BrandDetails{
		Name:             e.Name,
		Description:      e.Description,
		Audience:         e.Audience,
		Keywords:         e.Keywords,
		ProductsServices: e.ProductsServices,
		Traits:           e.SuggestedTraits,
	}
	b.Normalize()
	if len(b.Keywords) > MaxKeywords {
		b.Keywords = b.Keywords[:MaxKeywords]
	}
	if len(b.Traits) > RequiredTraitCount {
		b.Traits = b.Traits[:RequiredTraitCount]
	}
	return b
}

// WordEntry is one preferred or avoided term with a short note.
type WordEntry struct {
	Term string `json:"term" jsonschema:"required"`
	Note string `json:"note"`
}

// WordList is the brand vocabulary section.
type WordList struct {
	Use   []WordEntry `json:"use" jsonschema:"required"`
	Avoid []WordEntry `json:"avoid" jsonschema:"required"`
}
