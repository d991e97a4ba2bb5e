// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EnglishVariant selects spelling and vocabulary conventions.
type EnglishVariant string

const (
	EnglishAmerican   EnglishVariant = "american"
	EnglishBritish    EnglishVariant = "british"
	EnglishAustralian EnglishVariant = "australian"
	EnglishCanadian   EnglishVariant = "canadian"
)

// FormalityLevel is the tone register requested for generated copy.
type FormalityLevel string

const (
	FormalityVeryCasual FormalityLevel = "very_casual"
	FormalityCasual     FormalityLevel = "casual"
	FormalityNeutral    FormalityLevel = "neutral"
	FormalityFormal     FormalityLevel = "formal"
	FormalityVeryFormal FormalityLevel = "very_formal"
)

// ReadingLevel is the target reading grade for generated copy.
type ReadingLevel string

const (
	ReadingGrade6to8    ReadingLevel = "6-8"
	ReadingGrade10to12  ReadingLevel = "10-12"
	ReadingGrade13Plus  ReadingLevel = "13+"
	ReadingProfessional ReadingLevel = "professional"
)

// Field limits applied to user supplied brand details.
const (
	MaxNameLength        = 50
	MinDescriptionLength = 10
	MaxDescriptionLength = 2000
	MaxAudienceLength    = 500
	MaxKeywords          = 15
	MaxKeywordLength     = 50
	RequiredTraitCount   = 3
)

// BrandDetails is everything the pipeline knows about a brand. It is created
// from form input or website extraction and freely edited by the user.
type BrandDetails struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Audience         string         `json:"audience"`
	Keywords         []string       `json:"keywords"`
	ProductsServices []string       `json:"productsServices"`
	EnglishVariant   EnglishVariant `json:"englishVariant"`
	FormalityLevel   FormalityLevel `json:"formalityLevel"`
	ReadingLevel     ReadingLevel   `json:"readingLevel"`
	Traits           []string       `json:"traits"`
}

var (
	validVariants = []interface{}{
		EnglishAmerican, EnglishBritish, EnglishAustralian, EnglishCanadian,
	}
	validFormality = []interface{}{
		FormalityVeryCasual, FormalityCasual, FormalityNeutral, FormalityFormal, FormalityVeryFormal,
	}
	validReadingLevels = []interface{}{
		ReadingGrade6to8, ReadingGrade10to12, ReadingGrade13Plus, ReadingProfessional,
	}
)

// Normalize trims whitespace and drops empty keywords and traits in place.
// Empty enum fields fall back to the defaults used by the prompts.
func (b *BrandDetails) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Audience = strings.TrimSpace(b.Audience)
	b.Keywords = compact(b.Keywords)
	b.ProductsServices = compact(b.ProductsServices)
	b.Traits = compact(b.Traits)

	if b.EnglishVariant == "" {
		b.EnglishVariant = EnglishAmerican
	}
	if b.FormalityLevel == "" {
		b.FormalityLevel = FormalityNeutral
	}
	if b.ReadingLevel == "" {
		b.ReadingLevel = ReadingGrade10to12
	}
}

// Validate checks the fields needed before any external call is made.
// The returned error is a validation.Errors map keyed by JSON field name.
func (b BrandDetails) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name,
			validation.Required.Error("brand name is required"),
			validation.RuneLength(1, MaxNameLength).Error("brand name must be 50 characters or fewer"),
		),
		validation.Field(&b.Description,
			validation.Required.Error("description is required"),
			validation.RuneLength(MinDescriptionLength, MaxDescriptionLength).Error("description must be between 10 and 2000 characters"),
		),
		validation.Field(&b.Audience,
			validation.RuneLength(0, MaxAudienceLength).Error("audience must be 500 characters or fewer"),
		),
		validation.Field(&b.Keywords,
			validation.Length(0, MaxKeywords).Error("at most 15 keywords are allowed"),
			validation.Each(validation.RuneLength(1, MaxKeywordLength).Error("keywords must be 50 characters or fewer")),
		),
		validation.Field(&b.EnglishVariant, validation.In(validVariants...).Error("unknown English variant")),
		validation.Field(&b.FormalityLevel, validation.In(validFormality...).Error("unknown formality level")),
		validation.Field(&b.ReadingLevel, validation.In(validReadingLevels...).Error("unknown reading level")),
	)
}

// ValidateForGeneration additionally requires exactly three valid traits.
func (b BrandDetails) ValidateForGeneration() error {
	if err := b.Validate(); err != nil {
		return err
	}
	if len(b.Traits) != RequiredTraitCount {
		return validation.Errors{
			"traits": validation.NewError("validation_traits_count", "select exactly 3 traits"),
		}
	}
	seen := make(map[string]bool, len(b.Traits))
	for _, t := range b.Traits {
		key := strings.ToLower(t)
		if seen[key] {
			return validation.Errors{
				"traits": validation.NewError("validation_traits_unique", "traits must be distinct"),
			}
		}
		seen[key] = true
		if _, ok := LookupTrait(t); ok {
			continue
		}
		if err := validateCustomTraitShape(t); err != nil {
			return validation.Errors{"traits": err}
		}
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
