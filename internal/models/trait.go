// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxTraitNameLength bounds custom trait names.
const MaxTraitNameLength = 20

// Trait is a single-word brand voice descriptor. Predefined traits carry a
// static definition and guidance; custom traits only have a name.
type Trait struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
	Do         string `json:"do,omitempty"`
	Dont       string `json:"dont,omitempty"`
	Example    string `json:"example,omitempty"`
	Custom     bool   `json:"custom"`
}

// PredefinedTraits is the closed catalog offered in the trait picker.
var PredefinedTraits = []Trait{
	{
		Name:       "Assertive",
		Definition: "Speaks with conviction and takes a clear position.",
		Do:         "Lead with the recommendation, then support it.",
		Dont:       "Hedge every statement with maybe or perhaps.",
		Example:    "Switch to annual billing. You'll save two months.",
	},
	{
		Name:       "Witty",
		Definition: "Uses light, clever humour that rewards attention.",
		Do:         "Add a playful twist where it helps the point land.",
		Dont:       "Force jokes into serious or sensitive moments.",
		Example:    "Our servers never sleep. We've tried lullabies.",
	},
	{
		Name:       "Direct",
		Definition: "Gets to the point with short, unambiguous sentences.",
		Do:         "Put the action in the first sentence.",
		Dont:       "Bury the ask under background and caveats.",
		Example:    "Reset your password here. It takes one minute.",
	},
	{
		Name:       "Inclusive",
		Definition: "Welcomes every reader and avoids assumptions.",
		Do:         "Use plain language and people-first phrasing.",
		Dont:       "Rely on jargon, idioms or gendered defaults.",
		Example:    "Whoever you are, there's a seat at this table.",
	},
	{
		Name:       "Inspiring",
		Definition: "Paints a picture of what is possible.",
		Do:         "Connect features to the outcome the reader wants.",
		Dont:       "Overpromise or drift into empty slogans.",
		Example:    "Your first store could be live by Friday.",
	},
	{
		Name:       "Playful",
		Definition: "Keeps things light, energetic and fun to read.",
		Do:         "Use vivid verbs and a conversational rhythm.",
		Dont:       "Sacrifice clarity for a pun.",
		Example:    "Ready, set, ship. Your launch checklist is waiting.",
	},
	{
		Name:       "Refined",
		Definition: "Polished and considered, never flashy.",
		Do:         "Choose precise words and let white space breathe.",
		Dont:       "Pile on superlatives or exclamation marks.",
		Example:    "Crafted in small batches, finished by hand.",
	},
	{
		Name:       "Warm",
		Definition: "Friendly and human, like a helpful neighbour.",
		Do:         "Address the reader as you and acknowledge feelings.",
		Dont:       "Sound like a policy document.",
		Example:    "We're glad you're here. Let's get you set up.",
	},
	{
		Name:       "Curious",
		Definition: "Asks good questions and enjoys exploring ideas.",
		Do:         "Invite the reader to wonder with you.",
		Dont:       "Pretend to have every answer.",
		Example:    "What would you build with an extra hour a day?",
	},
	{
		Name:       "Confident",
		Definition: "Calm certainty backed by evidence.",
		Do:         "State results plainly and cite proof.",
		Dont:       "Slip into arrogance or dismiss alternatives.",
		Example:    "Teams ship 30% faster in their first month.",
	},
	{
		Name:       "Thoughtful",
		Definition: "Considers the reader's context before speaking.",
		Do:         "Anticipate questions and answer them early.",
		Dont:       "Rush past nuance to reach the call to action.",
		Example:    "Not sure which plan fits? Here's how to decide.",
	},
	{
		Name:       "Supportive",
		Definition: "Encourages and guides without judgement.",
		Do:         "Offer the next step and reassure when things go wrong.",
		Dont:       "Blame the reader for errors.",
		Example:    "That didn't work, but this fix usually does.",
	},
}

var (
	traitNamePattern = regexp.MustCompile(`^[A-Za-z0-9 -]+$`)
	traitTitler      = cases.Title(language.English)

	// ErrTraitDuplicate is returned when a custom name matches a predefined trait.
	ErrTraitDuplicate = errors.New("trait already exists in the predefined list")
)

// LookupTrait finds a predefined trait by name, ignoring case.
func LookupTrait(name string) (Trait, bool) {
	name = strings.TrimSpace(name)
	for _, t := range PredefinedTraits {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Trait{}, false
}

// ResolveTraits maps selected names onto catalog entries. Names not in the
// catalog become custom traits with a title-cased name.
func ResolveTraits(names []string) []Trait {
	out := make([]Trait, 0, len(names))
	for _, n := range names {
		if t, ok := LookupTrait(n); ok {
			out = append(out, t)
			continue
		}
		out = append(out, Trait{Name: NormalizeTraitName(n), Custom: true})
	}
	return out
}

// NormalizeTraitName trims and title-cases a custom trait name.
func NormalizeTraitName(name string) string {
	return traitTitler.String(strings.Join(strings.Fields(name), " "))
}

// ValidateTraitName checks a custom trait name. It rejects names that are
// empty, longer than 20 characters, contain anything other than letters,
// digits, spaces and hyphens, or duplicate a predefined trait.
func ValidateTraitName(name string) error {
	if err := validateCustomTraitShape(name); err != nil {
		return err
	}
	if _, ok := LookupTrait(name); ok {
		return ErrTraitDuplicate
	}
	return nil
}

func validateCustomTraitShape(name string) error {
	return validation.Validate(strings.TrimSpace(name),
		validation.Required.Error("trait name is required"),
		validation.RuneLength(1, MaxTraitNameLength).Error("trait name must be 20 characters or fewer"),
		validation.Match(traitNamePattern).Error("trait name may only contain letters, numbers, spaces and hyphens"),
	)
}
