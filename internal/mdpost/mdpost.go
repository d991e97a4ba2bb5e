// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mdpost normalises model-produced markdown into the structure the
// document templates expect. Each pipeline is an ordered list of named
// steps; later steps assume earlier ones already ran. Every step is
// idempotent, so running a pipeline twice gives the same result as once.
package mdpost

import "strings"

// Step is a single named string transformation.
type Step struct {
	Name  string
	Apply func(string) string
}

// Pipeline is an ordered list of steps.
type Pipeline []Step

// Run applies every step in order.
func (p Pipeline) Run(s string) string {
	for _, step := range p {
		s = step.Apply(s)
	}
	return s
}

// Without returns a copy of p minus the named steps.
func (p Pipeline) Without(names ...string) Pipeline {
	out := make(Pipeline, 0, len(p))
	for _, step := range p {
		drop := false
		for _, n := range names {
			if step.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, step)
		}
	}
	return out
}

// Names lists the step names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.Name
	}
	return names
}

// Prose is the base pipeline used for every generated section.
func Prose() Pipeline {
	return Pipeline{
		{Name: "line-endings", Apply: NormalizeLineEndings},
		{Name: "trailing-space", Apply: TrimTrailingSpace},
		{Name: "demote-h1", Apply: DemoteH1},
		{Name: "clamp-deep-headings", Apply: ClampDeepHeadings},
		{Name: "do-dont-markers", Apply: NormalizeMarkers},
		{Name: "bold-line-to-heading", Apply: BoldLineToHeading},
		{Name: "arrow-spacing", Apply: ArrowSpacing},
		{Name: "em-dash", Apply: ReplaceEmDashes},
		{Name: "colon-spacing", Apply: ColonSpacing},
		{Name: "blank-around-headings", Apply: BlankAroundHeadings},
		{Name: "collapse-blank-lines", Apply: CollapseBlankLines},
	}
}

// Sections is Prose with every H2 flattened to H3, for content that is
// inserted beneath a template's own H2 headings (traits, audience).
func Sections() Pipeline {
	return append(Prose(), Step{Name: "flatten-h2", Apply: FlattenH2})
}

// Traits is Sections without bold-line promotion, so the bold labels inside
// a trait stay beneath that trait's heading.
func Traits() Pipeline {
	return Sections().Without("bold-line-to-heading")
}

// Rules is Sections plus sequential numbering of rule headings.
func Rules() Pipeline {
	return append(Sections(), Step{Name: "number-rules", Apply: NumberRuleHeadings})
}

// Clean runs the Prose pipeline.
func Clean(s string) string { return Prose().Run(s) }

// mapLines applies fn to every line outside fenced code blocks.
func mapLines(s string, fn func(string) string) string {
	lines := strings.Split(s, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}
