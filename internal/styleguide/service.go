// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package styleguide orchestrates the model calls that produce a brand
// style guide: voice traits first, then writing rules that use the traits
// as context, then the supporting sections, all rendered into a markdown
// template for the purchased plan.
package styleguide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/engine"
	"aistyleguide/internal/mdpost"
	"aistyleguide/internal/metrics"
	"aistyleguide/internal/models"
	"aistyleguide/internal/prompts"
	"aistyleguide/internal/sanitize"
)

const (
	// DefaultTraitTTL is how long preview traits may be reused.
	DefaultTraitTTL = 24 * time.Hour
	// RuleConcurrency bounds concurrent rule batches for complete guides.
	RuleConcurrency = 2

	dateLayout = "January 2, 2006"
)

// ErrEmptySection is returned when a required section came back blank
// after post-processing.
var ErrEmptySection = errors.New("styleguide: generated section is empty")

// Generator is the slice of ai.Client the orchestrator needs.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (*ai.Response, error)
	GenerateJSON(ctx context.Context, req ai.Request, out interface{}) (*ai.Response, error)
}

// Renderer substitutes sections into a named template.
type Renderer interface {
	Render(name string, values map[string]string) (string, error)
}

// Service generates previews, full guides and section rewrites.
type Service struct {
	gen      Generator
	renderer Renderer
	traitTTL time.Duration
	now      func() time.Time
}

// NewService creates a Service. A zero ttl uses DefaultTraitTTL.
func NewService(gen Generator, renderer Renderer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTraitTTL
	}
	return &Service{gen: gen, renderer: renderer, traitTTL: ttl, now: time.Now}
}

// TraitTTL returns the configured trait reuse window.
func (s *Service) TraitTTL() time.Duration { return s.traitTTL }

// Result is a rendered document plus the traits it was built from, so the
// caller can cache them for a later generation.
type Result struct {
	Content      string            `json:"content"`
	Plan         models.Plan       `json:"plan"`
	Traits       models.TraitCache `json:"traits"`
	TraitsReused bool              `json:"traitsReused"`
}

// Preview generates the free preview: voice traits, an overview and an
// audience summary. Only the traits are required; the other sections fall
// back to the template placeholder when they fail.
func (s *Service) Preview(ctx context.Context, b models.BrandDetails) (*Result, error) {
	start := time.Now()
	res, err := s.preview(ctx, b)
	metrics.ObserveGeneration("preview", err, time.Since(start))
	return res, err
}

func (s *Service) preview(ctx context.Context, b models.BrandDetails) (*Result, error) {
	b.Normalize()
	if err := b.ValidateForGeneration(); err != nil {
		return nil, err
	}

	values := s.baseValues(b)
	var traits string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.traits(gctx, b)
		traits = t
		return err
	})
	sections := newSectionSet()
	g.Go(func() error {
		sections.set("brand_overview", s.optional(gctx, "overview", prompts.Overview(b), mdpost.Sections()))
		return nil
	})
	g.Go(func() error {
		sections.set("audience", s.optional(gctx, "audience", prompts.AudienceSummary(b), mdpost.Sections()))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values["traits"] = traits
	sections.merge(values)

	content, err := s.renderer.Render(engine.TemplatePreview, values)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	return &Result{
		Content: content,
		Plan:    models.PlanPreview,
		Traits: models.TraitCache{
			Content:     traits,
			Traits:      append([]string(nil), b.Traits...),
			GeneratedAt: s.now(),
		},
	}, nil
}

// Generate produces a full guide for plan. When cached holds traits for
// the same selection and is younger than the TTL, the trait call is
// skipped. A preview plan delegates to Preview.
func (s *Service) Generate(ctx context.Context, b models.BrandDetails, plan models.Plan, cached *models.TraitCache) (*Result, error) {
	if plan == models.PlanPreview {
		return s.Preview(ctx, b)
	}

	start := time.Now()
	res, err := s.generate(ctx, b, plan, cached)
	metrics.ObserveGeneration("styleguide_"+string(plan), err, time.Since(start))
	return res, err
}

func (s *Service) generate(ctx context.Context, b models.BrandDetails, plan models.Plan, cached *models.TraitCache) (*Result, error) {
	b.Normalize()
	if err := b.ValidateForGeneration(); err != nil {
		return nil, err
	}
	categories := prompts.Categories(plan)
	if len(categories) == 0 {
		return nil, fmt.Errorf("styleguide: plan %q has no rule categories", plan)
	}

	traitCache := models.TraitCache{}
	reused := cached.Fresh(b.Traits, s.traitTTL, s.now())
	if reused {
		traitCache = *cached
		slog.Info("reusing cached traits", "brand", b.Name, "age", s.now().Sub(cached.GeneratedAt))
	} else {
		t, err := s.traits(ctx, b)
		if err != nil {
			return nil, err
		}
		traitCache = models.TraitCache{
			Content:     t,
			Traits:      append([]string(nil), b.Traits...),
			GeneratedAt: s.now(),
		}
	}
	traitContext := traitCache.Content

	values := s.baseValues(b)
	values["traits"] = traitCache.Content
	values["rule_count"] = strconv.Itoa(len(categories))
	values["plan_label"] = planLabel(plan)

	sections := newSectionSet()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rules, err := s.rules(gctx, b, categories, traitContext)
		if err != nil {
			return err
		}
		sections.set("rules", rules)
		return nil
	})
	g.Go(func() error {
		sections.set("brand_overview", s.optional(gctx, "overview", prompts.Overview(b), mdpost.Sections()))
		return nil
	})
	g.Go(func() error {
		sections.set("audience", s.optional(gctx, "audience", prompts.AudienceSummary(b), mdpost.Sections()))
		return nil
	})
	g.Go(func() error {
		sections.set("keywords", s.wordList(gctx, b))
		return nil
	})
	g.Go(func() error {
		sections.set("before_after", s.optional(gctx, "before_after", prompts.BeforeAfter(b, traitContext), mdpost.Sections()))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sections.merge(values)

	tmpl := engine.TemplateCore
	if plan == models.PlanComplete {
		tmpl = engine.TemplateComplete
	}
	content, err := s.renderer.Render(tmpl, values)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl, err)
	}

	return &Result{Content: content, Plan: plan, Traits: traitCache, TraitsReused: reused}, nil
}

// RewriteSection rewrites one section following the user's instruction.
func (s *Service) RewriteSection(ctx context.Context, b models.BrandDetails, section, instruction string) (string, error) {
	start := time.Now()
	b.Normalize()
	if strings.TrimSpace(section) == "" {
		return "", errors.New("section is required")
	}

	resp, err := s.gen.Generate(ctx, prompts.Rewrite(b, section, instruction).Request())
	if err == nil {
		out := finish(mdpost.Prose(), resp.Content)
		if out == "" {
			err = ErrEmptySection
		} else {
			metrics.ObserveGeneration("rewrite", nil, time.Since(start))
			return out, nil
		}
	}
	metrics.ObserveGeneration("rewrite", err, time.Since(start))
	return "", err
}

func (s *Service) traits(ctx context.Context, b models.BrandDetails) (string, error) {
	resp, err := s.gen.Generate(ctx, prompts.Traits(b).Request())
	if err != nil {
		return "", fmt.Errorf("generate traits: %w", err)
	}
	out := finish(mdpost.Traits(), resp.Content)
	if out == "" {
		return "", fmt.Errorf("generate traits: %w", ErrEmptySection)
	}
	return out, nil
}

// rules generates every category batch, at most RuleConcurrency at a time,
// and joins them in category order before numbering.
func (s *Service) rules(ctx context.Context, b models.BrandDetails, categories []string, traitContext string) (string, error) {
	batches := prompts.Batches(categories, prompts.BatchSize)
	parts := make([]string, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(RuleConcurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			resp, err := s.gen.Generate(gctx, prompts.Rules(b, batch, traitContext).Request())
			if err != nil {
				return fmt.Errorf("generate rules batch %d/%d: %w", i+1, len(batches), err)
			}
			parts[i] = finish(mdpost.Sections(), resp.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	out := mdpost.Rules().Run(strings.Join(parts, "\n\n"))
	if out == "" {
		return "", fmt.Errorf("generate rules: %w", ErrEmptySection)
	}
	return out, nil
}

// optional runs a best-effort section. Failures are logged and yield an
// empty string so the template placeholder is shown instead.
func (s *Service) optional(ctx context.Context, name string, p prompts.Prompt, pipeline mdpost.Pipeline) string {
	resp, err := s.gen.Generate(ctx, p.Request())
	if err != nil {
		slog.Warn("optional section failed", "section", name, "kind", ai.Classify(err), "error", err)
		return ""
	}
	return finish(pipeline, resp.Content)
}

// finish strips code fences from a markdown reply and runs the pipeline.
func finish(p mdpost.Pipeline, raw string) string {
	return p.Run(sanitize.Clean(raw, sanitize.FormatMarkdown))
}

func (s *Service) wordList(ctx context.Context, b models.BrandDetails) string {
	var wl models.WordList
	if _, err := s.gen.GenerateJSON(ctx, prompts.WordList(b).Request(), &wl); err != nil {
		slog.Warn("optional section failed", "section", "word_list", "kind", ai.Classify(err), "error", err)
		return keywordFallback(b)
	}
	return renderWordList(wl)
}

func (s *Service) baseValues(b models.BrandDetails) map[string]string {
	return map[string]string{
		"brand_name":      b.Name,
		"generated_date":  s.now().Format(dateLayout),
		"english_variant": prompts.VariantLabel(b.EnglishVariant),
		"formality":       prompts.FormalityLabel(b.FormalityLevel),
		"reading_level":   prompts.ReadingLabel(b.ReadingLevel),
	}
}

func planLabel(p models.Plan) string {
	switch p {
	case models.PlanComplete:
		return "Complete Style Guide"
	case models.PlanCore:
		return "Core Style Guide"
	default:
		return "Preview"
	}
}
