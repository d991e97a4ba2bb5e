package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/metrics"
	"aistyleguide/internal/models"
	"aistyleguide/internal/prompts"
)

// ErrNoText is returned when a site yields nothing readable.
var ErrNoText = errors.New("extract: no readable text found on the page")

// Generator is the slice of ai.Client the service needs.
type Generator interface {
	GenerateJSON(ctx context.Context, req ai.Request, out interface{}) (*ai.Response, error)
}

// PageScraper fetches website text.
type PageScraper interface {
	Scrape(ctx context.Context, target *url.URL) (*Page, error)
}

// Service extracts brand details with one model call.
type Service struct {
	gen     Generator
	scraper PageScraper
}

// NewService wires a generator and a scraper.
func NewService(gen Generator, scraper PageScraper) *Service {
	return &Service{gen: gen, scraper: scraper}
}

// FromURL scrapes the site and asks the model to describe the brand.
func (s *Service) FromURL(ctx context.Context, rawURL string) (models.BrandDetails, error) {
	start := time.Now()
	target, err := NormalizeURL(rawURL)
	if err == nil {
		err = validation.Validate(target.String(), is.URL)
	}
	if err != nil {
		return models.BrandDetails{}, validation.Errors{"url": err}
	}

	page, err := s.scraper.Scrape(ctx, target)
	if err != nil {
		metrics.ObserveGeneration("extract_url", err, time.Since(start))
		return models.BrandDetails{}, err
	}

	text := pageText(page)
	if text == "" {
		metrics.ObserveGeneration("extract_url", ErrNoText, time.Since(start))
		return models.BrandDetails{}, ErrNoText
	}

	b, err := s.extract(ctx, prompts.ExtractFromWebsite(target.String(), text))
	metrics.ObserveGeneration("extract_url", err, time.Since(start))
	return b, err
}

// FromDescription skips scraping and extracts from free text.
func (s *Service) FromDescription(ctx context.Context, description string) (models.BrandDetails, error) {
	start := time.Now()
	err := validation.Validate(strings.TrimSpace(description),
		validation.Required.Error("description is required"),
		validation.RuneLength(models.MinDescriptionLength, prompts.MaxPageText).Error("description must be between 10 and 12000 characters"),
	)
	if err != nil {
		return models.BrandDetails{}, validation.Errors{"description": err}
	}

	b, err := s.extract(ctx, prompts.ExtractFromDescription(description))
	metrics.ObserveGeneration("extract_description", err, time.Since(start))
	return b, err
}

func (s *Service) extract(ctx context.Context, p prompts.Prompt) (models.BrandDetails, error) {
	var out models.ExtractedBrand
	if _, err := s.gen.GenerateJSON(ctx, p.Request(), &out); err != nil {
		return models.BrandDetails{}, fmt.Errorf("extract brand: %w", err)
	}
	return out.BrandDetails(), nil
}

func pageText(p *Page) string {
	var sb strings.Builder
	if p.Title != "" {
		sb.WriteString("Title: " + p.Title + "\n")
	}
	if p.Description != "" {
		sb.WriteString("Meta description: " + p.Description + "\n")
	}
	if p.Text != "" {
		sb.WriteString("\n" + p.Text)
	}
	return strings.TrimSpace(sb.String())
}
