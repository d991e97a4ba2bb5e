// Package blog generates marketing articles: optional web research, a JSON
// outline, then the full article, persisted as a draft or published post.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/mdpost"
	"aistyleguide/internal/metrics"
	"aistyleguide/internal/models"
	"aistyleguide/internal/prompts"
	"aistyleguide/internal/slug"
)

const (
	// MaxExcerptLength caps the stored excerpt.
	MaxExcerptLength = 300
	// ResearchResults is how many search results feed the outline.
	ResearchResults = 5

	templateSuffix = " (with template)"
)

// ErrEmptyArticle is returned when the article has no content.
var ErrEmptyArticle = errors.New("blog: generated article is empty")

// Generator is the slice of ai.Client the service needs.
type Generator interface {
	GenerateJSON(ctx context.Context, req ai.Request, out interface{}) (*ai.Response, error)
}

// Researcher looks up sources for a topic.
type Researcher interface {
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]models.ResearchNote, error)
}

// PostStore persists generated posts.
type PostStore interface {
	SlugExists(slug string) (bool, error)
	Create(p *models.BlogPost) (*models.BlogPost, error)
}

// Service runs the blog pipeline.
type Service struct {
	gen      Generator
	research Researcher
	posts    PostStore
	now      func() time.Time
}

// NewService creates a Service. research may be nil.
func NewService(gen Generator, research Researcher, posts PostStore) *Service {
	return &Service{gen: gen, research: research, posts: posts, now: time.Now}
}

// ValidateRequest checks a generation request.
func ValidateRequest(req models.BlogRequest) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Topic,
			validation.Required.Error("topic is required"),
			validation.RuneLength(3, 200).Error("topic must be between 3 and 200 characters"),
		),
		validation.Field(&req.Keywords,
			validation.Length(0, models.MaxKeywords).Error("at most 15 keywords are allowed"),
			validation.Each(validation.RuneLength(1, models.MaxKeywordLength)),
		),
		validation.Field(&req.Category, validation.RuneLength(0, 50)),
	)
}

// Research returns search notes for the topic. It never fails: without a
// configured researcher, or when the search errors, it returns nil.
func (s *Service) Research(ctx context.Context, topic string) []models.ResearchNote {
	if s.research == nil || !s.research.Enabled() {
		return nil
	}
	notes, err := s.research.Search(ctx, topic, ResearchResults)
	if err != nil {
		slog.Warn("blog research failed, continuing without sources", "topic", topic, "error", err)
		return nil
	}
	return notes
}

// Outline generates the article plan. Topics that ask for a template
// always produce an outline that includes one and says so in the title.
func (s *Service) Outline(ctx context.Context, req models.BlogRequest, notes []models.ResearchNote) (*models.Outline, error) {
	var o models.Outline
	if _, err := s.gen.GenerateJSON(ctx, prompts.Outline(req, notes).Request(), &o); err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		o.Title = strings.TrimSpace(req.Topic)
	}
	if prompts.WantsTemplate(req.Topic) {
		o.IncludesTemplate = true
		if !strings.Contains(strings.ToLower(o.Title), "template") {
			o.Title += templateSuffix
		}
	}
	return &o, nil
}

// Article writes the article from an outline and post-processes it.
func (s *Service) Article(ctx context.Context, o *models.Outline, req models.BlogRequest) (*models.Article, error) {
	var a models.Article
	if _, err := s.gen.GenerateJSON(ctx, prompts.Article(*o, req).Request(), &a); err != nil {
		return nil, fmt.Errorf("generate article: %w", err)
	}
	a.Content = mdpost.Clean(a.Content)
	if a.Content == "" {
		return nil, ErrEmptyArticle
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		a.Title = o.Title
	}
	a.Excerpt = excerpt(a.Excerpt, a.Content)
	if len(a.Keywords) == 0 {
		a.Keywords = prompts.Keywords(req.Keywords)
	} else {
		a.Keywords = prompts.Keywords(a.Keywords)
	}
	return &a, nil
}

// Generate runs research, outline and article, then stores the post with
// a unique slug.
func (s *Service) Generate(ctx context.Context, req models.BlogRequest) (*models.BlogPost, error) {
	start := time.Now()
	post, err := s.generate(ctx, req)
	metrics.ObserveGeneration("blog", err, time.Since(start))
	return post, err
}

func (s *Service) generate(ctx context.Context, req models.BlogRequest) (*models.BlogPost, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	var notes []models.ResearchNote
	if req.Research {
		notes = s.Research(ctx, req.Topic)
	}

	o, err := s.Outline(ctx, req, notes)
	if err != nil {
		return nil, err
	}
	a, err := s.Article(ctx, o, req)
	if err != nil {
		return nil, err
	}

	sl, err := slug.Unique(slug.Generate(a.Title), s.posts.SlugExists)
	if err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:       a.Title,
		Slug:        sl,
		Content:     a.Content,
		Excerpt:     a.Excerpt,
		Category:    strings.TrimSpace(req.Category),
		Keywords:    a.Keywords,
		Published:   req.Publish,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
	}
	if req.Publish {
		now := s.now()
		post.PublishedAt = &now
	}

	created, err := s.posts.Create(post)
	if err != nil {
		return nil, fmt.Errorf("save blog post: %w", err)
	}
	slog.Info("blog post generated",
		"slug", created.Slug,
		"published", created.Published,
		"sources", len(notes),
	)
	return created, nil
}

// excerpt returns the model's excerpt, or the first paragraph of content,
// cut at a word boundary to MaxExcerptLength runes.
func excerpt(given, content string) string {
	e := strings.TrimSpace(given)
	if e == "" {
		for _, para := range strings.Split(content, "\n\n") {
			para = strings.TrimSpace(para)
			if para != "" && !strings.HasPrefix(para, "#") {
				e = para
				break
			}
		}
	}
	e = strings.Join(strings.Fields(e), " ")
	r := []rune(e)
	if len(r) <= MaxExcerptLength {
		return e
	}
	cut := string(r[:MaxExcerptLength-1])
	if i := strings.LastIndex(cut, " "); i > MaxExcerptLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, ",.;: ") + "…"
}
