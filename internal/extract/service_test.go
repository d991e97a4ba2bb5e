package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistyleguide/internal/ai"
)

type fakeGenerator struct {
	reply   string
	err     error
	lastReq ai.Request
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, req ai.Request, out interface{}) (*ai.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.reply), out); err != nil {
		return nil, err
	}
	return &ai.Response{Content: f.reply}, nil
}

type fakeScraper struct {
	page *Page
	err  error
	got  string
}

func (f *fakeScraper) Scrape(_ context.Context, target *url.URL) (*Page, error) {
	f.got = target.String()
	return f.page, f.err
}

const extracted = `{"name":" Acme ","description":"Rockets for everyone, built small.","audience":"Hobbyists",
"keywords":["rockets","","launch"],"productsServices":["Model A"],"suggestedTraits":["Playful","Direct","Warm","Bold"]}`

func TestFromURL(t *testing.T) {
	gen := &fakeGenerator{reply: extracted}
	scr := &fakeScraper{page: &Page{Title: "Acme", Text: "We build rockets."}}
	svc := NewService(gen, scr)

	b, err := svc.FromURL(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", scr.got)
	assert.Equal(t, "Acme", b.Name)
	assert.Equal(t, []string{"rockets", "launch"}, b.Keywords)
	assert.Equal(t, []string{"Playful", "Direct", "Warm"}, b.Traits)
	assert.Equal(t, ai.FormatJSON, gen.lastReq.Format)
	assert.Contains(t, gen.lastReq.User, "We build rockets.")
	assert.Contains(t, gen.lastReq.User, "Title: Acme")
}

func TestFromURLInvalid(t *testing.T) {
	svc := NewService(&fakeGenerator{}, &fakeScraper{})

	_, err := svc.FromURL(context.Background(), "mailto:someone")
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "url")
}

func TestFromURLEmptyPage(t *testing.T) {
	svc := NewService(&fakeGenerator{}, &fakeScraper{page: &Page{}})

	_, err := svc.FromURL(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestFromURLScrapeError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&fakeGenerator{}, &fakeScraper{err: boom})

	_, err := svc.FromURL(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, boom)
}

func TestFromDescription(t *testing.T) {
	gen := &fakeGenerator{reply: extracted}
	svc := NewService(gen, nil)

	b, err := svc.FromDescription(context.Background(), "We sell small rockets to hobbyists worldwide.")
	require.NoError(t, err)
	assert.Equal(t, "Acme", b.Name)
	assert.Equal(t, "american", string(b.EnglishVariant))
	assert.Contains(t, gen.lastReq.User, "small rockets")
}

func TestFromDescriptionTooShort(t *testing.T) {
	svc := NewService(&fakeGenerator{}, nil)
	_, err := svc.FromDescription(context.Background(), "short")
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
}

func TestFromDescriptionGeneratorError(t *testing.T) {
	svc := NewService(&fakeGenerator{err: &ai.APIError{StatusCode: 429}}, nil)
	_, err := svc.FromDescription(context.Background(), "We sell small rockets to hobbyists worldwide.")
	require.Error(t, err)
	assert.Equal(t, ai.KindRateLimit, ai.Classify(err))
}
