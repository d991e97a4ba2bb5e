package styleguide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/engine"
	"aistyleguide/internal/models"
	"aistyleguide/internal/prompts"
)

var firstCategory = regexp.MustCompile(`(?m)^1\. (.+)$`)

// fakeGenerator answers by recognising the prompt it receives.
type fakeGenerator struct {
	mu          sync.Mutex
	calls       map[string]int
	fail        map[string]error
	inFlight    int32
	maxInFlight int32
	ruleDelay   time.Duration
}

func newFake() *fakeGenerator {
	return &fakeGenerator{calls: map[string]int{}, fail: map[string]error{}}
}

func kindOf(req ai.Request) string {
	switch {
	case strings.Contains(req.User, "brand voice section"):
		return "traits"
	case strings.Contains(req.User, "writing rules"):
		return "rules"
	case strings.Contains(req.User, "brand overview"):
		return "overview"
	case strings.Contains(req.User, "audience section"):
		return "audience"
	case strings.Contains(req.User, "word list"):
		return "words"
	case strings.Contains(req.User, "before and after"):
		return "before_after"
	case strings.Contains(req.User, "Rewrite the following"):
		return "rewrite"
	}
	return "unknown"
}

func (f *fakeGenerator) record(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	return f.fail[kind]
}

func (f *fakeGenerator) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeGenerator) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	kind := kindOf(req)
	if err := f.record(kind); err != nil {
		return nil, err
	}
	switch kind {
	case "traits":
		return &ai.Response{Content: "## Playful\nWe keep it light.\n✅ Use vivid verbs\n❌ Force puns"}, nil
	case "rules":
		n := atomic.AddInt32(&f.inFlight, 1)
		for {
			max := atomic.LoadInt32(&f.maxInFlight)
			if n <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, n) {
				break
			}
		}
		time.Sleep(f.ruleDelay)
		atomic.AddInt32(&f.inFlight, -1)
		cat := firstCategory.FindStringSubmatch(req.User)[1]
		return &ai.Response{Content: "### " + cat + "\nFollow the rule.\n✅ Good\n❌ Bad"}, nil
	case "overview":
		return &ai.Response{Content: "Acme builds rockets."}, nil
	case "audience":
		return &ai.Response{Content: "# Hobbyists\nPeople who love launches."}, nil
	case "before_after":
		return &ai.Response{Content: "### Headline\nBefore→ Buy now\nAfter→ Launch today"}, nil
	case "rewrite":
		return &ai.Response{Content: "### Numbers\nUse numerals — always."}, nil
	}
	return nil, errors.New("unexpected prompt")
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req ai.Request, out interface{}) (*ai.Response, error) {
	kind := kindOf(req)
	if err := f.record(kind); err != nil {
		return nil, err
	}
	body := `{"use":[{"term":"launch","note":"our core verb"}],"avoid":[{"term":"synergy","note":"jargon"}]}`
	return &ai.Response{Content: body}, json.Unmarshal([]byte(body), out)
}

func testBrand() models.BrandDetails {
	return models.BrandDetails{
		Name:        "Acme",
		Description: "Acme builds small rockets for hobbyists.",
		Audience:    "Hobbyists",
		Keywords:    []string{"rockets", "launch"},
		Traits:      []string{"Playful", "Direct", "Warm"},
	}
}

func newTestService(t *testing.T, gen Generator) *Service {
	t.Helper()
	eng, err := engine.New("")
	require.NoError(t, err)
	svc := NewService(gen, eng, 0)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestPreview(t *testing.T) {
	gen := newFake()
	svc := newTestService(t, gen)

	res, err := svc.Preview(context.Background(), testBrand())
	require.NoError(t, err)

	assert.Equal(t, models.PlanPreview, res.Plan)
	assert.Contains(t, res.Content, "# Acme Style Guide Preview")
	assert.Contains(t, res.Content, "March 14, 2026")
	assert.Contains(t, res.Content, "### Playful")
	assert.Contains(t, res.Content, "Acme builds rockets.")
	assert.Contains(t, res.Content, "### Hobbyists")
	assert.NotContains(t, res.Content, "{{")

	assert.Equal(t, []string{"Playful", "Direct", "Warm"}, res.Traits.Traits)
	assert.Equal(t, svc.now(), res.Traits.GeneratedAt)
	assert.Equal(t, 0, gen.count("rules"))
}

func TestPreviewOptionalSectionFailureUsesPlaceholder(t *testing.T) {
	gen := newFake()
	gen.fail["audience"] = &ai.APIError{StatusCode: 503}
	svc := newTestService(t, gen)

	res, err := svc.Preview(context.Background(), testBrand())
	require.NoError(t, err)
	assert.Contains(t, res.Content, engine.Placeholder)
}

func TestPreviewTraitFailureFails(t *testing.T) {
	gen := newFake()
	gen.fail["traits"] = &ai.APIError{StatusCode: 429}
	svc := newTestService(t, gen)

	_, err := svc.Preview(context.Background(), testBrand())
	require.Error(t, err)
	assert.Equal(t, ai.KindRateLimit, ai.Classify(err))
}

func TestPreviewValidation(t *testing.T) {
	svc := newTestService(t, newFake())
	b := testBrand()
	b.Traits = b.Traits[:2]

	_, err := svc.Preview(context.Background(), b)
	require.Error(t, err)
}

func TestGenerateCore(t *testing.T) {
	gen := newFake()
	svc := newTestService(t, gen)

	res, err := svc.Generate(context.Background(), testBrand(), models.PlanCore, nil)
	require.NoError(t, err)

	assert.False(t, res.TraitsReused)
	assert.Equal(t, 1, gen.count("traits"))
	assert.Equal(t, 1, gen.count("rules"))
	assert.Contains(t, res.Content, "Core Style Guide")
	assert.Contains(t, res.Content, "### 1. Numbers")
	assert.Contains(t, res.Content, "**launch**: our core verb")
	assert.Contains(t, res.Content, "Before → Buy now")
	assert.NotContains(t, res.Content, "{{")
	assert.NotContains(t, res.Content, engine.Placeholder)
}

func TestGenerateCompleteBatchesRules(t *testing.T) {
	gen := newFake()
	gen.ruleDelay = 20 * time.Millisecond
	svc := newTestService(t, gen)

	res, err := svc.Generate(context.Background(), testBrand(), models.PlanComplete, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, gen.count("rules"))
	assert.LessOrEqual(t, atomic.LoadInt32(&gen.maxInFlight), int32(RuleConcurrency))
	assert.Contains(t, res.Content, "99 rules")

	// Batches keep category order and are numbered across the whole list.
	first := strings.Index(res.Content, "### 1. Numbers")
	fourth := strings.Index(res.Content, "### 4. ")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, fourth)
	assert.Less(t, first, fourth)
}

func TestGenerateReusesFreshTraits(t *testing.T) {
	gen := newFake()
	svc := newTestService(t, gen)

	cached := &models.TraitCache{
		Content:     "### Cached\nFrom the preview.",
		Traits:      []string{"playful", "direct", "warm"},
		GeneratedAt: svc.now().Add(-time.Hour),
	}
	res, err := svc.Generate(context.Background(), testBrand(), models.PlanCore, cached)
	require.NoError(t, err)

	assert.True(t, res.TraitsReused)
	assert.Equal(t, 0, gen.count("traits"))
	assert.Contains(t, res.Content, "From the preview.")
}

func TestGenerateRegeneratesExpiredTraits(t *testing.T) {
	gen := newFake()
	svc := newTestService(t, gen)

	cached := &models.TraitCache{
		Content:     "### Cached",
		Traits:      []string{"Playful", "Direct", "Warm"},
		GeneratedAt: svc.now().Add(-svc.TraitTTL()),
	}
	require.Equal(t, DefaultTraitTTL, svc.TraitTTL())
	res, err := svc.Generate(context.Background(), testBrand(), models.PlanCore, cached)
	require.NoError(t, err)

	assert.False(t, res.TraitsReused)
	assert.Equal(t, 1, gen.count("traits"))
}

func TestGenerateRuleFailureFails(t *testing.T) {
	gen := newFake()
	gen.fail["rules"] = errors.New("connection reset")
	svc := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), testBrand(), models.PlanCore, nil)
	require.Error(t, err)
	assert.Equal(t, ai.KindNetwork, ai.Classify(err))
}

func TestGenerateWordListFallsBackToKeywords(t *testing.T) {
	gen := newFake()
	gen.fail["words"] = ai.ErrNotJSON
	svc := newTestService(t, gen)

	res, err := svc.Generate(context.Background(), testBrand(), models.PlanCore, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Content, "- **rockets**")
}

func TestGeneratePreviewPlanDelegates(t *testing.T) {
	gen := newFake()
	svc := newTestService(t, gen)

	res, err := svc.Generate(context.Background(), testBrand(), models.PlanPreview, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPreview, res.Plan)
	assert.Equal(t, 0, gen.count("rules"))
}

func TestRewriteSection(t *testing.T) {
	svc := newTestService(t, newFake())

	out, err := svc.RewriteSection(context.Background(), testBrand(), "### Numbers\nUse numerals.", "shorter")
	require.NoError(t, err)
	assert.Equal(t, "### Numbers\n\nUse numerals, always.", out)

	_, err = svc.RewriteSection(context.Background(), testBrand(), "  ", "")
	assert.Error(t, err)
}

func TestRenderWordList(t *testing.T) {
	out := renderWordList(models.WordList{
		Use:   []models.WordEntry{{Term: "launch", Note: "verb"}, {Term: " "}},
		Avoid: nil,
	})
	assert.Equal(t, "### Words to use\n\n- **launch**: verb", out)
	assert.Equal(t, "", keywordFallback(models.BrandDetails{}))
}

var (
	categoryLine = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	h3Line       = regexp.MustCompile(`(?m)^### (.+)$`)
	ruleTitle    = regexp.MustCompile(`^\d+\. `)
)

// wellFormedGenerator answers every prompt in the shape it asks for, with
// optional markdown fences around each reply.
type wellFormedGenerator struct {
	traits []string
	fenced bool
}

func (g wellFormedGenerator) reply(s string) *ai.Response {
	if g.fenced {
		s = "```markdown\n" + s + "\n```"
	}
	return &ai.Response{Content: s}
}

func (g wellFormedGenerator) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	var sb strings.Builder
	switch kindOf(req) {
	case "traits":
		for _, name := range g.traits {
			fmt.Fprintf(&sb, "# %s\nWe say what we mean.\n\n", name)
			sb.WriteString("**What it means**\n✔ Lead with the ask\n✔ Use short verbs\n✔ Cut filler\n\n")
			sb.WriteString("**What it doesn't mean**\n✖ Be curt\n✖ Skip context\n✖ Drop warmth\n\n")
		}
	case "rules":
		list := req.User[strings.Index(req.User, "Categories:"):strings.Index(req.User, "For every category")]
		for _, m := range categoryLine.FindAllStringSubmatch(list, -1) {
			fmt.Fprintf(&sb, "### %s\nKeep %s consistent with the Direct trait.\n", m[1], strings.ToLower(m[1]))
			sb.WriteString("- ✔ Do: Just do it.\n- ✖ Don't: Perhaps consider doing it.\n\n")
		}
	case "overview":
		sb.WriteString("Nike makes gear for every athlete.")
	case "audience":
		sb.WriteString("## Athletes\nAnyone with a body.")
	case "before_after":
		sb.WriteString("### Launch copy\nBefore -> Buy our new shoe\nAfter -> Run further")
	case "rewrite":
		sb.WriteString("# Numbers\nUse numerals.\n- ✔ We ran 10 miles.")
	default:
		return nil, errors.New("unexpected prompt")
	}
	return g.reply(sb.String()), nil
}

func (g wellFormedGenerator) GenerateJSON(ctx context.Context, req ai.Request, out interface{}) (*ai.Response, error) {
	body := `{"use":[{"term":"move","note":"active verb"}],"avoid":[{"term":"utilize"}]}`
	return &ai.Response{Content: body}, json.Unmarshal([]byte(body), out)
}

func nikeBrand() models.BrandDetails {
	return models.BrandDetails{
		Name:        "Nike",
		Description: "Nike designs footwear and apparel for athletes.",
		Audience:    "Athletes of every level",
		Keywords:    []string{"run", "train"},
		Traits:      []string{"Direct", "Refined", "Witty"},
	}
}

// docSection returns the body under a level-2 heading.
func docSection(t *testing.T, doc, heading string) string {
	t.Helper()
	start := strings.Index(doc, "## "+heading+"\n")
	require.NotEqual(t, -1, start, "missing section %q", heading)
	body := doc[start+len(heading)+4:]
	if end := strings.Index(body, "\n## "); end >= 0 {
		body = body[:end]
	}
	return body
}

func TestGenerateCoreNikeScenario(t *testing.T) {
	for _, fenced := range []bool{false, true} {
		t.Run(fmt.Sprintf("fenced=%v", fenced), func(t *testing.T) {
			b := nikeBrand()
			svc := newTestService(t, wellFormedGenerator{traits: b.Traits, fenced: fenced})

			res, err := svc.Generate(context.Background(), b, models.PlanCore, nil)
			require.NoError(t, err)
			doc := res.Content

			assert.NotContains(t, doc, "```")
			assert.NotContains(t, doc, "✔")
			assert.NotContains(t, doc, "✖")
			assert.NotContains(t, doc, engine.Placeholder)

			voice := docSection(t, doc, "Brand Voice")
			var traitHeadings []string
			for _, m := range h3Line.FindAllStringSubmatch(voice, -1) {
				traitHeadings = append(traitHeadings, m[1])
			}
			assert.Equal(t, []string{"Direct", "Refined", "Witty"}, traitHeadings)
			assert.Contains(t, voice, "✅ Lead with the ask")

			rules := docSection(t, doc, "Writing Rules")
			blocks := strings.Split(rules, "\n### ")[1:]
			want := prompts.Categories(models.PlanCore)
			require.Len(t, blocks, len(want))
			assert.Equal(t, len(want), strings.Count(rules, "\n✅ "))
			assert.Equal(t, len(want), strings.Count(rules, "\n❌ "))

			seen := map[string]bool{}
			for i, block := range blocks {
				title := strings.SplitN(block, "\n", 2)[0]
				assert.True(t, strings.HasPrefix(title, fmt.Sprintf("%d. ", i+1)), title)
				name := ruleTitle.ReplaceAllString(title, "")
				assert.Equal(t, want[i], name)
				assert.False(t, seen[name], "duplicate category %q", name)
				seen[name] = true
				assert.Equal(t, 1, strings.Count(block, "✅"), name)
				assert.Equal(t, 1, strings.Count(block, "❌"), name)
			}
			assert.Len(t, seen, 25)
		})
	}
}

func TestPreviewStripsFencesAndKeepsThreeTraits(t *testing.T) {
	b := nikeBrand()
	svc := newTestService(t, wellFormedGenerator{traits: b.Traits, fenced: true})

	res, err := svc.Preview(context.Background(), b)
	require.NoError(t, err)

	assert.NotContains(t, res.Content, "```")
	assert.Len(t, h3Line.FindAllString(res.Traits.Content, -1), 3)
	assert.Contains(t, res.Traits.Content, "**What it doesn't mean**")
	assert.Contains(t, res.Content, "### Athletes")
}

func TestRewriteSectionStripsFences(t *testing.T) {
	svc := newTestService(t, wellFormedGenerator{fenced: true})

	out, err := svc.RewriteSection(context.Background(), nikeBrand(), "### Numbers\nUse numerals.", "shorter")
	require.NoError(t, err)
	assert.Equal(t, "## Numbers\n\nUse numerals.\n✅ We ran 10 miles.", out)
}
