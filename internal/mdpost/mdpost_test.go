package mdpost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messyRules = "# Brand Rules\r\n" +
	"\n" +
	"**Numbers**\n" +
	"Use numerals above ten — always.   \n" +
	"- ✅ Do: We shipped 12 updates.\n" +
	"- ❌ Don't: We shipped twelve updates.\n" +
	"\n\n\n" +
	"#### 2) Dates\n" +
	"Write dates in full:day first.\n" +
	"✔️ 3 March 2026 ❌ 03/03/26\n" +
	"Before->After\n"

func TestRulesPipeline(t *testing.T) {
	want := strings.Join([]string{
		"### 1. Brand Rules",
		"",
		"### 2. Numbers",
		"",
		"Use numerals above ten, always.",
		"✅ We shipped 12 updates.",
		"❌ We shipped twelve updates.",
		"",
		"### 3. Dates",
		"",
		"Write dates in full: day first.",
		"✅ 3 March 2026",
		"❌ 03/03/26",
		"Before → After",
	}, "\n")

	assert.Equal(t, want, Rules().Run(messyRules))
}

const mixedMarkers = "### Greetings\n" +
	"**Do:** say hi ✔ yes ✖ no\n" +
	"- Don't: shout ✅ whisper\n" +
	"**What it means**\n" +
	"Tip ❌ jargon ✅ plain words\n"

func TestPipelinesIdempotent(t *testing.T) {
	pipelines := map[string]Pipeline{
		"prose":    Prose(),
		"sections": Sections(),
		"traits":   Traits(),
		"rules":    Rules(),
	}
	inputs := map[string]string{
		"messy rules":   messyRules,
		"mixed markers": mixedMarkers,
	}
	for name, p := range pipelines {
		for inName, in := range inputs {
			t.Run(name+"/"+inName, func(t *testing.T) {
				once := p.Run(in)
				assert.Equal(t, once, p.Run(once))
			})
		}
	}
}

func TestLabelBeforeInlineMarkers(t *testing.T) {
	got := Prose().Run("**Do:** say hi ✔ yes ✖ no")
	assert.Equal(t, "✅ say hi\n✅ yes\n❌ no", got)
}

func TestTraitsKeepsBoldLabels(t *testing.T) {
	in := "## Direct\nWe get to the point.\n\n**What it means**\n✅ Lead with the ask\n\n**What it doesn't mean**\n❌ Be curt"
	got := Traits().Run(in)

	assert.Equal(t, 1, strings.Count(got, "### "))
	assert.Contains(t, got, "### Direct")
	assert.Contains(t, got, "**What it means**")
	assert.Contains(t, got, "**What it doesn't mean**")
	assert.NotContains(t, Traits().Names(), "bold-line-to-heading")
	assert.Contains(t, Sections().Names(), "bold-line-to-heading")
}

func TestPipelineOrder(t *testing.T) {
	names := Rules().Names()
	require.NotEmpty(t, names)
	assert.Equal(t, "line-endings", names[0])
	assert.Equal(t, "number-rules", names[len(names)-1])

	prose := Prose().Names()
	assert.Equal(t, prose, Sections().Names()[:len(prose)])
}

func TestProseKeepsH2(t *testing.T) {
	got := Clean("# Title\n\n## Section\ntext")
	assert.Equal(t, "## Title\n\n## Section\n\ntext", got)
}
