package mdpost

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	trailingSpace  = regexp.MustCompile(`(?m)[ \t]+$`)
	h1Line         = regexp.MustCompile(`^#[ \t]+`)
	deepHeading    = regexp.MustCompile(`^#{4,6}[ \t]+`)
	h2Line         = regexp.MustCompile(`^##[ \t]+`)
	boldOnlyLine   = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+[.)])?[ \t]*\*\*([^*\n]+?):?\*\*:?[ \t]*$`)
	headingLine    = regexp.MustCompile(`^#{1,6} `)
	ruleNumberPref = regexp.MustCompile(`^(?:(?:Rule|Category)[ \t]+)?\d+[.):][ \t]*`)
	arrowToken     = regexp.MustCompile(`[ \t]*(?:->|→)[ \t]*`)
	blankRun       = regexp.MustCompile(`\n{3,}`)
	bulletPrefix   = regexp.MustCompile(`^(?:[-*+]|\d+[.)])(?:[ \t]+|$)`)

	doLabel   = regexp.MustCompile(`^\*{0,2}(?:Do|Correct)\*{0,2}:\*{0,2}[ \t]*`)
	dontLabel = regexp.MustCompile(`^\*{0,2}(?:Don't|Don’t|Avoid|Incorrect)\*{0,2}:\*{0,2}[ \t]*`)
)

// Canonical do/don't markers.
const (
	MarkDo   = "✅"
	MarkDont = "❌"
)

var markerAliases = strings.NewReplacer(
	"✔️", MarkDo, "✔", MarkDo, "☑️", MarkDo,
	"✖️", MarkDont, "✖", MarkDont, "✗", MarkDont, "✘", MarkDont, "🚫", MarkDont,
)

// NormalizeLineEndings converts CRLF and CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// TrimTrailingSpace removes spaces and tabs at the end of each line.
func TrimTrailingSpace(s string) string {
	return trailingSpace.ReplaceAllString(s, "")
}

// DemoteH1 turns level-1 headings into level-2 headings.
func DemoteH1(s string) string {
	return mapLines(s, func(line string) string {
		return h1Line.ReplaceAllString(line, "## ")
	})
}

// ClampDeepHeadings caps heading depth at level 3.
func ClampDeepHeadings(s string) string {
	return mapLines(s, func(line string) string {
		return deepHeading.ReplaceAllString(line, "### ")
	})
}

// FlattenH2 turns level-2 headings into level-3 headings.
func FlattenH2(s string) string {
	return mapLines(s, func(line string) string {
		return h2Line.ReplaceAllString(line, "### ")
	})
}

// BoldLineToHeading converts a line that is only bold text, optionally
// as a bullet or numbered item, into a level-3 heading.
func BoldLineToHeading(s string) string {
	return mapLines(s, func(line string) string {
		m := boldOnlyLine.FindStringSubmatch(line)
		if m == nil {
			return line
		}
		return "### " + strings.TrimSpace(m[1])
	})
}

// NormalizeMarkers puts every do/don't marker at the start of its own line
// followed by exactly one space, dropping bullets and "Do:"/"Don't:"
// labels. Label-only lines without an emoji get the matching marker.
func NormalizeMarkers(s string) string {
	return mapLines(s, func(line string) string {
		line = markerAliases.Replace(line)
		if !strings.Contains(line, MarkDo) && !strings.Contains(line, MarkDont) {
			return labelToMarker(line)
		}
		return splitMarkers(line)
	})
}

func labelToMarker(line string) string {
	body := stripBullet(line)
	var marker string
	if loc := doLabel.FindStringIndex(body); loc != nil {
		marker, body = MarkDo, body[loc[1]:]
	} else if loc := dontLabel.FindStringIndex(body); loc != nil {
		marker, body = MarkDont, body[loc[1]:]
	} else {
		return line
	}
	return joinMarker(marker, body)
}

func splitMarkers(line string) string {
	first := nextMarker(line)
	var lines []string
	if p := strings.TrimRight(line[:first], " \t"); strings.TrimSpace(stripBullet(p)) != "" {
		lines = append(lines, labelToMarker(p))
	}

	rest := line[first:]
	for rest != "" {
		marker := MarkDo
		if strings.HasPrefix(rest, MarkDont) {
			marker = MarkDont
		}
		body := rest[len(marker):]
		next := nextMarker(body)
		if next >= 0 {
			rest = body[next:]
			body = body[:next]
		} else {
			rest = ""
		}

		body = strings.TrimLeft(body, " \t\ufe0f")
		label := doLabel
		if marker == MarkDont {
			label = dontLabel
		}
		if loc := label.FindStringIndex(body); loc != nil {
			body = body[loc[1]:]
		}
		lines = append(lines, joinMarker(marker, body))
	}
	return strings.Join(lines, "\n")
}

func joinMarker(marker, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return marker
	}
	return marker + " " + text
}

func nextMarker(s string) int {
	a := strings.Index(s, MarkDo)
	b := strings.Index(s, MarkDont)
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func stripBullet(line string) string {
	return bulletPrefix.ReplaceAllString(strings.TrimLeft(line, " \t"), "")
}

// ArrowSpacing renders ASCII and unicode arrows as " → " with single
// spaces. HTML comment lines are left alone.
func ArrowSpacing(s string) string {
	return mapLines(s, func(line string) string {
		if strings.Contains(line, "<!--") || strings.Contains(line, "-->") {
			return line
		}
		if !strings.Contains(line, "->") && !strings.Contains(line, "→") {
			return line
		}
		line = arrowToken.ReplaceAllString(line, " → ")
		if strings.HasPrefix(line, " → ") {
			line = strings.TrimPrefix(line, " ")
		}
		return strings.TrimRight(line, " ")
	})
}

// ReplaceEmDashes replaces em dashes with a comma, or a single space when
// the preceding text already ends in punctuation.
func ReplaceEmDashes(s string) string {
	if !strings.Contains(s, "—") {
		return s
	}
	return mapLines(s, func(line string) string {
		parts := strings.Split(line, "—")
		if len(parts) == 1 {
			return line
		}
		var b strings.Builder
		b.WriteString(strings.TrimRight(parts[0], " \t"))
		for _, p := range parts[1:] {
			p = strings.TrimLeft(p, " \t")
			left := strings.TrimSpace(b.String())
			switch {
			case left == "":
			case strings.ContainsAny(left[len(left)-1:], ",.;:!?"):
				b.WriteString(" ")
			default:
				b.WriteString(", ")
			}
			b.WriteString(strings.TrimRight(p, " \t"))
		}
		return b.String()
	})
}

// ColonSpacing removes space before a colon that follows a word and
// inserts one space after a colon directly followed by a letter. URL
// schemes and times are untouched.
func ColonSpacing(s string) string {
	return mapLines(s, func(line string) string {
		if strings.Contains(line, "://") || strings.HasPrefix(line, "|") {
			return line
		}
		r := []rune(line)
		var b strings.Builder
		for i := 0; i < len(r); i++ {
			c := r[i]
			if c == ' ' || c == '\t' {
				j := i
				for j < len(r) && (r[j] == ' ' || r[j] == '\t') {
					j++
				}
				if j < len(r) && r[j] == ':' && i > 0 && unicode.IsLetter(r[i-1]) &&
					(j+1 == len(r) || r[j+1] == ' ') {
					i = j - 1
					continue
				}
			}
			b.WriteRune(c)
			if c == ':' && i > 0 && i+1 < len(r) && unicode.IsLetter(r[i+1]) &&
				(unicode.IsLetter(r[i-1]) || r[i-1] == ')') {
				b.WriteRune(' ')
			}
		}
		return b.String()
	})
}

// BlankAroundHeadings ensures a blank line before and after every heading.
func BlankAroundHeadings(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+8)
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		isHeading := !inFence && headingLine.MatchString(line)
		if isHeading && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
		if isHeading && i+1 < len(lines) && lines[i+1] != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// CollapseBlankLines reduces runs of blank lines to one and trims the
// document.
func CollapseBlankLines(s string) string {
	return strings.TrimSpace(blankRun.ReplaceAllString(s, "\n\n"))
}

// NumberRuleHeadings numbers level-3 headings sequentially, replacing any
// numbering the model already applied.
func NumberRuleHeadings(s string) string {
	n := 0
	return mapLines(s, func(line string) string {
		if !strings.HasPrefix(line, "### ") {
			return line
		}
		n++
		title := strings.TrimSpace(strings.TrimPrefix(line, "### "))
		title = ruleNumberPref.ReplaceAllString(title, "")
		return "### " + strconv.Itoa(n) + ". " + title
	})
}
