// Package sanitize turns raw model output into the content the pipeline
// expects. None of its functions fail: when no structured value can be
// recovered the fence-stripped text is returned as is.
package sanitize

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Format is the output shape requested from the model.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z0-9_-]*[ \t]*$\n?")

// StripFences removes code-fence delimiter lines and surrounding whitespace.
func StripFences(s string) string {
	s = fenceLine.ReplaceAllString(s, "")
	s = strings.TrimPrefix(strings.TrimSpace(s), "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the first complete JSON object or array found in s.
// Scanning starts at each '{' or '[' in turn and decodes one value
// incrementally, so trailing prose never forces a rescan of the prefix.
// The boolean is false when no value decodes.
func ExtractJSON(s string) (string, bool) {
	s = StripFences(s)
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		dec.UseNumber()
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), true
		}
		return buf.String(), true
	}
	return "", false
}

// Clean strips fences and, for JSON output, narrows the text to the
// embedded JSON value when one exists.
func Clean(s string, format Format) string {
	stripped := StripFences(s)
	if format != FormatJSON {
		return stripped
	}
	if js, ok := ExtractJSON(stripped); ok {
		return js
	}
	return stripped
}
