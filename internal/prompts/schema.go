package prompts

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"

	"aistyleguide/internal/models"
)

// Schema names for JSON outputs.
const (
	SchemaOutline        = "outline"
	SchemaArticle        = "article"
	SchemaWordList       = "word_list"
	SchemaExtractedBrand = "extracted_brand"
)

const jsonSystem = "You are a precise assistant that replies with a single JSON document and nothing else. " +
	"Do not wrap the JSON in code fences and do not add commentary."

var schemas = map[string]string{
	SchemaOutline:        reflectSchema(&models.Outline{}, "Blog outline"),
	SchemaArticle:        reflectSchema(&models.Article{}, "Blog article"),
	SchemaWordList:       reflectSchema(&models.WordList{}, "Brand word list"),
	SchemaExtractedBrand: reflectSchema(&models.ExtractedBrand{}, "Extracted brand details"),
}

func reflectSchema(v interface{}, title string) string {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.Reflect(v)
	s.Title = title
	s.Version = ""
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Schema returns the JSON schema text for a named output type.
func Schema(name string) (string, bool) {
	s, ok := schemas[name]
	return s, ok
}

// SchemaNames lists the available schemas in sorted order.
func SchemaNames() []string {
	names := make([]string, 0, len(schemas))
	for n := range schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func jsonInstruction(name string) string {
	return "Respond with one JSON object that matches this JSON Schema:\n" + schemas[name] + "\n"
}
