package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/phrazzld/bhasha-api/internal/generation"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultCatalog []byte

// DefaultCount is the number of items requested for quiz sets and word
// suggestions when the caller does not specify one.
const DefaultCount = 5

// Params carries every value a template may substitute. Only the fields
// listed as required for a kind have to be set.
type Params struct {
	Level      string
	Category   string
	Language   string
	LessonType string
	Message    string
	Word       string
	Input      string
	Count      int
}

// lookup returns the value of a parameter by its catalog name.
func (p Params) lookup(name string) (string, bool) {
	switch name {
	case "level":
		return p.Level, true
	case "category":
		return p.Category, true
	case "language":
		return p.Language, true
	case "lesson_type":
		return p.LessonType, true
	case "message":
		return p.Message, true
	case "word":
		return p.Word, true
	case "input":
		return p.Input, true
	case "count":
		if p.Count <= 0 {
			return "", true
		}
		return fmt.Sprint(p.Count), true
	default:
		return "", false
	}
}

// catalogFile mirrors the YAML layout of templates.yaml.
type catalogFile struct {
	Templates map[string]struct {
		Required []string `yaml:"required"`
		Text     string   `yaml:"text"`
	} `yaml:"templates"`
}

type entry struct {
	required []string
	tmpl     *template.Template
}

// Templater builds prompts from a parsed catalog. It is immutable after
// construction and safe for concurrent use.
type Templater struct {
	entries map[generation.Kind]entry
}

// New returns a Templater backed by the embedded default catalog.
func New() (*Templater, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path selects the embedded default.
func Load(path string) (*Templater, error) {
	if path == "" {
		return New()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt catalog from %s: %v",
			generation.ErrConfiguration, path, err)
	}

	return Parse(data)
}

// Parse builds a Templater from raw YAML. Every generation kind must have a
// template, and every required name must be a known parameter.
func Parse(data []byte) (*Templater, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt catalog: %v", generation.ErrConfiguration, err)
	}

	entries := make(map[generation.Kind]entry, len(file.Templates))
	for name, raw := range file.Templates {
		kind := generation.Kind(name)
		if err := kind.Validate(); err != nil {
			return nil, err
		}

		for _, param := range raw.Required {
			if _, known := (Params{}).lookup(param); !known {
				return nil, fmt.Errorf("%w: template %s requires unknown parameter %q",
					generation.ErrConfiguration, name, param)
			}
		}

		tmpl, err := template.New(name).Option("missingkey=error").Parse(raw.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse template %s: %v",
				generation.ErrConfiguration, name, err)
		}

		entries[kind] = entry{required: raw.Required, tmpl: tmpl}
	}

	for _, kind := range generation.Kinds() {
		if _, ok := entries[kind]; !ok {
			return nil, fmt.Errorf("%w: prompt catalog has no template for %s",
				generation.ErrConfiguration, kind)
		}
	}

	return &Templater{entries: entries}, nil
}

// Build renders the prompt for kind. Count falls back to DefaultCount.
func (t *Templater) Build(kind generation.Kind, params Params) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}

	e, ok := t.entries[kind]
	if !ok {
		return "", fmt.Errorf("%w: no template for %s", generation.ErrConfiguration, kind)
	}

	if params.Count <= 0 {
		params.Count = DefaultCount
	}

	var missing []string
	for _, name := range e.required {
		value, _ := params.lookup(name)
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &generation.InvalidParameterError{Params: missing}
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("%w: failed to execute template %s: %v",
			generation.ErrConfiguration, kind, err)
	}

	return buf.String(), nil
}
