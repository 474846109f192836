// Package lexicon holds the static intent table used to classify chat questions.
package lexicon

import (
	"fmt"
	"net/http"
	"strings"

	"youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/models"
	"youthunion-chat/internal/textnorm"
	"youthunion-chat/pkg/registry"
)

// Params are query parameters sent to the Data API.
type Params map[string]string

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ExtractorKind selects the parameter extraction strategy of an intent.
type ExtractorKind string

const (
	ExtractNone       ExtractorKind = "none"
	ExtractSearch     ExtractorKind = "search"
	ExtractCategory   ExtractorKind = "category"
	ExtractDetailByID ExtractorKind = "detail-by-id"
	ExtractTimeWindow ExtractorKind = "time-window"
)

// RouteKind selects how the router obtains data for an intent.
type RouteKind string

const (
	RouteDirect         RouteKind = "direct"
	RouteCachedList     RouteKind = "cached-list"
	RouteCachedUpcoming RouteKind = "cached-upcoming"
	RouteDetail         RouteKind = "detail"
)

// IntentDefinition describes one recognizable user goal.
type IntentDefinition struct {
	Intent        string
	Keywords      []string
	APIEndpoint   string
	HTTPMethod    string
	DefaultParams Params
	Description   string
	Extractor     ExtractorKind
	Route         RouteKind
}

// Correction is a misspelling to canonical spelling pair.
type Correction = textnorm.Correction

// Expression is a group of phrasings that signal what the user wants to
// know (location, time...), independent of the intent.
type Expression struct {
	Name     string
	Variants []string
}

// Example is a sample question with its expected classification.
type Example struct {
	Query  string
	Intent string
	Params Params
}

// Lexicon is immutable after construction and safe for concurrent reads.
type Lexicon struct {
	Intents     []IntentDefinition
	Corrections []Correction
	Expressions []Expression
	Examples    []Example

	byIntent map[string]int
}

// UnknownIntent is the label reported when nothing matched; no registry
// intent may use it.
const UnknownIntent = "unknown"

// New validates the tables and builds a Lexicon. Intent labels must be unique.
func New(intents []IntentDefinition, corrections []Correction, expressions []Expression, examples []Example) (*Lexicon, error) {
	lex := &Lexicon{
		Intents:     make([]IntentDefinition, 0, len(intents)),
		Corrections: corrections,
		Expressions: expressions,
		Examples:    examples,
		byIntent:    make(map[string]int, len(intents)),
	}

	for i, def := range intents {
		if def.Intent == "" {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("intent #%d has no label", i))
		}
		if def.Intent == UnknownIntent {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("intent #%d uses the reserved label %q", i, UnknownIntent))
		}
		if _, dup := lex.byIntent[def.Intent]; dup {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("duplicate intent %q", def.Intent))
		}
		if def.APIEndpoint == "" {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("intent %q has no api endpoint", def.Intent))
		}
		if def.HTTPMethod == "" {
			def.HTTPMethod = http.MethodGet
		}
		if def.Extractor == "" {
			def.Extractor = ExtractNone
		}
		if def.Route == "" {
			def.Route = RouteDirect
		}
		if !validExtractor(def.Extractor) {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("intent %q has unknown extractor %q", def.Intent, def.Extractor))
		}
		if !validRoute(def.Route) {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("intent %q has unknown route %q", def.Intent, def.Route))
		}
		if def.Route == RouteDetail && !strings.Contains(def.APIEndpoint, "{id}") {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("detail intent %q needs an {id} placeholder", def.Intent))
		}
		if def.DefaultParams == nil {
			def.DefaultParams = Params{}
		}

		lex.byIntent[def.Intent] = len(lex.Intents)
		lex.Intents = append(lex.Intents, def)
	}

	for _, ex := range examples {
		if _, ok := lex.byIntent[ex.Intent]; !ok {
			return nil, errors.NewLexiconInvalidError(fmt.Sprintf("example %q refers to unknown intent %q", ex.Query, ex.Intent))
		}
	}

	return lex, nil
}

// Find returns the definition for an intent label.
func (l *Lexicon) Find(intent string) (IntentDefinition, bool) {
	i, ok := l.byIntent[intent]
	if !ok {
		return IntentDefinition{}, false
	}
	return l.Intents[i], true
}

// Summaries lists the intents for display.
func (l *Lexicon) Summaries() []models.IntentSummary {
	out := make([]models.IntentSummary, len(l.Intents))
	for i, def := range l.Intents {
		out[i] = models.IntentSummary{
			Intent:      def.Intent,
			Endpoint:    def.APIEndpoint,
			Method:      def.HTTPMethod,
			Description: def.Description,
			Defaults:    def.DefaultParams.Clone(),
			Keywords:    len(def.Keywords),
		}
	}
	return out
}

func validExtractor(k ExtractorKind) bool {
	switch k {
	case ExtractNone, ExtractSearch, ExtractCategory, ExtractDetailByID, ExtractTimeWindow:
		return true
	}
	return false
}

func validRoute(k RouteKind) bool {
	switch k {
	case RouteDirect, RouteCachedList, RouteCachedUpcoming, RouteDetail:
		return true
	}
	return false
}

// Load reads a registry file (YAML or JSON) into a Lexicon.
func Load(path string) (*Lexicon, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, errors.NewLexiconInvalidError(err.Error())
	}
	return FromRegistry(reg)
}

// FromRegistry converts the file representation.
func FromRegistry(reg *registry.IntentRegistry) (*Lexicon, error) {
	intents := make([]IntentDefinition, len(reg.Intents))
	for i, e := range reg.Intents {
		intents[i] = IntentDefinition{
			Intent:        e.Intent,
			Keywords:      e.Keywords,
			APIEndpoint:   e.APIEndpoint,
			HTTPMethod:    e.Method,
			DefaultParams: Params(e.DefaultParams),
			Description:   e.Description,
			Extractor:     ExtractorKind(e.Extractor),
			Route:         RouteKind(e.Route),
		}
	}

	corrections := make([]Correction, len(reg.Corrections))
	for i, c := range reg.Corrections {
		corrections[i] = Correction{Misspelling: c.Misspelling, Correction: c.Correction}
	}

	expressions := make([]Expression, len(reg.Expressions))
	for i, e := range reg.Expressions {
		expressions[i] = Expression{Name: e.Name, Variants: e.Variants}
	}

	examples := make([]Example, len(reg.Examples))
	for i, e := range reg.Examples {
		examples[i] = Example{Query: e.Query, Intent: e.Intent, Params: Params(e.Params)}
	}

	return New(intents, corrections, expressions, examples)
}

// ToRegistry converts a Lexicon back into its file representation.
func (l *Lexicon) ToRegistry(version string) *registry.IntentRegistry {
	reg := &registry.IntentRegistry{Version: version}
	for _, def := range l.Intents {
		reg.Intents = append(reg.Intents, registry.IntentEntry{
			Intent:        def.Intent,
			Description:   def.Description,
			Keywords:      def.Keywords,
			APIEndpoint:   def.APIEndpoint,
			Method:        def.HTTPMethod,
			DefaultParams: map[string]string(def.DefaultParams),
			Extractor:     string(def.Extractor),
			Route:         string(def.Route),
		})
	}
	for _, c := range l.Corrections {
		reg.Corrections = append(reg.Corrections, registry.CorrectionEntry{Misspelling: c.Misspelling, Correction: c.Correction})
	}
	for _, e := range l.Expressions {
		reg.Expressions = append(reg.Expressions, registry.ExpressionEntry{Name: e.Name, Variants: e.Variants})
	}
	for _, e := range l.Examples {
		reg.Examples = append(reg.Examples, registry.ExampleEntry{Query: e.Query, Intent: e.Intent, Params: map[string]string(e.Params)})
	}
	return reg
}
