// pkg/registry/schema.go
package registry

// IntentRegistry is the on-disk form of the intent lexicon.
type IntentRegistry struct {
	Version     string            `json:"version" yaml:"version"`
	LastUpdated string            `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Intents     []IntentEntry     `json:"intents" yaml:"intents"`
	Corrections []CorrectionEntry `json:"corrections,omitempty" yaml:"corrections,omitempty"`
	Expressions []ExpressionEntry `json:"expressions,omitempty" yaml:"expressions,omitempty"`
	Examples    []ExampleEntry    `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type IntentEntry struct {
	Intent        string            `json:"intent" yaml:"intent"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords      []string          `json:"keywords" yaml:"keywords"`
	APIEndpoint   string            `json:"apiEndpoint" yaml:"apiEndpoint"`
	Method        string            `json:"method,omitempty" yaml:"method,omitempty"`
	DefaultParams map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Extractor     string            `json:"extractor,omitempty" yaml:"extractor,omitempty"`
	Route         string            `json:"route,omitempty" yaml:"route,omitempty"`
}

type CorrectionEntry struct {
	Misspelling string `json:"misspelling" yaml:"misspelling"`
	Correction  string `json:"correction" yaml:"correction"`
}

type ExpressionEntry struct {
	Name     string   `json:"name" yaml:"name"`
	Variants []string `json:"variants" yaml:"variants"`
}

type ExampleEntry struct {
	Query  string            `json:"query" yaml:"query"`
	Intent string            `json:"intent" yaml:"intent"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// registrySchema is checked before the document is decoded into IntentRegistry.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "intents"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "intents": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["intent", "keywords", "apiEndpoint"],
        "properties": {
          "intent": {"type": "string", "pattern": "^[a-z][a-z0-9-]*$"},
          "description": {"type": "string"},
          "keywords": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "apiEndpoint": {"type": "string", "pattern": "^/"},
          "method": {"type": "string", "enum": ["GET", "POST"]},
          "params": {"type": "object", "additionalProperties": {"type": "string"}},
          "extractor": {"type": "string", "enum": ["none", "search", "category", "detail-by-id", "time-window"]},
          "route": {"type": "string", "enum": ["direct", "cached-list", "cached-upcoming", "detail"]}
        }
      }
    },
    "corrections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["misspelling", "correction"],
        "properties": {
          "misspelling": {"type": "string", "minLength": 1},
          "correction": {"type": "string"}
        }
      }
    },
    "expressions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "variants"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "variants": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "examples": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["query", "intent"],
        "properties": {
          "query": {"type": "string"},
          "intent": {"type": "string"},
          "params": {"type": "object", "additionalProperties": {"type": "string"}}
        }
      }
    }
  }
}`
