package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youthunion-chat/internal/common/errors"
	"youthunion-chat/pkg/registry"
)

func TestDefault_IsValid(t *testing.T) {
	lex := Default()

	require.Len(t, lex.Intents, 8)
	seen := map[string]bool{}
	for _, def := range lex.Intents {
		assert.False(t, seen[def.Intent], "duplicate %s", def.Intent)
		seen[def.Intent] = true
		assert.NotEmpty(t, def.Keywords, def.Intent)
		assert.Equal(t, "GET", def.HTTPMethod, def.Intent)
	}

	detail, ok := lex.Find(IntentActivityDetail)
	require.True(t, ok)
	assert.Equal(t, RouteDetail, detail.Route)
	assert.Contains(t, detail.APIEndpoint, "{id}")

	upcoming, ok := lex.Find(IntentActivityUpcoming)
	require.True(t, ok)
	assert.Equal(t, Params{"page": "1", "page_size": "5", "upcoming": "true"}, upcoming.DefaultParams)
}

func TestNew_RejectsDuplicateIntent(t *testing.T) {
	intents := []IntentDefinition{
		{Intent: "post-list", Keywords: []string{"tin tức"}, APIEndpoint: "/posts/"},
		{Intent: "post-list", Keywords: []string{"bài viết"}, APIEndpoint: "/posts/"},
	}

	_, err := New(intents, nil, nil, nil)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLexiconInvalid, errors.CodeOf(err))
	assert.Contains(t, err.Error(), `duplicate intent "post-list"`)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		intents []IntentDefinition
		example []Example
		errText string
	}{
		{
			name:    "missing label",
			intents: []IntentDefinition{{APIEndpoint: "/x/"}},
			errText: "has no label",
		},
		{
			name:    "reserved label",
			intents: []IntentDefinition{{Intent: "unknown", Keywords: []string{"xin chào"}, APIEndpoint: "/x/"}},
			errText: `reserved label "unknown"`,
		},
		{
			name:    "missing endpoint",
			intents: []IntentDefinition{{Intent: "x"}},
			errText: "has no api endpoint",
		},
		{
			name:    "unknown extractor",
			intents: []IntentDefinition{{Intent: "x", APIEndpoint: "/x/", Extractor: "magic"}},
			errText: "unknown extractor",
		},
		{
			name:    "unknown route",
			intents: []IntentDefinition{{Intent: "x", APIEndpoint: "/x/", Route: "teleport"}},
			errText: "unknown route",
		},
		{
			name:    "detail without placeholder",
			intents: []IntentDefinition{{Intent: "x", APIEndpoint: "/x/", Route: RouteDetail}},
			errText: "{id} placeholder",
		},
		{
			name:    "example with unknown intent",
			intents: []IntentDefinition{{Intent: "x", APIEndpoint: "/x/"}},
			example: []Example{{Query: "q", Intent: "y"}},
			errText: "unknown intent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.intents, nil, nil, tt.example)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	lex, err := New([]IntentDefinition{{Intent: "x", APIEndpoint: "/x/"}}, nil, nil, nil)
	require.NoError(t, err)

	def, ok := lex.Find("x")
	require.True(t, ok)
	assert.Equal(t, "GET", def.HTTPMethod)
	assert.Equal(t, ExtractNone, def.Extractor)
	assert.Equal(t, RouteDirect, def.Route)
	assert.NotNil(t, def.DefaultParams)

	_, ok = lex.Find("missing")
	assert.False(t, ok)
}

func TestParams_CloneIsIndependent(t *testing.T) {
	p := Params{"page": "1"}
	c := p.Clone()
	c["page"] = "2"

	assert.Equal(t, "1", p["page"])
	assert.Equal(t, Params{}, Params(nil).Clone())
}

func TestRegistryRoundTrip(t *testing.T) {
	lex := Default()

	data, err := registry.MarshalYAML(lex.ToRegistry("1.0.0"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, lex.Intents, loaded.Intents)
	assert.Equal(t, lex.Corrections, loaded.Corrections)
	assert.Equal(t, lex.Expressions, loaded.Expressions)
	assert.Equal(t, lex.Examples, loaded.Examples)
}

func TestLoad_RejectsDuplicateFromFile(t *testing.T) {
	doc := `
version: "1"
intents:
  - intent: post-list
    keywords: ["tin tức"]
    apiEndpoint: /posts/
  - intent: post-list
    keywords: ["bài viết"]
    apiEndpoint: /posts/
`
	path := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLexiconInvalid, errors.CodeOf(err))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLexiconInvalid, errors.CodeOf(err))
}

func TestSummaries(t *testing.T) {
	summaries := Default().Summaries()

	require.Len(t, summaries, 8)
	assert.Equal(t, IntentActivityList, summaries[0].Intent)
	assert.Equal(t, "/activities/", summaries[0].Endpoint)
	assert.Equal(t, "10", summaries[0].Defaults["page_size"])
	assert.Positive(t, summaries[0].Keywords)
}

func TestTrainingPrompt(t *testing.T) {
	lex := Default()
	prompt := lex.TrainingPrompt()

	for _, def := range lex.Intents {
		assert.Contains(t, prompt, def.APIEndpoint)
		assert.Contains(t, prompt, def.Description)
	}
	for _, ex := range lex.Examples {
		assert.Contains(t, prompt, ex.Query)
	}
	assert.Contains(t, prompt, "Viết không dấu")
	assert.True(t, strings.HasPrefix(prompt, "Tôi là một trợ lý ảo"))
}
