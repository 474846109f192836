package intent

import (
	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/textnorm"
)

// Analysis is the per-question classification result.
type Analysis struct {
	Intent      string   `json:"intent"`
	Score       int      `json:"score"`
	Params      Params   `json:"params"`
	Corrected   string   `json:"corrected"`
	Normalized  string   `json:"normalized"`
	Expressions []string `json:"expressions,omitempty"`
	Scores      []Score  `json:"scores,omitempty"`
}

// Known reports whether an intent was selected.
func (a Analysis) Known() bool {
	return a.Intent != Unknown
}

// Analyzer runs correction, normalization, scoring and extraction for one
// lexicon. It is safe for concurrent use.
type Analyzer struct {
	lex         *lexicon.Lexicon
	corrector   *textnorm.Corrector
	scorer      *Scorer
	expressions []lexicon.Expression
}

func NewAnalyzer(lex *lexicon.Lexicon) *Analyzer {
	exprs := make([]lexicon.Expression, len(lex.Expressions))
	for i, e := range lex.Expressions {
		variants := make([]string, 0, len(e.Variants))
		for _, v := range e.Variants {
			if n := textnorm.Normalize(v); n != "" {
				variants = append(variants, n)
			}
		}
		exprs[i] = lexicon.Expression{Name: e.Name, Variants: variants}
	}

	return &Analyzer{
		lex:         lex,
		corrector:   textnorm.NewCorrector(lex.Corrections),
		scorer:      NewScorer(lex.Intents),
		expressions: exprs,
	}
}

// Lexicon returns the table the analyzer was built from.
func (a *Analyzer) Lexicon() *lexicon.Lexicon {
	return a.lex
}

// Analyze classifies query. Params stay nil for Unknown.
func (a *Analyzer) Analyze(query string) Analysis {
	corrected := a.corrector.Correct(query)
	normalized := textnorm.Normalize(corrected)
	scores := a.scorer.Score(normalized)

	result := Analysis{
		Intent:      Select(scores),
		Corrected:   corrected,
		Normalized:  normalized,
		Expressions: a.matchExpressions(normalized),
		Scores:      scores,
	}
	if !result.Known() {
		return result
	}

	result.Score = scores[0].Score
	if def, ok := a.lex.Find(result.Intent); ok {
		result.Params = ExtractParams(def.Extractor, corrected, def.DefaultParams)
	}
	return result
}

func (a *Analyzer) matchExpressions(normalized string) []string {
	var names []string
	for _, e := range a.expressions {
		for _, v := range e.Variants {
			if textnorm.ContainsPhrase(normalized, v) {
				names = append(names, e.Name)
				break
			}
		}
	}
	return names
}
