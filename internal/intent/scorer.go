// Package intent classifies normalized chat questions against the lexicon
// and pulls structured Data API parameters out of them.
package intent

import (
	"sort"
	"strings"
	"unicode/utf8"

	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/textnorm"
)

// Unknown is selected when no keyword of any intent matched.
const Unknown = lexicon.UnknownIntent

// Params are the query parameters produced for the selected intent.
type Params = lexicon.Params

// Score is the keyword weight one intent collected for a query.
type Score struct {
	Intent string `json:"intent"`
	Score  int    `json:"score"`
}

// Scorer holds the normalized keywords of every intent, in declaration order.
type Scorer struct {
	intents []scoredIntent
}

type scoredIntent struct {
	name     string
	keywords []string
}

// NewScorer normalizes the keywords once. Keywords that normalize to the
// empty string are dropped.
func NewScorer(intents []lexicon.IntentDefinition) *Scorer {
	s := &Scorer{intents: make([]scoredIntent, len(intents))}
	for i, def := range intents {
		kws := make([]string, 0, len(def.Keywords))
		for _, kw := range def.Keywords {
			if n := textnorm.Normalize(kw); n != "" {
				kws = append(kws, n)
			}
		}
		s.intents[i] = scoredIntent{name: def.Intent, keywords: kws}
	}
	return s
}

// Score sums, per intent, the rune length of every keyword found as a
// substring of normalized. The result is sorted by descending score and
// keeps declaration order among equal scores.
func (s *Scorer) Score(normalized string) []Score {
	scores := make([]Score, len(s.intents))
	for i, in := range s.intents {
		total := 0
		for _, kw := range in.keywords {
			if strings.Contains(normalized, kw) {
				total += utf8.RuneCountInString(kw)
			}
		}
		scores[i] = Score{Intent: in.name, Score: total}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// ScoreIntents is a one-shot helper around NewScorer.
func ScoreIntents(normalized string, intents []lexicon.IntentDefinition) []Score {
	return NewScorer(intents).Score(normalized)
}

// Select returns the top intent of a sorted score list, or Unknown when the
// best score is zero.
func Select(scores []Score) string {
	if len(scores) == 0 || scores[0].Score <= 0 {
		return Unknown
	}
	return scores[0].Intent
}
