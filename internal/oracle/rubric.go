package oracle

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"debate-arena/internal/domain"
)

var (
	evidenceMarkers = []string{"because", "for example", "for instance", "according to", "study", "studies", "data", "research", "percent", "%", "statistics", "evidence"}
	logicMarkers    = []string{"therefore", "thus", "hence", "so ", "which means", "as a result", "consequently", "if ", "then"}
	rebuttalMarkers = []string{"however", "but ", "although", "opponents", "critics", "the other side", "some argue", "on the contrary", "while "}
	persuadeMarkers = []string{"should", "must", "imagine", "consider", "clearly", "crucially", "we need", "it is time"}
)

// RubricScorer grades arguments locally from surface features. It is
// deterministic and used when no model is configured.
type RubricScorer struct{}

func NewRubricScorer() *RubricScorer { return &RubricScorer{} }

func (RubricScorer) Score(ctx context.Context, req Request) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	text := strings.ToLower(strings.TrimSpace(req.Argument))
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' })
	if len(words) == 0 {
		return Assessment{}, fmt.Errorf("empty argument")
	}

	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	avgSentence := float64(len(words)) / float64(sentences)

	c := domain.Criteria{
		Clarity:        clarityScore(avgSentence),
		Relevance:      relevanceScore(words, req.Topic),
		Logic:          clamp(3 + 2*countMarkers(text, logicMarkers)),
		Evidence:       clamp(2 + 2*countMarkers(text, evidenceMarkers) + digitBonus(text)),
		Persuasiveness: clamp(3 + countMarkers(text, persuadeMarkers) + len(words)/40),
		Rebuttal:       clamp(2 + 3*countMarkers(text, rebuttalMarkers)),
	}
	return Assessment{Criteria: c, Feedback: feedbackFor(c)}, nil
}

func clamp(v int) int {
	if v < domain.MinCriterionScore {
		return domain.MinCriterionScore
	}
	if v > domain.MaxCriterionScore {
		return domain.MaxCriterionScore
	}
	return v
}

func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}

func digitBonus(text string) int {
	for _, r := range text {
		if unicode.IsDigit(r) {
			return 2
		}
	}
	return 0
}

// clarityScore peaks for sentences of 10 to 20 words.
func clarityScore(avg float64) int {
	switch {
	case avg < 4:
		return 3
	case avg < 10:
		return 6
	case avg <= 20:
		return 8
	case avg <= 30:
		return 6
	default:
		return 4
	}
}

func relevanceScore(words []string, topic string) int {
	topicWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if len(w) > 3 {
			topicWords[w] = struct{}{}
		}
	}
	if len(topicWords) == 0 {
		return 5
	}
	hits := make(map[string]struct{})
	for _, w := range words {
		if _, ok := topicWords[w]; ok {
			hits[w] = struct{}{}
		}
	}
	return clamp(3 + 7*len(hits)/len(topicWords))
}

func feedbackFor(c domain.Criteria) string {
	weakest, weakestName := c.Clarity, "clarity"
	for _, n := range []struct {
		name string
		v    int
	}{
		{"relevance", c.Relevance}, {"logic", c.Logic}, {"evidence", c.Evidence},
		{"persuasiveness", c.Persuasiveness}, {"rebuttal", c.Rebuttal},
	} {
		if n.v < weakest {
			weakest, weakestName = n.v, n.name
		}
	}
	return fmt.Sprintf("Scored %d/60. Strengthen %s next.", c.Total(), weakestName)
}
