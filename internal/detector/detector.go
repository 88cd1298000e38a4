// Package detector classifies text as likely AI-generated using a weighted
// multi-signal heuristic.
package detector

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTextLength is the shortest text the detector looks at.
	MinTextLength = 20
	// SendThreshold classifies arguments at submission time.
	SendThreshold = 0.65
	// QueryThreshold classifies text for ad-hoc queries.
	QueryThreshold = 0.7
)

// Signal weights. The weighted pattern score is scaled by patternScale and
// capped at patternCap; each extra signal adds extraPoints.
const (
	phraseWeight     = 2
	openingWeight    = 3
	sentenceWeight   = 2
	pronounWeight    = 1
	patternScale     = 10
	patternCap       = 60
	extraPoints      = 10
	maxScore         = 100
	sentenceBandLow  = 15
	sentenceBandHigh = 25
	pronounDensity   = 0.01
	entropyLow       = 3.8
	entropyHigh      = 4.4
	punctDensity     = 0.05
	complexWordShare = 0.15
	complexWordLen   = 8
	repetitionMax    = 0.1
)

// Result is the detector contract.
type Result struct {
	IsAI       bool     `json:"isAI"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// Detector is implemented by anything that can classify text.
type Detector interface {
	Detect(ctx context.Context, text string) (Result, error)
}

var phrasePatterns = compileAll(
	`\bit is important to note\b`,
	`\bit'?s worth noting\b`,
	`\bin conclusion\b`,
	`\bfurthermore\b`,
	`\bmoreover\b`,
	`\badditionally\b`,
	`\bin summary\b`,
	`\bdelve into\b`,
	`\bplays? a (crucial|pivotal|vital|significant) role\b`,
	`\bit is (essential|crucial|imperative) to\b`,
	`\ba testament to\b`,
	`\bin today'?s (world|society|digital age|fast-paced)\b`,
	`\bnavigat(e|ing) the complexities\b`,
	`\bmultifaceted\b`,
	`\bon the other hand\b`,
	`\bcomprehensive\b`,
	`\bunderscores?\b`,
	`\bas an ai\b`,
)

var openingPatterns = compileAll(
	`^(certainly|absolutely|great question)\b`,
	`^(firstly|first and foremost|to begin with)\b`,
	`^in (today'?s|the modern|an era)\b`,
	`^(overall|in essence|ultimately),`,
	`^while (it is|there are|some may)\b`,
)

var pronouns = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "mine": {}, "myself": {},
	"we": {}, "us": {}, "our": {}, "ours": {}, "ourselves": {},
	"i'm": {}, "i've": {}, "i'd": {}, "i'll": {}, "we're": {}, "we've": {},
}

var sentenceSplit = regexp.MustCompile(`[.!?]+(\s+|$)`)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// Heuristic is the default Detector. It performs no I/O.
type Heuristic struct {
	threshold float64
}

// NewHeuristic returns a detector classifying at threshold; values outside
// (0,1] fall back to SendThreshold.
func NewHeuristic(threshold float64) *Heuristic {
	if threshold <= 0 || threshold > 1 {
		threshold = SendThreshold
	}
	return &Heuristic{threshold: threshold}
}

// Threshold returns the classification cut-off.
func (h *Heuristic) Threshold() float64 { return h.threshold }

// Detect classifies text. Short texts are never inspected.
func (h *Heuristic) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return Result{Reasons: []string{}}, nil
	}
	confidence, reasons := Score(text)
	return Result{
		IsAI:       confidence >= h.threshold,
		Confidence: confidence,
		Reasons:    reasons,
	}, nil
}

// Score returns the normalized confidence in [0,1] and the signals that fired.
func Score(text string) (float64, []string) {
	reasons := []string{}
	lower := strings.ToLower(text)
	words := tokenize(lower)
	if len(words) == 0 {
		return 0, reasons
	}

	weighted := 0
	phrases := 0
	for _, p := range phrasePatterns {
		phrases += len(p.FindAllStringIndex(lower, -1))
	}
	if phrases > 0 {
		weighted += phrases * phraseWeight
		reasons = append(reasons, fmt.Sprintf("%d AI-typical phrase(s)", phrases))
	}

	sentences := splitSentences(lower)
	openings := 0
	for _, s := range sentences {
		for _, p := range openingPatterns {
			if p.MatchString(s) {
				openings++
			}
		}
	}
	if openings > 0 {
		weighted += openings * openingWeight
		reasons = append(reasons, fmt.Sprintf("%d formulaic sentence opening(s)", openings))
	}

	if avg := averageSentenceLength(sentences); avg >= sentenceBandLow && avg <= sentenceBandHigh {
		weighted += sentenceWeight
		reasons = append(reasons, fmt.Sprintf("uniform sentence length (%.1f words)", avg))
	}

	pronounCount := 0
	for _, w := range words {
		if _, ok := pronouns[w]; ok {
			pronounCount++
		}
	}
	if float64(pronounCount)/float64(len(words)) < pronounDensity {
		weighted += pronounWeight
		reasons = append(reasons, "few personal pronouns")
	}

	score := weighted * patternScale
	if score > patternCap {
		score = patternCap
	}

	if e := charEntropy(lower); e >= entropyLow && e <= entropyHigh {
		score += extraPoints
		reasons = append(reasons, "typical character entropy")
	}
	if punctuationDensity(text) > punctDensity {
		score += extraPoints
		reasons = append(reasons, "dense punctuation")
	}
	if complexShare(words) > complexWordShare {
		score += extraPoints
		reasons = append(reasons, "high share of complex words")
	}
	if repetition(words) < repetitionMax {
		score += extraPoints
		reasons = append(reasons, "little word repetition")
	}

	if score > maxScore {
		score = maxScore
	}
	return float64(score) / maxScore, reasons
}

// tokenize keeps letters, digits, apostrophes and hyphens inside words.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceSplit.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func averageSentenceLength(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len(tokenize(s))
	}
	return float64(total) / float64(len(sentences))
}

func charEntropy(s string) float64 {
	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' {
			freq[r]++
			n++
		}
	}
	if n == 0 {
		return 0
	}
	var h float64
	for _, c := range freq {
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}

func punctuationDensity(s string) float64 {
	total, punct := 0, 0
	for _, r := range s {
		total++
		if unicode.IsPunct(r) {
			punct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(punct) / float64(total)
}

func complexShare(words []string) float64 {
	long := 0
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= complexWordLen {
			long++
		}
	}
	return float64(long) / float64(len(words))
}

// repetition is the share of words that repeat an earlier word.
func repetition(words []string) float64 {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return 1 - float64(len(seen))/float64(len(words))
}
