// internal/backends/sentiment.go
package backends

import (
	"context"
	"fmt"
	"strings"
)

// sentimentScorer is a local lexicon scorer. It counts polarity word hits in
// the input and reports the dominant label with a hit-ratio confidence.
type sentimentScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

var defaultPositiveWords = []string{
	"good", "great", "excellent", "happy", "love", "wonderful", "best",
	"fantastic", "amazing", "nice", "enjoy", "helpful", "pleased",
}

var defaultNegativeWords = []string{
	"bad", "terrible", "awful", "sad", "hate", "worst", "horrible",
	"angry", "poor", "broken", "useless", "annoying", "disappointed",
}

func newSentimentScorer(options Options) (*sentimentScorer, error) {
	s := &sentimentScorer{
		positive: wordSet(defaultPositiveWords),
		negative: wordSet(defaultNegativeWords),
	}
	if extra, ok := options["positive_words"].([]any); ok {
		addWords(s.positive, extra)
	}
	if extra, ok := options["negative_words"].([]any); ok {
		addWords(s.negative, extra)
	}
	return s, nil
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func addWords(set map[string]struct{}, words []any) {
	for _, w := range words {
		if s, ok := w.(string); ok {
			set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
	}
}

// Score tallies polarity hits and returns the structured result.
func (s *sentimentScorer) Score(_ context.Context, text string) (Score, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return Score{}, fmt.Errorf("no text to score")
	}

	var positives, negatives int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if _, ok := s.positive[w]; ok {
			positives++
		}
		if _, ok := s.negative[w]; ok {
			negatives++
		}
	}

	total := positives + negatives
	switch {
	case total == 0:
		return Score{Label: "neutral", Confidence: 0.5}, nil
	case positives >= negatives:
		return Score{Label: "positive", Confidence: float64(positives) / float64(total)}, nil
	default:
		return Score{Label: "negative", Confidence: float64(negatives) / float64(total)}, nil
	}
}

// Invoke renders the score as text so sentiment models can participate in
// the aggregate alongside text-generation models.
func (s *sentimentScorer) Invoke(ctx context.Context, input string, _ CallParams) (string, error) {
	score, err := s.Score(ctx, input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (confidence %.2f)", score.Label, score.Confidence), nil
}
