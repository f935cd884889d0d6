package services

import (
	"strings"
	"unicode"
)

// Sentiment labels produced by the classifier and the AI validator.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var positiveWords = []string{
	"great", "good", "excellent", "amazing", "wonderful",
	"fantastic", "best", "love", "perfect", "recommend",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "horrible", "worst",
	"hate", "disappointed", "awful", "slow", "expensive",
}

// topicKeywords maps each topic category to its trigger keywords. A category
// matches on the first keyword found in the text.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"food", []string{"food", "meal", "dish", "taste", "menu", "breakfast", "lunch", "dinner"}},
	{"service", []string{"service", "staff", "waiter", "waitress", "employee", "server"}},
	{"atmosphere", []string{"atmosphere", "ambiance", "decor", "music", "environment", "mood"}},
	{"price", []string{"price", "cost", "expensive", "cheap", "value", "worth"}},
	{"cleanliness", []string{"clean", "dirty", "hygiene", "neat", "tidy", "mess"}},
}

// Classifier is the deterministic lexicon-based sentiment/topic analyzer.
// It backs the heuristic validator and serves as the fallback when the
// language-model provider is unavailable.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

type Classification struct {
	Sentiment string
	Topics    []string
}

// Classify derives a sentiment label and topic tags from free text.
// Sentiment compares whole-word counts of the positive and negative
// lexicons; ties (including zero hits) resolve to neutral.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	var positive, negative int
	for _, w := range positiveWords {
		positive += counts[w]
	}
	for _, w := range negativeWords {
		negative += counts[w]
	}

	sentiment := SentimentNeutral
	if positive > negative {
		sentiment = SentimentPositive
	} else if negative > positive {
		sentiment = SentimentNegative
	}

	var topics []string
	for _, tc := range topicKeywords {
		for _, kw := range tc.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, tc.topic)
				break
			}
		}
	}
	if len(topics) == 0 {
		topics = []string{"general"}
	}

	return Classification{Sentiment: sentiment, Topics: topics}
}
