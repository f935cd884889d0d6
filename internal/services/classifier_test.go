package services

import (
	"reflect"
	"testing"
)

func TestClassifySentiment(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"positive words win", "The food was amazing and the staff were great", SentimentPositive},
		{"negative words win", "Terrible experience, the service was slow and awful", SentimentNegative},
		{"tie resolves neutral", "The food was good but the service was bad", SentimentNeutral},
		{"no sentiment words", "We visited on a Tuesday afternoon", SentimentNeutral},
		{"empty text", "", SentimentNeutral},
		{"whole words only", "goodness gracious", SentimentNeutral},
		{"case insensitive", "GREAT place, LOVE it", SentimentPositive},
		{"repeated words count", "bad bad bad but good", SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.text)
			if got.Sentiment != tt.want {
				t.Errorf("Classify(%q).Sentiment = %q, want %q", tt.text, got.Sentiment, tt.want)
			}
		})
	}
}

func TestClassifyTopics(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single topic", "The meal was delicious", []string{"food"}},
		{"multiple topics", "Great food and friendly staff, very clean place", []string{"food", "service", "cleanliness"}},
		{"substring keyword", "Very expensive for what you get", []string{"price"}},
		{"no topic defaults general", "We had a nice time", []string{"general"}},
		{"atmosphere keywords", "Loved the decor and the music", []string{"atmosphere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.text)
			if !reflect.DeepEqual(got.Topics, tt.want) {
				t.Errorf("Classify(%q).Topics = %v, want %v", tt.text, got.Topics, tt.want)
			}
		})
	}
}

func TestRequiredAspects(t *testing.T) {
	tests := []struct {
		industry string
		count    int
		first    string
	}{
		{"restaurant", 5, "food quality"},
		{"Restaurant", 5, "food quality"},
		{"  hotel  ", 5, "room comfort"},
		{"retail", 4, "product quality"},
		{"laundromat", 1, "overall experience"},
		{"", 1, "overall experience"},
	}

	for _, tt := range tests {
		t.Run(tt.industry, func(t *testing.T) {
			aspects := RequiredAspects(tt.industry)
			if len(aspects) != tt.count {
				t.Fatalf("RequiredAspects(%q) returned %d aspects, want %d", tt.industry, len(aspects), tt.count)
			}
			if aspects[0] != tt.first {
				t.Errorf("RequiredAspects(%q)[0] = %q, want %q", tt.industry, aspects[0], tt.first)
			}
		})
	}
}

func TestAspectKeyword(t *testing.T) {
	tests := []struct {
		aspect string
		want   string
	}{
		{"food quality", "food"},
		{"price/value", "price"},
		{"service", "service"},
		{"Overall Experience", "overall"},
	}

	for _, tt := range tests {
		if got := aspectKeyword(tt.aspect); got != tt.want {
			t.Errorf("aspectKeyword(%q) = %q, want %q", tt.aspect, got, tt.want)
		}
	}
}
