package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/metrics"
)

// Deterministic rejection texts. The validator synthesizes these whenever it
// overrides a model-asserted approval.
const (
	ReasonTooShort       = "Review is too short. Please provide at least 50 characters."
	ReasonMissingAspects = "Review does not cover all required aspects."
	SuggestionAddDetail  = "Please add more detail about your experience."
	FallbackConfirmation = "Thank you for your detailed review!"
	minReviewLength      = 50
)

// ValidationResult is the full assessment attached to a submission, whether
// it came from the language model or the heuristic fallback.
type ValidationResult struct {
	Approved            bool     `json:"approved"`
	Reason              string   `json:"reason"`
	Sentiment           string   `json:"sentiment"`
	Topics              []string `json:"topics"`
	Suggestions         string   `json:"suggestions,omitempty"`
	CoveredAspects      []string `json:"covered_aspects"`
	MissingAspects      []string `json:"missing_aspects"`
	ConfirmationMessage string   `json:"confirmation_message,omitempty"`
}

// ReviewValidator decides whether a review is substantial enough to publish.
type ReviewValidator interface {
	Validate(ctx context.Context, text, industry string) ValidationResult
}

// HeuristicValidator approves a review when every required aspect's leading
// keyword appears in the text and the 50-character minimum is met. It is both
// the offline validator and the fallback path of AIValidator.
type HeuristicValidator struct {
	classifier *Classifier
}

func NewHeuristicValidator(classifier *Classifier) *HeuristicValidator {
	return &HeuristicValidator{classifier: classifier}
}

func (v *HeuristicValidator) Validate(_ context.Context, text, industry string) ValidationResult {
	required := RequiredAspects(industry)
	lower := strings.ToLower(text)

	var covered, missing []string
	for _, aspect := range required {
		if strings.Contains(lower, aspectKeyword(aspect)) {
			covered = append(covered, aspect)
		} else {
			missing = append(missing, aspect)
		}
	}

	classification := v.classifier.Classify(text)
	result := ValidationResult{
		Sentiment:      classification.Sentiment,
		Topics:         classification.Topics,
		CoveredAspects: covered,
		MissingAspects: missing,
	}

	trimmed := strings.TrimSpace(text)
	switch {
	case utf8.RuneCountInString(trimmed) < minReviewLength:
		result.Reason = ReasonTooShort
		result.Suggestions = SuggestionAddDetail
	case len(missing) > 0:
		result.Reason = ReasonMissingAspects
		result.Suggestions = "Please also mention: " + strings.Join(missing, ", ")
	default:
		result.Approved = true
		result.Reason = "Review covers all required aspects"
		result.ConfirmationMessage = FallbackConfirmation
	}

	return result
}

// completer is the slice of LLMClient the validator needs.
type completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AIValidator asks the configured language model to assess aspect coverage,
// then re-checks the approval decision deterministically. Provider failures
// and unparsable responses degrade to the heuristic validator.
type AIValidator struct {
	llm       completer
	heuristic *HeuristicValidator
}

func NewAIValidator(llm completer, heuristic *HeuristicValidator) *AIValidator {
	return &AIValidator{llm: llm, heuristic: heuristic}
}

const validatorSystemPrompt = "You are a review quality analyst for a customer feedback platform. " +
	"Respond with valid JSON only. Do not include any text outside the JSON object."

// modelAssessment is the exact response shape the model is instructed to
// return. Anything that fails to unmarshal into it counts as a provider
// failure.
type modelAssessment struct {
	Approved            bool     `json:"approved"`
	Reason              string   `json:"reason"`
	Sentiment           string   `json:"sentiment"`
	Topics              []string `json:"topics"`
	Suggestions         string   `json:"suggestions"`
	CoveredAspects      []string `json:"covered_aspects"`
	MissingAspects      []string `json:"missing_aspects"`
	ConfirmationMessage string   `json:"confirmation_message"`
}

func (v *AIValidator) Validate(ctx context.Context, text, industry string) ValidationResult {
	required := RequiredAspects(industry)
	prompt := buildValidatorPrompt(text, industry, required)

	content, err := v.llm.Complete(ctx, validatorSystemPrompt, prompt)
	if err != nil {
		logger.Warn().Err(err).Msg("review validation falling back to heuristics")
		metrics.ValidatorFallbacks.Inc()
		return v.heuristic.Validate(ctx, text, industry)
	}

	assessment, err := parseAssessment(content)
	if err != nil {
		logger.Warn().Err(err).Str("content", truncate(content, 200)).Msg("unparsable validator response, falling back to heuristics")
		metrics.ValidatorFallbacks.Inc()
		return v.heuristic.Validate(ctx, text, industry)
	}

	result := ValidationResult{
		Approved:            assessment.Approved,
		Reason:              assessment.Reason,
		Sentiment:           assessment.Sentiment,
		Topics:              assessment.Topics,
		Suggestions:         assessment.Suggestions,
		CoveredAspects:      assessment.CoveredAspects,
		MissingAspects:      assessment.MissingAspects,
		ConfirmationMessage: assessment.ConfirmationMessage,
	}
	if len(result.Topics) == 0 {
		result.Topics = []string{"general"}
	}

	// The model's verdict is advisory. Approval requires full aspect
	// coverage and the minimum length, whatever the model asserted.
	trimmed := strings.TrimSpace(text)
	coverageComplete := len(assessment.CoveredAspects) == len(required) && len(assessment.MissingAspects) == 0

	if utf8.RuneCountInString(trimmed) < minReviewLength {
		result.Approved = false
		result.Reason = ReasonTooShort
		result.Suggestions = SuggestionAddDetail
		result.ConfirmationMessage = ""
	} else if !coverageComplete {
		result.Approved = false
		result.Reason = ReasonMissingAspects
		if len(assessment.MissingAspects) > 0 {
			result.Suggestions = "Please also mention: " + strings.Join(assessment.MissingAspects, ", ")
		} else if assessment.Suggestions != "" {
			result.Suggestions = assessment.Suggestions
		}
		result.ConfirmationMessage = ""
	} else {
		result.Approved = true
	}

	return result
}

func buildValidatorPrompt(text, industry string, required []string) string {
	var sb strings.Builder
	sb.WriteString("Analyze this customer review for a ")
	if industry == "" {
		sb.WriteString("business")
	} else {
		sb.WriteString(industry)
	}
	sb.WriteString(".\n\nReview:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n\nRequired aspects: ")
	sb.WriteString(strings.Join(required, ", "))
	sb.WriteString("\n\nReturn a JSON object with exactly these fields:\n")
	sb.WriteString(`{
  "approved": boolean, whether the review covers every required aspect,
  "reason": string, one sentence explaining the decision,
  "sentiment": "positive" | "negative" | "neutral",
  "topics": array of topic strings mentioned in the review,
  "suggestions": string, an encouraging message telling the reviewer what to add (empty if nothing is missing),
  "covered_aspects": array of required aspects the review covers,
  "missing_aspects": array of required aspects the review does not cover,
  "confirmation_message": string, a short thank-you message to show on approval (empty otherwise)
}`)
	return sb.String()
}

// parseAssessment strictly decodes the model output, tolerating only a
// leading/trailing markdown code fence.
func parseAssessment(content string) (*modelAssessment, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var assessment modelAssessment
	if err := json.Unmarshal([]byte(cleaned), &assessment); err != nil {
		return nil, fmt.Errorf("invalid assessment JSON: %w", err)
	}
	return &assessment, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
