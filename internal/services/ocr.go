package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/reviewloop/backend/internal/config"
	"github.com/reviewloop/backend/pkg/logger"
	"github.com/reviewloop/backend/pkg/metrics"
)

// OCRResult carries the receipt extraction outcome. Failure is a value, not
// an error: submissions proceed without receipt text.
type OCRResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// OCRService extracts raw text from receipt images with a vision model.
type OCRService struct {
	config *config.OCRConfig
}

func NewOCRService(cfg *config.OCRConfig) *OCRService {
	return &OCRService{config: cfg}
}

// Configured reports whether the extractor has credentials.
func (s *OCRService) Configured() bool {
	return s.config != nil && s.config.APIKey != ""
}

const ocrPromptTemplate = `Extract ALL visible text from this receipt image.
Read everything from top to bottom, left to right, in %s.
Include headers, line items, totals, footers and notes.
Return ONLY the extracted text, nothing else.`

// ExtractText runs the receipt image through the vision model and returns
// the raw text. The language hint comes from configuration ("eng" default).
func (s *OCRService) ExtractText(ctx context.Context, imageData []byte) OCRResult {
	if !s.Configured() {
		return OCRResult{Success: false, Error: "OCR provider not configured"}
	}
	if len(imageData) == 0 {
		return OCRResult{Success: false, Error: "empty image data"}
	}

	start := time.Now()
	text, err := s.extract(ctx, imageData)
	metrics.ObserveProvider("ocr", "gemini", err, time.Since(start))
	if err != nil {
		logger.Warn().Err(err).Int("image_bytes", len(imageData)).Msg("receipt text extraction failed")
		return OCRResult{Success: false, Error: err.Error()}
	}

	return OCRResult{Success: true, Text: strings.TrimSpace(text)}
}

func (s *OCRService) extract(ctx context.Context, imageData []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("OCR client error: %w", err)
	}

	language := s.config.Language
	if language == "" {
		language = "eng"
	}
	prompt := fmt.Sprintf(ocrPromptTemplate, languageName(language))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, detectImageMIME(imageData)),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, s.config.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("OCR API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty OCR response")
	}
	return text, nil
}

// detectImageMIME sniffs the content type from magic bytes; JPEG when unsure.
func detectImageMIME(data []byte) string {
	switch mime := http.DetectContentType(data); mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp", "application/pdf":
		return mime
	default:
		return "image/jpeg"
	}
}

// languageName maps common ISO 639-2 hints to a name the prompt can use.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "eng", "en":
		return "English"
	case "deu", "de":
		return "German"
	case "fra", "fr":
		return "French"
	case "spa", "es":
		return "Spanish"
	default:
		return "English"
	}
}
