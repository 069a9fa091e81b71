package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/meetscribe/meetscribe/cmd/server/internal/domain/meetings"
	"github.com/meetscribe/meetscribe/pkg/metrics"
)

// Summarizer produces a structured summary from transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*meetings.Summary, error)
}

// GeminiSummarizer calls the Gemini API with a JSON response schema.
// It rotates through its API keys when one is rate limited.
type GeminiSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	timeout    time.Duration
}

// NewGeminiSummarizer builds a summarizer over the supplied keys.
func NewGeminiSummarizer(apiKeys []string, model string, timeout time.Duration) *GeminiSummarizer {
	return &GeminiSummarizer{
		apiKeys: apiKeys,
		model:   model,
		timeout: timeout,
	}
}

// Summarize sends the transcript to Gemini and decodes the schema-
// constrained JSON response. A response that does not parse is an
// error; the caller decides what to do with the record.
func (s *GeminiSummarizer) Summarize(ctx context.Context, transcript string) (*meetings.Summary, error) {
	prompt := fmt.Sprintf(summaryPrompt, transcript)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	summary, err := s.generate(ctx, prompt)
	if err != nil {
		metrics.RecordSummarizationDuration("failed", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordSummarizationDuration("success", time.Since(start).Seconds())
	return summary, nil
}

func (s *GeminiSummarizer) generate(ctx context.Context, prompt string) (*meetings.Summary, error) {
	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.pickKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		cfg := &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   ResponseSchema(),
		}
		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), cfg)
		if err != nil {
			if isQuotaError(err) {
				s.rotateKey()
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("generate content: %w", err)
		}

		text := responseText(result)
		if text == "" {
			return nil, fmt.Errorf("empty response from Gemini")
		}
		return decodeSummary(text)
	}

	return nil, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *GeminiSummarizer) pickKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey]
}

func (s *GeminiSummarizer) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}

// decodeSummary parses the model output into the shared summary type
// and rejects responses missing the required title.
func decodeSummary(text string) (*meetings.Summary, error) {
	var summary meetings.Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("parse summary response: %w", err)
	}
	if summary.Title == "" {
		return nil, fmt.Errorf("summary response missing title")
	}
	return &summary, nil
}
