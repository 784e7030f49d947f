package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"apbdcli/pkg/contracts/domain"
)

// DefaultModel is used when the configuration leaves the model empty.
const DefaultModel = "gemini-1.5-flash"

// GeminiNarrator generates narratives through the Gemini API.
type GeminiNarrator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiNarrator creates a narrator with the given API key and model.
func NewGeminiNarrator(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiNarrator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini API key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiNarrator{
		client: client,
		model:  model,
		logger: logger.With(slog.String("component", "narrative")),
	}, nil
}

// Narrate implements Narrator.
func (n *GeminiNarrator) Narrate(ctx context.Context, rows []domain.AggregateRow, topN int) (string, error) {
	if len(rows) == 0 {
		return "", errors.New("no aggregate rows to narrate")
	}

	prompt := BuildPrompt(rows, topN)

	model := n.client.GenerativeModel(n.model)
	model.SetTemperature(0.4)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", errors.New("model returned no text")
	}

	n.logger.DebugContext(ctx, "narrative generated",
		slog.String("model", n.model),
		slog.Int("prompt_chars", len(prompt)),
		slog.Int("narrative_chars", len(text)),
		slog.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// Close releases the underlying client.
func (n *GeminiNarrator) Close() error {
	return n.client.Close()
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
