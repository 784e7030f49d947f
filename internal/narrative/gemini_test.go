package narrative

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Narrator = (*GeminiNarrator)(nil)

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: nil}},
		}, ""},
		{"single part trimmed", textResponse(genai.Text("  Realisasi berjalan baik.  ")),
			"Realisasi berjalan baik."},
		{"parts joined", textResponse(genai.Text("Realisasi belanja "), genai.Text("mencapai 91%.")),
			"Realisasi belanja mencapai 91%."},
		{"non-text parts skipped", textResponse(
			genai.Blob{MIMEType: "image/png", Data: []byte{0x89}},
			genai.Text("Hanya teks."),
		), "Hanya teks."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractText(tt.resp))
		})
	}
}

func TestNewGeminiNarratorRequiresKey(t *testing.T) {
	_, err := NewGeminiNarrator(context.Background(), "", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewGeminiNarrator(context.Background(), "   ", "", nil)
	require.Error(t, err)
}
