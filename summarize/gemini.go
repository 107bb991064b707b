package summarize

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini summarizes with a Gemini model through the GenAI SDK.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini summarizer. An empty apiKey lets the SDK pick
// up GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

func (g *Gemini) Summarize(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(req)), config)
	if err != nil {
		return "", fmt.Errorf("Summarize: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("Summarize: empty response from model")
	}
	return text, nil
}
