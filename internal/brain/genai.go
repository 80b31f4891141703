package brain

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel favors the instruction-tuned Gemma family, which has the
// friendliest quota for this kind of high-frequency conversational use.
const DefaultModel = "gemma-3-27b-it"

// DefaultModels is the priority order tried when no model is pinned:
// largest Gemma first, then a smaller Gemma, then Gemini flash.
var DefaultModels = []string{DefaultModel, "gemma-3-12b-it", "gemini-2.0-flash"}

// GenAIAdapter talks to the Gemini API through the official SDK.
type GenAIAdapter struct {
	client *genai.Client
	model  string
}

func NewGenAIAdapter(ctx context.Context, apiKey, model string) (*GenAIAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("genai adapter: API key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genai adapter: create client: %w", err)
	}

	return &GenAIAdapter{client: client, model: model}, nil
}

func (a *GenAIAdapter) Reply(ctx context.Context, req TurnRequest) (TurnReply, error) {
	contents := genai.Text(BuildPrompt(req))

	var config *genai.GenerateContentConfig
	// Gemma models reject the JSON response MIME type; for those the shared
	// prompt contract plus fence stripping carries the JSON discipline.
	if strings.Contains(strings.ToLower(a.model), "gemini") {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	res, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return TurnReply{}, fmt.Errorf("genai generate: %w", err)
	}

	return ParseReply(res.Text())
}

func (a *GenAIAdapter) Model() string { return a.model }

// NewGenAIChain builds the genai adapter for a pinned model, or a fallback
// chain over the default priority list when no model is given. One turn
// still makes at most len(DefaultModels) attempts and the pipeline's
// no-retry contract is untouched: a failed chain yields the fallback reply.
func NewGenAIChain(ctx context.Context, apiKey, model string) (Adapter, error) {
	if strings.TrimSpace(model) != "" {
		return NewGenAIAdapter(ctx, apiKey, model)
	}

	var chain Adapter
	for i := len(DefaultModels) - 1; i >= 0; i-- {
		adapter, err := NewGenAIAdapter(ctx, apiKey, DefaultModels[i])
		if err != nil {
			return nil, err
		}
		if chain == nil {
			chain = adapter
			continue
		}
		chain = NewFallbackAdapter(adapter, chain)
	}
	return chain, nil
}
