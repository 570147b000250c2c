// Package gemini provides a thin client for the Google Gemini API.
package gemini

import (
    "context"
    "fmt"

    "google.golang.org/genai"

    "investreporter/internal/common"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the genai SDK for narrative generation.
type Client struct {
    client *genai.Client
    model  string
    log    *common.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithModel sets the model to use.
func WithModel(model string) ClientOption {
    return func(c *Client) {
        if model != "" { c.model = model }
    }
}

// WithLogger sets the logger.
func WithLogger(log *common.Logger) ClientOption {
    return func(c *Client) { c.log = log }
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
    genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
        APIKey:  apiKey,
        Backend: genai.BackendGeminiAPI,
    })
    if err != nil {
        return nil, fmt.Errorf("creating gemini client: %w", err)
    }

    c := &Client{
        client: genaiClient,
        model:  DefaultModel,
        log:    common.NewSilentLogger(),
    }
    for _, opt := range opts {
        opt(c)
    }
    return c, nil
}

// GenerateContent generates text from a prompt.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
    c.log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("generating content")

    contents := genai.Text(prompt)
    result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
    if err != nil {
        return "", fmt.Errorf("generating content: %w", err)
    }

    return extractText(result)
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
    if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
        return "", fmt.Errorf("no content generated")
    }

    text := ""
    for _, part := range result.Candidates[0].Content.Parts {
        if part.Text != "" {
            text += part.Text
        }
    }
    return text, nil
}
