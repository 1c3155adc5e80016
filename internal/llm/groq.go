package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultGroqURL   = "https://api.groq.com/openai/v1"
	defaultGroqModel = "llama3-8b-8192"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Groq calls an OpenAI-compatible chat completions endpoint.
type Groq struct {
	apiKey  string
	options Options

	HTTPClient *http.Client
}

// NewGroq creates a chat completions client.
func NewGroq(apiKey string, opts Options) (*Groq, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}

	opts = opts.withDefaults(defaultGroqModel)
	if opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); opts.BaseURL == "" {
		opts.BaseURL = defaultGroqURL
	}

	return &Groq{
		apiKey:     apiKey,
		options:    opts,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	}, nil
}

func (g *Groq) Generate(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(&chatRequest{
		Model: g.options.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: g.options.Temperature,
		MaxTokens:   g.options.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.options.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: ProviderGroq, StatusCode: resp.StatusCode, Body: string(data)}
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", errors.New("groq api returned no choices")
	}

	output := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("groq api returned empty response")
	}

	return output, nil
}

func (g *Groq) Provider() string { return ProviderGroq }

func (g *Groq) Model() string { return g.options.Model }
