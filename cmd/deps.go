package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/llm"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"
	"github.com/Dolphinator7/airtable-automation/internal/retry"
	"github.com/Dolphinator7/airtable-automation/internal/secrets"

	"go.uber.org/zap"
)

const storeBackoffUnit = time.Second

func newStore(config *AirtableConfig, logger *zap.Logger) (*airtable.Client, error) {
	if config == nil {
		return nil, errors.New("airtable configuration is required")
	}

	token, err := secrets.Load(secrets.Source{
		Name:  "airtable api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	baseID := strings.TrimSpace(config.BaseID)
	if baseID == "" {
		return nil, errors.New("airtable base id is not configured")
	}

	return airtable.New(logger, token, baseID, airtable.Options{
		APIURL:            config.APIURL,
		RequestsPerSecond: config.RequestsPerSecond,
		Timeout:           config.Timeout,
		Retry: retry.Policy{
			MaxAttempts: config.MaxAttempts,
			Backoff:     retry.Exponential(storeBackoffUnit),
		},
	}), nil
}

// newGenerator returns the configured provider wrapped with retries.
// Every attempt is counted in recorder.
func newGenerator(ctx context.Context, config *LLMConfig, logger *zap.Logger, recorder *metrics.Recorder) (llm.Generator, error) {
	if config == nil {
		config = &LLMConfig{}
	}

	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		provider = llm.ProviderGroq
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	opts := llm.Options{
		Model:       config.Model,
		BaseURL:     config.BaseURL,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
		Timeout:     config.Timeout,
	}

	var generator llm.Generator
	switch provider {
	case llm.ProviderGroq:
		generator, err = llm.NewGroq(apiKey, opts)
	case llm.ProviderGemini:
		generator, err = llm.NewGemini(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", provider, err)
	}

	unit := config.BackoffUnit
	if unit <= 0 {
		unit = time.Second
	}

	retrying := llm.WithRetry(generator, retry.Policy{
		MaxAttempts: config.MaxAttempts,
		Backoff:     retry.Exponential(unit),
	}, logger)
	retrying.OnAttempt = func(_ int, err error) {
		recorder.Generation(generator.Provider(), err)
	}

	return retrying, nil
}
