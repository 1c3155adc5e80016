// Package llm talks to text generation providers and parses the
// recruiting analyst response format.
package llm

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//go:embed prompt.md
var systemPrompt string

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	defaultTemperature = 0.3
	defaultMaxTokens   = 300
	defaultTimeout     = 60 * time.Second
)

// Generator produces text for a system instruction and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Provider() string
	Model() string
}

// Options are shared by all providers. Zero values fall back to defaults.
type Options struct {
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) withDefaults(model string) Options {
	if o.Model = strings.TrimSpace(o.Model); o.Model == "" {
		o.Model = model
	}
	if o.Temperature <= 0 {
		o.Temperature = defaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// SystemPrompt is the analyst instruction sent with every applicant.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s call failed (%d): %s", e.Provider, e.StatusCode, e.Body)
}

const (
	prefixSummary   = "Summary:"
	prefixScore     = "Score:"
	prefixIssues    = "Issues:"
	prefixFollowUps = "Follow-Ups:"
)

// Assessment is the parsed analyst response.
type Assessment struct {
	Summary string
	// Score is nil unless the score token is made of digits only.
	Score     *int
	ScoreText string
	// Issues is parsed for logging. It is not persisted.
	Issues    string
	FollowUps string
	Raw       string
}

// ParseAssessment scans raw line by line for the labeled fields. Lines
// without a known prefix are ignored; a repeated label overrides the earlier one.
func ParseAssessment(raw string) *Assessment {
	assessment := &Assessment{Raw: raw}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, prefixSummary):
			assessment.Summary = stripLabel(line, prefixSummary)
		case strings.HasPrefix(line, prefixScore):
			assessment.ScoreText = stripLabel(line, prefixScore)
		case strings.HasPrefix(line, prefixFollowUps):
			assessment.FollowUps = stripLabel(line, prefixFollowUps)
		case strings.HasPrefix(line, prefixIssues):
			assessment.Issues = stripLabel(line, prefixIssues)
		}
	}

	assessment.Score = parseScore(assessment.ScoreText)

	return assessment
}

func stripLabel(line, label string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, label, ""))
}

func parseScore(token string) *int {
	if token == "" {
		return nil
	}

	for _, r := range token {
		if r < '0' || r > '9' {
			return nil
		}
	}

	score, err := strconv.Atoi(token)
	if err != nil {
		return nil
	}

	return &score
}
