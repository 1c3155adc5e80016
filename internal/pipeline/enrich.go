package pipeline

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/llm"
	"github.com/Dolphinator7/airtable-automation/internal/logger"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"

	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Enricher asks a text generator to review every compressed applicant and
// writes the summary, score and follow-up questions back. The Issues line
// of the response is parsed but not written.
type Enricher struct {
	runner
	generator llm.Generator
	maxLogLen int
}

func NewEnricher(deps Deps, generator llm.Generator, maxLogLength int) *Enricher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	e := &Enricher{
		runner:    newRunner(deps, OperationEnrich),
		generator: generator,
		maxLogLen: maxLogLength,
	}
	if generator != nil {
		e.logger = logger.ForProvider(e.logger, generator.Provider(), generator.Model())
	}
	return e
}

func (e *Enricher) Run(ctx context.Context) (*Report, error) {
	if e.generator == nil {
		return nil, errors.New("enrich: text generator is required")
	}
	return e.each(ctx, e.enrich)
}

func (e *Enricher) enrich(ctx context.Context, record airtable.Record, log *zap.Logger) (string, error) {
	doc, _, err := documentOf(record)
	if err != nil {
		return "", err
	}

	if doc.IsEmpty() {
		log.Info("skipping applicant", zap.String("reason", "no compressed json"))
		return metrics.OutcomeSkipped, nil
	}

	payload, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	log.Debug("generate content request",
		zap.Int("payload_length", utf8.RuneCountInString(payload)),
		zap.String("payload_preview", logger.Preview(payload, e.maxLogLen)),
	)

	output, err := e.generator.Generate(ctx, llm.SystemPrompt(), payload)
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	log.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.Preview(output, e.maxLogLen)),
	)

	assessment := llm.ParseAssessment(output)
	if assessment.Issues != "" {
		log.Debug("issues are not stored", zap.String("issues", logger.Preview(assessment.Issues, e.maxLogLen)))
	}

	if _, err := e.deps.Store.Update(ctx, e.deps.Tables.Applicants, record.ID, assessmentFields(assessment)); err != nil {
		return "", err
	}

	log.Info("enriched applicant", zap.String("score", assessment.ScoreText))

	return metrics.OutcomeSucceeded, nil
}

// assessmentFields maps an assessment onto applicant fields. A missing
// score is written as null so a stale value is cleared.
func assessmentFields(a *llm.Assessment) map[string]any {
	var score any
	if a.Score != nil {
		score = *a.Score
	}

	return map[string]any{
		applicant.FieldLLMSummary:   a.Summary,
		applicant.FieldLLMScore:     score,
		applicant.FieldLLMFollowUps: a.FollowUps,
	}
}
