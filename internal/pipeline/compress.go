package pipeline

import (
	"context"
	"fmt"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"

	"go.uber.org/zap"
)

// Compressor folds the child records of every applicant into its
// Compressed JSON field.
type Compressor struct {
	runner
}

func NewCompressor(deps Deps) *Compressor {
	return &Compressor{runner: newRunner(deps, OperationCompress)}
}

func (c *Compressor) Run(ctx context.Context) (*Report, error) {
	return c.each(ctx, c.compress)
}

// Child tables are listed again for every applicant.
func (c *Compressor) compress(ctx context.Context, record airtable.Record, log *zap.Logger) (string, error) {
	tables := c.deps.Tables

	personal, err := c.children(ctx, tables.PersonalDetails, record.ID)
	if err != nil {
		return "", fmt.Errorf("personal details: %w", err)
	}

	work, err := c.children(ctx, tables.WorkExperience, record.ID)
	if err != nil {
		return "", fmt.Errorf("work experience: %w", err)
	}

	salary, err := c.children(ctx, tables.SalaryPreferences, record.ID)
	if err != nil {
		return "", fmt.Errorf("salary preferences: %w", err)
	}

	doc := applicant.NewDocument(personal.First(), work.FieldSets(), salary.First())

	raw, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	if _, err := c.deps.Store.Update(ctx, tables.Applicants, record.ID, map[string]any{
		applicant.FieldCompressedJSON: raw,
	}); err != nil {
		return "", err
	}

	log.Info("compressed applicant",
		zap.Int("personal_matches", personal.Len()),
		zap.Int("experience_entries", work.Len()),
		zap.Int("salary_matches", salary.Len()),
	)

	return metrics.OutcomeSucceeded, nil
}
