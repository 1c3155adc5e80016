package pipeline

import (
	"context"
	"fmt"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"

	"go.uber.org/zap"
)

// Decompressor recreates child records from the Compressed JSON field.
// Running it twice creates every child record twice.
type Decompressor struct {
	runner
}

func NewDecompressor(deps Deps) *Decompressor {
	return &Decompressor{runner: newRunner(deps, OperationDecompress)}
}

func (d *Decompressor) Run(ctx context.Context) (*Report, error) {
	return d.each(ctx, d.decompress)
}

func (d *Decompressor) decompress(ctx context.Context, record airtable.Record, log *zap.Logger) (string, error) {
	doc, _, err := documentOf(record)
	if err != nil {
		return "", err
	}

	tables := d.deps.Tables
	attempted, failed := 0, 0

	create := func(table string, fields map[string]any) {
		attempted++
		if _, err := d.deps.Store.Create(ctx, table, linkedFields(fields, record.ID)); err != nil {
			failed++
			log.Error("creating child record failed", zap.String("table", table), zap.Error(err))
		}
	}

	if len(doc.Personal) > 0 {
		create(tables.PersonalDetails, doc.Personal)
	}
	for _, entry := range doc.Experience {
		create(tables.WorkExperience, entry)
	}
	if len(doc.Salary) > 0 {
		create(tables.SalaryPreferences, doc.Salary)
	}

	if failed > 0 {
		return "", fmt.Errorf("%d of %d child records were not created", failed, attempted)
	}

	if attempted == 0 {
		log.Debug("nothing to decompress")
		return metrics.OutcomeSkipped, nil
	}

	log.Info("decompressed applicant", zap.Int("created", attempted))

	return metrics.OutcomeSucceeded, nil
}

// linkedFields copies fields and points the applicant link at id.
func linkedFields(fields map[string]any, id string) map[string]any {
	linked := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		linked[key] = value
	}
	linked[applicant.FieldApplicantLink] = airtable.Link(id)
	return linked
}
