// Package pipeline implements the applicant operations: compress,
// decompress, shortlist and enrich. Every operation lists the applicants
// once and handles them one by one; a failing applicant is logged and
// counted, never fatal for the batch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/logger"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"

	"go.uber.org/zap"
)

const (
	OperationCompress   = "compress"
	OperationDecompress = "decompress"
	OperationShortlist  = "shortlist"
	OperationEnrich     = "enrich"
)

// Store is the record access the operations need.
type Store interface {
	List(ctx context.Context, table string) (airtable.Records, error)
	Create(ctx context.Context, table string, fields map[string]any) (*airtable.Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (*airtable.Record, error)
}

// Deps aggregates dependencies shared across all operations.
type Deps struct {
	Store   Store
	Tables  applicant.Tables
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Report summarises one run of an operation.
type Report struct {
	Operation string
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}

func (r *Report) add(outcome string) {
	switch outcome {
	case metrics.OutcomeSucceeded:
		r.Succeeded++
	case metrics.OutcomeSkipped:
		r.Skipped++
	case metrics.OutcomeFailed:
		r.Failed++
	}
}

// Fields returns the report as log fields.
func (r *Report) Fields() []zap.Field {
	return []zap.Field{
		zap.String(logger.FieldOperation, r.Operation),
		zap.Int("total", r.Total),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
	}
}

// handler processes a single applicant and returns its outcome.
type handler func(ctx context.Context, record airtable.Record, log *zap.Logger) (string, error)

type runner struct {
	deps      Deps
	operation string
	logger    *zap.Logger
}

func newRunner(deps Deps, operation string) runner {
	deps.Tables = deps.Tables.WithDefaults()
	return runner{
		deps:      deps,
		operation: operation,
		logger:    logger.ForOperation(deps.Logger, operation),
	}
}

// each lists the applicants and feeds them to handle sequentially. Only a
// failure to list the applicants is returned as an error.
func (r runner) each(ctx context.Context, handle handler) (*Report, error) {
	started := time.Now()
	r.logger.Info(fmt.Sprintf("starting %s", r.operation))

	if r.deps.Store == nil {
		return nil, fmt.Errorf("%s: record store is required", r.operation)
	}

	applicants, err := r.deps.Store.List(ctx, r.deps.Tables.Applicants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.operation, err)
	}

	report := &Report{Operation: r.operation, Total: applicants.Len()}
	r.logger.Info("got applicants", zap.Int("count", applicants.Len()))

	for _, record := range applicants {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("stopping early", zap.Error(err))
			break
		}

		log := logger.ForApplicant(r.logger, record.ID)

		outcome, err := handle(ctx, record, log)
		if err != nil {
			outcome = metrics.OutcomeFailed
			log.Error(fmt.Sprintf("%s failed", r.operation), zap.Error(err))
		}

		report.add(outcome)
		r.deps.Metrics.Record(r.operation, outcome)
	}

	r.deps.Metrics.RunFinished(r.operation, time.Since(started), time.Now())
	r.logger.Info(fmt.Sprintf("%s finished", r.operation), report.Fields()...)

	return report, nil
}

// children returns the records of table linked to the applicant.
func (r runner) children(ctx context.Context, table, applicantID string) (airtable.Records, error) {
	records, err := r.deps.Store.List(ctx, table)
	if err != nil {
		return nil, err
	}
	return records.LinkedTo(applicant.FieldApplicantLink, applicantID), nil
}

// documentOf parses the applicant's Compressed JSON field.
func documentOf(record airtable.Record) (*applicant.Document, string, error) {
	raw, _, err := record.String(applicant.FieldCompressedJSON)
	if err != nil {
		return nil, "", err
	}

	doc, err := applicant.ParseDocument(raw)
	if err != nil {
		return nil, "", err
	}

	return doc, raw, nil
}
