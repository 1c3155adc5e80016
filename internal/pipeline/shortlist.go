package pipeline

import (
	"context"
	"fmt"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/eligibility"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"

	"go.uber.org/zap"
)

// Shortlister creates a Shortlisted Lead for every applicant whose
// compressed document passes the eligibility rules. Leads from previous
// runs are not checked, so reruns create duplicates.
type Shortlister struct {
	runner
	evaluator *eligibility.Evaluator
}

func NewShortlister(deps Deps, evaluator *eligibility.Evaluator) *Shortlister {
	if evaluator == nil {
		evaluator = eligibility.New(eligibility.DefaultCriteria())
	}
	return &Shortlister{runner: newRunner(deps, OperationShortlist), evaluator: evaluator}
}

func (s *Shortlister) Run(ctx context.Context) (*Report, error) {
	for _, status := range s.evaluator.Describe() {
		s.logger.Debug("eligibility rule", zap.String("name", status.Name), zap.Any("details", status.Details))
	}
	return s.each(ctx, s.shortlist)
}

func (s *Shortlister) shortlist(ctx context.Context, record airtable.Record, log *zap.Logger) (string, error) {
	doc, raw, err := documentOf(record)
	if err != nil {
		return "", err
	}

	if doc.IsEmpty() {
		log.Debug("skipping applicant", zap.String("reason", "no compressed json"))
		return metrics.OutcomeSkipped, nil
	}

	result, err := s.evaluator.Evaluate(doc)
	if err != nil {
		return "", fmt.Errorf("evaluate eligibility: %w", err)
	}

	profileFields := []zap.Field{
		zap.Int("years", result.Profile.Years),
		zap.Bool("worked_tier1", result.Profile.WorkedTier1),
		zap.Float64("preferred_rate", result.Profile.PreferredRate),
		zap.Float64("availability", result.Profile.Availability),
		zap.String("location", result.Profile.Location),
	}

	if !result.Qualified {
		log.Debug("applicant not shortlisted", append(profileFields, zap.String("failed_rule", result.FailedRule))...)
		return metrics.OutcomeSkipped, nil
	}

	if _, err := s.deps.Store.Create(ctx, s.deps.Tables.ShortlistedLeads, map[string]any{
		applicant.FieldApplicantLink:  airtable.Link(record.ID),
		applicant.FieldCompressedJSON: raw,
		applicant.FieldScoreReason:    eligibility.Reason,
	}); err != nil {
		return "", err
	}

	log.Info("shortlisted applicant", profileFields...)

	return metrics.OutcomeSucceeded, nil
}
