package llm

import (
	"context"

	"github.com/Dolphinator7/airtable-automation/internal/retry"

	"go.uber.org/zap"
)

// Retrying retries a Generator according to a retry policy.
type Retrying struct {
	next   Generator
	policy retry.Policy
	logger *zap.Logger

	// OnAttempt is called after every attempt with its error, nil on success.
	OnAttempt func(attempt int, err error)
}

// WithRetry wraps next so every Generate call follows policy.
func WithRetry(next Generator, policy retry.Policy, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

func (r *Retrying) Generate(ctx context.Context, system, user string) (string, error) {
	var output string
	err := r.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		text, err := r.next.Generate(ctx, system, user)
		if r.OnAttempt != nil {
			r.OnAttempt(attempt, err)
		}
		if err != nil {
			r.logger.Warn("text generation attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.policy.Attempts()),
				zap.Error(err),
			)
			return err
		}
		output = text
		return nil
	})
	if err != nil {
		return "", err
	}

	return output, nil
}

func (r *Retrying) Provider() string { return r.next.Provider() }

func (r *Retrying) Model() string { return r.next.Model() }
