package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/llm"
	"github.com/Dolphinator7/airtable-automation/internal/retry"

	"go.uber.org/zap"
)

type scriptedGenerator struct {
	responses []string
	err       error
	systems   []string
	users     []string
}

func (s *scriptedGenerator) Generate(_ context.Context, system, user string) (string, error) {
	s.systems = append(s.systems, system)
	s.users = append(s.users, user)
	if s.err != nil {
		return "", s.err
	}
	response := s.responses[0]
	s.responses = s.responses[1:]
	return response, nil
}

func (s *scriptedGenerator) Provider() string { return "scripted" }

func (s *scriptedGenerator) Model() string { return "scripted-1" }

const compressedDoc = `{"personal":{"Location":"US"},"experience":[{"Company":"Google"}],"salary":{"Preferred Rate":80}}`

func TestEnrichWritesParsedFields(t *testing.T) {
	store := newMemoryStore()
	id := store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: compressedDoc})

	gen := &scriptedGenerator{responses: []string{
		"Summary: Strong engineer.\nScore: 8\nIssues: No end dates, missing currency\nFollow-Ups: - When did you leave Google?",
	}}

	report, err := NewEnricher(testDeps(store), gen, 0).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(gen.systems) != 1 || gen.systems[0] != llm.SystemPrompt() {
		t.Fatalf("expected the analyst system prompt")
	}
	if !strings.Contains(gen.users[0], `"Company":"Google"`) {
		t.Fatalf("expected compressed document as user message, got %s", gen.users[0])
	}

	calls := store.updateCalls()
	if len(calls) != 1 || calls[0].id != id {
		t.Fatalf("expected a single update of %s, got %+v", id, calls)
	}

	fields := calls[0].fields
	if fields[applicant.FieldLLMSummary] != "Strong engineer." {
		t.Fatalf("unexpected summary: %v", fields[applicant.FieldLLMSummary])
	}
	if fields[applicant.FieldLLMScore] != 8 {
		t.Fatalf("unexpected score: %v", fields[applicant.FieldLLMScore])
	}
	if fields[applicant.FieldLLMFollowUps] != "- When did you leave Google?" {
		t.Fatalf("unexpected follow-ups: %v", fields[applicant.FieldLLMFollowUps])
	}

	for key, value := range fields {
		if s, ok := value.(string); ok && strings.Contains(s, "No end dates") {
			t.Fatalf("issues leaked into field %q", key)
		}
	}
	if len(fields) != 3 {
		t.Fatalf("expected exactly three written fields, got %+v", fields)
	}
}

func TestEnrichStoresNonNumericScoreAsNull(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: compressedDoc})

	gen := &scriptedGenerator{responses: []string{"Summary: Thin profile.\nScore: N/A\nFollow-Ups: none"}}

	if _, err := NewEnricher(testDeps(store), gen, 0).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := store.updateCalls()[0].fields
	score, present := fields[applicant.FieldLLMScore]
	if !present {
		t.Fatal("expected score field to be written")
	}
	if score != nil {
		t.Fatalf("expected null score, got %v", score)
	}
}

func TestEnrichGivesUpAfterThreeAttempts(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: compressedDoc})

	var waits []time.Duration
	gen := &scriptedGenerator{err: errors.New("dial tcp: connection refused")}
	retrying := llm.WithRetry(gen, retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Exponential(time.Second),
		Wait: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}, zap.NewNop())

	report, err := NewEnricher(testDeps(store), retrying, 0).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("expected applicant to fail, got %+v", report)
	}
	if len(gen.users) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(gen.users))
	}

	expected := []time.Duration{0, 2 * time.Second, 4 * time.Second}
	if len(waits) != len(expected) {
		t.Fatalf("expected waits %v, got %v", expected, waits)
	}
	for i := range expected {
		if waits[i] != expected[i] {
			t.Fatalf("wait %d: expected %s, got %s", i, expected[i], waits[i])
		}
	}

	if len(store.updateCalls()) != 0 {
		t.Fatalf("expected no fields to be written")
	}
}

func TestEnrichSkipsApplicantsWithoutDocument(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{"Name": "raw"})
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: "{}"})

	gen := &scriptedGenerator{}
	report, err := NewEnricher(testDeps(store), gen, 0).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Skipped != 2 || len(gen.users) != 0 {
		t.Fatalf("expected both applicants skipped without generation, got %+v after %d calls", report, len(gen.users))
	}
}

func TestEnrichRequiresGenerator(t *testing.T) {
	if _, err := NewEnricher(testDeps(newMemoryStore()), nil, 0).Run(context.Background()); err == nil {
		t.Fatal("expected error without generator")
	}
}
