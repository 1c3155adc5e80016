package pipeline

import (
	"context"
	"testing"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/eligibility"
)

func TestShortlistCreatesLeadsForQualifiedApplicants(t *testing.T) {
	store := newMemoryStore()

	qualified := `{"personal":{"Location":"US"},"experience":[{"Company":"A"},{"Company":"B"},{"Company":"C"},{"Company":"D"},{"Company":"E"}],"salary":{"Preferred Rate":80,"Availability (hrs/wk)":25}}`
	expensive := `{"personal":{"Location":"US"},"experience":[{"Company":"A"},{"Company":"B"},{"Company":"C"},{"Company":"D"},{"Company":"E"}],"salary":{"Preferred Rate":150,"Availability (hrs/wk)":25}}`
	tier1 := `{"personal":{"Location":"Germany"},"experience":[{"Company":"Meta"}],"salary":{"Preferred Rate":100,"Availability (hrs/wk)":20}}`

	qualifiedID := store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: qualified})
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: expensive})
	tier1ID := store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: tier1})
	store.add(tables.Applicants, map[string]any{"Name": "not compressed yet"})

	report, err := NewShortlister(testDeps(store), eligibility.New(eligibility.DefaultCriteria())).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 4 || report.Succeeded != 2 || report.Skipped != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	leads := store.records(tables.ShortlistedLeads)
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}

	if !leads[0].LinkedTo(applicant.FieldApplicantLink, qualifiedID) || !leads[1].LinkedTo(applicant.FieldApplicantLink, tier1ID) {
		t.Fatalf("unexpected lead links: %+v", leads)
	}

	for _, lead := range leads {
		if lead.Fields[applicant.FieldScoreReason] != eligibility.Reason {
			t.Fatalf("unexpected reason: %v", lead.Fields[applicant.FieldScoreReason])
		}
	}
	if leads[0].Fields[applicant.FieldCompressedJSON] != qualified {
		t.Fatalf("expected lead to carry the compressed json")
	}
}

func TestShortlistRerunDuplicatesLeads(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{
		applicant.FieldCompressedJSON: `{"personal":{"Location":"India"},"experience":[{"Company":"OpenAI"}],"salary":{"Preferred Rate":40,"Availability (hrs/wk)":40}}`,
	})

	shortlister := NewShortlister(testDeps(store), nil)
	for run := 0; run < 2; run++ {
		if _, err := shortlister.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	if got := len(store.records(tables.ShortlistedLeads)); got != 2 {
		t.Fatalf("expected 2 leads after two runs, got %d", got)
	}
}

func TestShortlistIsolatesMalformedDocuments(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: `{"salary":{"Preferred Rate":"eighty"}}`})
	store.add(tables.Applicants, map[string]any{applicant.FieldCompressedJSON: "not json"})
	store.add(tables.Applicants, map[string]any{
		applicant.FieldCompressedJSON: `{"personal":{"Location":"Canada"},"experience":[{"Company":"Google"}],"salary":{"Preferred Rate":60,"Availability (hrs/wk)":30}}`,
	})

	report, err := NewShortlister(testDeps(store), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 2 || report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
