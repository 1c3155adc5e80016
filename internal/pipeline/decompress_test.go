package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"
)

func TestDecompressRestoresCompressedChildren(t *testing.T) {
	source := newMemoryStore()
	id := seedApplicant(source, "Ada", "UK", []string{"Google", "Acme"}, 90)

	if _, err := NewCompressor(testDeps(source)).Run(context.Background()); err != nil {
		t.Fatalf("compress: %v", err)
	}

	// Only the applicant with its compressed document survives.
	target := newMemoryStore()
	target.tables[tables.Applicants] = source.records(tables.Applicants)

	report, err := NewDecompressor(testDeps(target)).Run(context.Background())
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	for _, table := range []string{tables.PersonalDetails, tables.WorkExperience, tables.SalaryPreferences} {
		want := source.records(table)
		got := target.records(table)
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d rows, got %d", table, len(want), len(got))
		}
		for idx := range want {
			if !got[idx].LinkedTo(applicant.FieldApplicantLink, id) {
				t.Fatalf("%s row %d is not linked to %s: %+v", table, idx, id, got[idx].Fields)
			}
			for key, value := range want[idx].Fields {
				if key == applicant.FieldApplicantLink {
					continue
				}
				if got[idx].Fields[key] != value {
					t.Fatalf("%s row %d field %q: expected %v, got %v", table, idx, key, value, got[idx].Fields[key])
				}
			}
		}
	}
}

func TestDecompressTwiceDuplicatesRows(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{
		applicant.FieldCompressedJSON: `{"personal":{"Location":"US"},"experience":[{"Company":"A"},{"Company":"B"},{"Company":"C"}],"salary":{"Preferred Rate":50}}`,
	})

	decompressor := NewDecompressor(testDeps(store))
	for run := 0; run < 2; run++ {
		if _, err := decompressor.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	if got := len(store.records(tables.WorkExperience)); got != 6 {
		t.Fatalf("expected 6 work experience rows after two runs, got %d", got)
	}
	if got := len(store.records(tables.PersonalDetails)); got != 2 {
		t.Fatalf("expected 2 personal rows after two runs, got %d", got)
	}
}

func TestDecompressSkipsEmptySections(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{
		applicant.FieldCompressedJSON: `{"personal":{},"experience":[{"Company":"A"}],"salary":{}}`,
	})
	store.add(tables.Applicants, map[string]any{"Name": "No JSON"})

	report, err := NewDecompressor(testDeps(store)).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Succeeded != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(store.records(tables.PersonalDetails)) != 0 || len(store.records(tables.SalaryPreferences)) != 0 {
		t.Fatalf("expected no personal or salary rows")
	}
	if len(store.records(tables.WorkExperience)) != 1 {
		t.Fatalf("expected 1 work experience row")
	}
}

func TestDecompressContinuesAfterCreateFailure(t *testing.T) {
	store := newMemoryStore()
	store.add(tables.Applicants, map[string]any{
		applicant.FieldCompressedJSON: `{"personal":{"Location":"US"},"experience":[{"Company":"A"}],"salary":{"Preferred Rate":50}}`,
	})
	store.createErr = func(table string, _ map[string]any) error {
		if table == tables.PersonalDetails {
			return errors.New("bad status: 422 Unprocessable Entity")
		}
		return nil
	}

	report, err := NewDecompressor(testDeps(store)).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected applicant to be reported failed, got %+v", report)
	}
	if len(store.records(tables.WorkExperience)) != 1 || len(store.records(tables.SalaryPreferences)) != 1 {
		t.Fatalf("expected remaining child records to be created")
	}
}
