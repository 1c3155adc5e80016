package applicant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the denormalized snapshot of an applicant's child records.
type Document struct {
	Personal   map[string]any   `json:"personal"`
	Experience []map[string]any `json:"experience"`
	Salary     map[string]any   `json:"salary"`

	// keys is the number of top-level keys found when parsing.
	keys int
}

// NewDocument builds a document, normalising nil sections to empty ones.
func NewDocument(personal map[string]any, experience []map[string]any, salary map[string]any) *Document {
	if personal == nil {
		personal = map[string]any{}
	}
	if experience == nil {
		experience = []map[string]any{}
	}
	if salary == nil {
		salary = map[string]any{}
	}

	return &Document{
		Personal:   personal,
		Experience: experience,
		Salary:     salary,
		keys:       3,
	}
}

// ParseDocument decodes the Compressed JSON field. A blank value is treated as "{}".
func ParseDocument(raw string) (*Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, fmt.Errorf("parse compressed json: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse compressed json: %w", err)
	}
	doc.keys = len(top)

	return &doc, nil
}

// IsEmpty reports whether the parsed document had no keys at all.
func (d *Document) IsEmpty() bool {
	return d == nil || d.keys == 0
}

// Marshal serializes the document for storage in the Compressed JSON field.
func (d *Document) Marshal() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal compressed json: %w", err)
	}
	return string(data), nil
}
