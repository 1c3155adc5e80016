package airtable

import "fmt"

// Record is a single Airtable row.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// Records is an ordered set of rows as returned by List.
type Records []Record

// Link builds the value of a linked-record field pointing at id.
func Link(id string) []string {
	return []string{id}
}

// String returns a string field. ok is false when the field is absent;
// a present field of another type is an error.
func (r Record) String(field string) (value string, ok bool, err error) {
	raw, present := r.Fields[field]
	if !present || raw == nil {
		return "", false, nil
	}

	s, isString := raw.(string)
	if !isString {
		return "", true, fmt.Errorf("field %q of record %s is %T, not a string", field, r.ID, raw)
	}

	return s, true, nil
}

// LinkedTo reports whether the linked-record field holds exactly [id].
func (r Record) LinkedTo(field, id string) bool {
	switch links := r.Fields[field].(type) {
	case []any:
		if len(links) != 1 {
			return false
		}
		linked, ok := links[0].(string)
		return ok && linked == id
	case []string:
		return len(links) == 1 && links[0] == id
	default:
		return false
	}
}

// LinkedTo keeps the records whose field links exactly to id, preserving order.
func (rs Records) LinkedTo(field, id string) Records {
	matched := make(Records, 0)
	for _, record := range rs {
		if record.LinkedTo(field, id) {
			matched = append(matched, record)
		}
	}
	return matched
}

// FieldSets returns the field maps of the records in order.
func (rs Records) FieldSets() []map[string]any {
	sets := make([]map[string]any, 0, len(rs))
	for _, record := range rs {
		sets = append(sets, record.Fields)
	}
	return sets
}

// First returns the fields of the first record, or an empty map.
func (rs Records) First() map[string]any {
	if len(rs) == 0 || rs[0].Fields == nil {
		return map[string]any{}
	}
	return rs[0].Fields
}

func (rs Records) Len() int {
	return len(rs)
}
