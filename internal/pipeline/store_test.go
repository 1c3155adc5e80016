package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Dolphinator7/airtable-automation/internal/airtable"
)

type updateCall struct {
	table  string
	id     string
	fields map[string]any
}

// memoryStore is an in-memory Airtable base. Field values go through a JSON
// round trip so the pipeline sees what the real API would return.
type memoryStore struct {
	mu      sync.Mutex
	tables  map[string]airtable.Records
	updates []updateCall
	nextID  int

	listErr   map[string]error
	createErr func(table string, fields map[string]any) error
	updateErr func(id string) error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tables: make(map[string]airtable.Records), listErr: make(map[string]error)}
}

func (m *memoryStore) add(table string, fields map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(table, fields)
}

func (m *memoryStore) insert(table string, fields map[string]any) string {
	m.nextID++
	id := fmt.Sprintf("rec%03d", m.nextID)
	m.tables[table] = append(m.tables[table], airtable.Record{ID: id, Fields: normalize(fields)})
	return id
}

func (m *memoryStore) records(table string) airtable.Records {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(airtable.Records(nil), m.tables[table]...)
}

func (m *memoryStore) List(_ context.Context, table string) (airtable.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.listErr[table]; err != nil {
		return nil, err
	}
	records := make(airtable.Records, 0, len(m.tables[table]))
	for _, record := range m.tables[table] {
		records = append(records, airtable.Record{ID: record.ID, Fields: normalize(record.Fields)})
	}
	return records, nil
}

func (m *memoryStore) Create(_ context.Context, table string, fields map[string]any) (*airtable.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		if err := m.createErr(table, fields); err != nil {
			return nil, err
		}
	}
	id := m.insert(table, fields)
	return &airtable.Record{ID: id, Fields: normalize(fields)}, nil
}

func (m *memoryStore) Update(_ context.Context, table, id string, fields map[string]any) (*airtable.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		if err := m.updateErr(id); err != nil {
			return nil, err
		}
	}

	m.updates = append(m.updates, updateCall{table: table, id: id, fields: fields})

	for idx, record := range m.tables[table] {
		if record.ID != id {
			continue
		}
		merged := normalize(record.Fields)
		for key, value := range normalize(fields) {
			merged[key] = value
		}
		m.tables[table][idx].Fields = merged
		return &airtable.Record{ID: id, Fields: merged}, nil
	}

	return nil, errors.New("record not found")
}

func (m *memoryStore) updateCalls() []updateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]updateCall(nil), m.updates...)
}

func normalize(fields map[string]any) map[string]any {
	data, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}
