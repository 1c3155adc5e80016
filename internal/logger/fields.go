package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID identifies a single CLI invocation.
	FieldRunID = "run_id"
	// FieldOperation is the pipeline operation (compress, decompress, shortlist, enrich).
	FieldOperation = "operation"
	// FieldApplicant is the Airtable record id of the applicant being processed.
	FieldApplicant = "applicant_id"
	// FieldTable is the Airtable table name.
	FieldTable = "table"
	// FieldProvider is the text generation provider name.
	FieldProvider = "llm_provider"
	// FieldModel is the text generation model identifier.
	FieldModel = "llm_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ForOperation scopes the logger to a pipeline operation.
func ForOperation(logger *zap.Logger, operation string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldOperation, Value: operation})...)
}

// ForApplicant scopes the logger to a single applicant record.
func ForApplicant(logger *zap.Logger, id string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldApplicant, Value: id})...)
}

// ForProvider attaches the text generation provider and model.
func ForProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}
