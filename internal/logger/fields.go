package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPostingID is the structured log field key for the posting identifier.
	FieldPostingID = "posting_id"
	// FieldPositionCode is the structured log field key for the posting position code.
	FieldPositionCode = "position_code"
	// FieldApplicantID is the structured log field key for the applicant identifier.
	FieldApplicantID = "applicant_id"
	// FieldDocument is the structured log field key for the applicant document.
	FieldDocument = "document"
	// FieldStage is the structured log field key for a grading stage.
	FieldStage = "stage"
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

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PostingFields describes a posting. Empty values are ignored.
func PostingFields(postingID, positionCode string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPostingID, Value: postingID},
		StringField{Key: FieldPositionCode, Value: positionCode},
	)
}

// ApplicantFields describes an applicant. Empty values are ignored.
func ApplicantFields(applicantID, document string) []zap.Field {
	return StringFields(
		StringField{Key: FieldApplicantID, Value: applicantID},
		StringField{Key: FieldDocument, Value: document},
	)
}

// WithPostingFields attaches the posting fields to the provided logger.
func WithPostingFields(logger *zap.Logger, postingID, positionCode string) *zap.Logger {
	return WithFields(logger, PostingFields(postingID, positionCode)...)
}
