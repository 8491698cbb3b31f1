package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/matching"
)

const (
	FieldSeekerField  = "seeker_field"
	FieldSeekerDomain = "seeker_domain"
	FieldCareerGoal   = "career_goal"
	FieldBand         = "experience_band"
	FieldCandidateID  = "candidate_id"
	FieldScore        = "score"

	// maxFieldLength bounds free-text values copied from requests into logs.
	maxFieldLength = 64
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

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SeekerFields describes a seeker request. Free-text values are truncated.
func SeekerFields(p *matching.SeekerPreferences) []zap.Field {
	if p == nil {
		return nil
	}
	return StringFields(
		StringField{Key: FieldSeekerField, Value: TruncateForLog(p.FieldOfStudy, maxFieldLength)},
		StringField{Key: FieldSeekerDomain, Value: TruncateForLog(p.InterestedDomain, maxFieldLength)},
		StringField{Key: FieldCareerGoal, Value: string(p.CareerGoal)},
		StringField{Key: FieldBand, Value: string(p.ExperienceBand)},
	)
}

// ResultFields describes one ranked candidate.
func ResultFields(r matching.MatchResult) []zap.Field {
	fields := []zap.Field{zap.Int(FieldScore, r.Score)}
	if r.Candidate != nil {
		fields = append(fields, StringFields(StringField{Key: FieldCandidateID, Value: r.Candidate.ID})...)
	}
	return fields
}

// WithSeeker attaches the seeker fields to the provided logger.
func WithSeeker(logger *zap.Logger, p *matching.SeekerPreferences) *zap.Logger {
	return WithFields(logger, SeekerFields(p)...)
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
