package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/mentor-matcher/internal/matching"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  domain  ", Value: "  Software  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "domain" || fields[0].String != "Software" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithSeeker(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	prefs := &matching.SeekerPreferences{
		FieldOfStudy:     "Computer Science",
		InterestedDomain: strings.Repeat("x", 100),
		CareerGoal:       matching.GoalMentorship,
		ExperienceBand:   matching.BandAny,
	}
	WithSeeker(zap.New(core), prefs).Info("ranking")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldSeekerField] != "Computer Science" {
		t.Fatalf("unexpected seeker field: %v", ctx[FieldSeekerField])
	}
	if ctx[FieldCareerGoal] != "Mentorship" || ctx[FieldBand] != "Any" {
		t.Fatalf("unexpected enum fields: %v", ctx)
	}
	if domain, _ := ctx[FieldSeekerDomain].(string); len(domain) != maxFieldLength+3 {
		t.Fatalf("expected truncated domain, got %d chars", len(domain))
	}

	// nil logger and nil preferences must be tolerated
	WithSeeker(nil, nil).Info("another log")
}

func TestResultFields(t *testing.T) {
	fields := ResultFields(matching.MatchResult{Candidate: &matching.CandidateProfile{ID: "al-1"}, Score: 77})
	if len(fields) != 2 || fields[0].Integer != 77 || fields[1].String != "al-1" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	if fields := ResultFields(matching.MatchResult{Score: 50}); len(fields) != 1 {
		t.Fatalf("expected only the score field, got %+v", fields)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "returns empty when limit non-positive", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates and adds ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "trims surrounding whitespace", input: "  spaced  ", limit: 5, expect: "space..."},
		{name: "counts runes", input: "résumé", limit: 3, expect: "rés..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
