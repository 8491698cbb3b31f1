package matching

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when a matching request has an invalid shape.
var ErrInvalidInput = errors.New("invalid input")

// CareerGoal is what the seeker wants out of the mentor relationship.
type CareerGoal string

const (
	GoalMentorship    CareerGoal = "Mentorship"
	GoalInternship    CareerGoal = "Internship"
	GoalCareerSwitch  CareerGoal = "Career Switch"
	GoalHigherStudies CareerGoal = "Higher Studies"
	GoalOther         CareerGoal = "Other"
)

// ParseCareerGoal normalizes user input into a CareerGoal. Unknown values map to GoalOther.
func ParseCareerGoal(s string) CareerGoal {
	switch normalizeEnum(s) {
	case "mentorship":
		return GoalMentorship
	case "internship":
		return GoalInternship
	case "careerswitch":
		return GoalCareerSwitch
	case "higherstudies":
		return GoalHigherStudies
	default:
		return GoalOther
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *CareerGoal) UnmarshalText(text []byte) error {
	*g = ParseCareerGoal(string(text))
	return nil
}

// ExperienceBand is the seeker's preferred mentor experience range.
type ExperienceBand string

const (
	Band0to2   ExperienceBand = "0-2"
	Band2to5   ExperienceBand = "2-5"
	Band5to10  ExperienceBand = "5-10"
	Band10Plus ExperienceBand = "10+"
	BandAny    ExperienceBand = "Any"
)

// ParseExperienceBand normalizes user input into an ExperienceBand.
// An empty value means BandAny.
func ParseExperienceBand(s string) (ExperienceBand, error) {
	switch normalizeEnum(s) {
	case "", "any":
		return BandAny, nil
	case "02", "band0to2":
		return Band0to2, nil
	case "25", "band2to5":
		return Band2to5, nil
	case "510", "band5to10":
		return Band5to10, nil
	case "10+", "10plus", "band10plus":
		return Band10Plus, nil
	default:
		return "", fmt.Errorf("%w: unknown experience band %q", ErrInvalidInput, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ExperienceBand) UnmarshalText(text []byte) error {
	band, err := ParseExperienceBand(string(text))
	if err != nil {
		return err
	}
	*b = band
	return nil
}

// normalizeEnum lowercases and strips separators so "Career Switch",
// "career_switch" and "CareerSwitch" compare equal.
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, s)
}

// SeekerPreferences describes what the seeker is looking for.
type SeekerPreferences struct {
	FieldOfStudy     string         `json:"field_of_study" yaml:"field_of_study" mapstructure:"field-of-study"`
	InterestedDomain string         `json:"interested_domain" yaml:"interested_domain" mapstructure:"interested-domain"`
	CareerGoal       CareerGoal     `json:"career_goal" yaml:"career_goal" mapstructure:"career-goal"`
	ExperienceBand   ExperienceBand `json:"experience_band" yaml:"experience_band" mapstructure:"experience-band"`
	// PassoutPreference is accepted for compatibility but does not affect scoring.
	PassoutPreference string `json:"passout_preference,omitempty" yaml:"passout_preference,omitempty" mapstructure:"passout-preference"`
}

// Normalize trims free-text fields and canonicalizes enum values.
// Case folding is left to the scorers.
func (p SeekerPreferences) Normalize() (SeekerPreferences, error) {
	band, err := ParseExperienceBand(string(p.ExperienceBand))
	if err != nil {
		return SeekerPreferences{}, err
	}
	return SeekerPreferences{
		FieldOfStudy:      strings.TrimSpace(p.FieldOfStudy),
		InterestedDomain:  strings.TrimSpace(p.InterestedDomain),
		CareerGoal:        ParseCareerGoal(string(p.CareerGoal)),
		ExperienceBand:    band,
		PassoutPreference: strings.TrimSpace(p.PassoutPreference),
	}, nil
}

// CandidateProfile is a prospective mentor.
type CandidateProfile struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name,omitempty" yaml:"name,omitempty"`
	FieldOfStudy    string  `json:"field_of_study" yaml:"field_of_study"`
	Domain          string  `json:"domain" yaml:"domain"`
	RoleTitle       string  `json:"role_title" yaml:"role_title"`
	Company         string  `json:"company,omitempty" yaml:"company,omitempty"`
	YearsExperience float64 `json:"years_experience" yaml:"years_experience"`
	AcademicScore   float64 `json:"academic_score" yaml:"academic_score"`
	GraduationYear  int     `json:"graduation_year" yaml:"graduation_year"`
}

// MatchResult is a single shortlisted candidate.
type MatchResult struct {
	Candidate *CandidateProfile `json:"candidate"`
	Score     int               `json:"score"`
	Reasons   []string          `json:"reasons"`
}

// Breakdown holds per-criterion sub-scores for one candidate.
type Breakdown struct {
	Field      int `json:"field"`
	Domain     int `json:"domain"`
	Experience int `json:"experience"`
	Goal       int `json:"goal"`
	Recency    int `json:"recency"`
}

// Total returns the sum of all sub-scores clamped to [0,100].
func (b Breakdown) Total() int {
	return clamp(b.Field+b.Domain+b.Experience+b.Goal+b.Recency, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
