package matching

import (
	"errors"
	"fmt"
	"runtime"
)

// Weights are the maximum sub-score of every criterion.
type Weights struct {
	Field      int `mapstructure:"field"`
	Domain     int `mapstructure:"domain"`
	Experience int `mapstructure:"experience"`
	Goal       int `mapstructure:"goal"`
	Recency    int `mapstructure:"recency"`
}

// Sum returns the sum of all maxima.
func (w Weights) Sum() int {
	return w.Field + w.Domain + w.Experience + w.Goal + w.Recency
}

// BandRange is a closed-above, open-below years-of-experience interval.
type BandRange struct {
	// Above is the exclusive lower bound.
	Above float64
	// AtMost is the inclusive upper bound. Ignored when Open is set.
	AtMost float64
	Open   bool
}

// Contains reports whether years falls into the range.
func (r BandRange) Contains(years float64) bool {
	if years <= r.Above {
		return false
	}
	return r.Open || years <= r.AtMost
}

// GoalRules drives the career-goal heuristics.
type GoalRules struct {
	MentorshipMinYears     float64
	MentorshipRoleKeywords []string

	InternshipMaxYears     float64
	InternshipRoleKeywords []string

	HigherStudiesMinAcademic   float64
	HigherStudiesAcademicScore int
	ResearchKeywords           []string

	CareerSwitchScore int
}

// RecencyTier awards Score when the years since graduation are at most MaxYears.
type RecencyTier struct {
	MaxYears int
	Score    int
}

// Policy is the full set of tunable matching constants. A Policy is read-only
// once handed to an Engine.
type Policy struct {
	MinScore int
	Limit    int
	Weights  Weights

	RelatedFieldScore  int
	RelatedDomainScore int
	AnyBandScore       int
	BandMissScore      int
	// ExperienceReasonMin is the experience sub-score from which a reason is emitted.
	ExperienceReasonMin int

	// RelatedFields are groups of interchangeable field-of-study names.
	RelatedFields [][]string
	// DisciplineKeywords mark verbose field names that denote the same discipline.
	DisciplineKeywords []string
	// DomainBuckets maps a bucket name to its member domains.
	DomainBuckets map[string][]string

	Bands map[ExperienceBand]BandRange
	Goals GoalRules

	// RecencyTiers must be sorted by MaxYears ascending.
	RecencyTiers []RecencyTier
	RecencyFloor int

	// Workers bounds scoring parallelism. Zero means GOMAXPROCS.
	Workers int
}

// DefaultPolicy returns the production matching constants.
func DefaultPolicy() Policy {
	return Policy{
		MinScore: 40,
		Limit:    5,
		Weights: Weights{
			Field:      30,
			Domain:     30,
			Experience: 20,
			Goal:       10,
			Recency:    10,
		},
		RelatedFieldScore:   15,
		RelatedDomainScore:  15,
		AnyBandScore:        15,
		BandMissScore:       5,
		ExperienceReasonMin: 15,
		RelatedFields: [][]string{
			{"cse", "it", "computer science"},
			{"ece", "ee", "eee"},
		},
		DisciplineKeywords: []string{"computer", "electronics", "electrical", "mechanical", "civil", "chemical"},
		DomainBuckets: map[string][]string{
			"software":   {"it", "cse", "development", "engineering"},
			"ai/ml":      {"data science", "analytics", "robotics"},
			"management": {"product", "business", "mba"},
			"core":       {"electrical", "mechanical", "civil", "embedded"},
		},
		Bands: map[ExperienceBand]BandRange{
			Band0to2:   {Above: -1, AtMost: 2},
			Band2to5:   {Above: 2, AtMost: 5},
			Band5to10:  {Above: 5, AtMost: 10},
			Band10Plus: {Above: 10, Open: true},
		},
		Goals: GoalRules{
			MentorshipMinYears:         5,
			MentorshipRoleKeywords:     []string{"senior", "lead", "manager"},
			InternshipMaxYears:         5,
			InternshipRoleKeywords:     []string{"sde", "engineer"},
			HigherStudiesMinAcademic:   8.5,
			HigherStudiesAcademicScore: 8,
			ResearchKeywords:           []string{"research", "scientist"},
			CareerSwitchScore:          5,
		},
		RecencyTiers: []RecencyTier{
			{MaxYears: 3, Score: 10},
			{MaxYears: 7, Score: 7},
			{MaxYears: 12, Score: 4},
		},
		RecencyFloor: 2,
	}
}

// Validate reports inconsistent policy values.
func (p Policy) Validate() error {
	var errs []error

	if p.MinScore < 0 || p.MinScore > 100 {
		errs = append(errs, fmt.Errorf("min score %d is out of [0,100]", p.MinScore))
	}
	if p.Limit <= 0 {
		errs = append(errs, fmt.Errorf("limit must be positive, got %d", p.Limit))
	}
	if p.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", p.Workers))
	}

	w := p.Weights
	for name, v := range map[string]int{
		"field": w.Field, "domain": w.Domain, "experience": w.Experience, "goal": w.Goal, "recency": w.Recency,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s weight must not be negative, got %d", name, v))
		}
	}

	partials := []struct {
		name     string
		value    int
		maxValue int
	}{
		{"related field score", p.RelatedFieldScore, w.Field},
		{"related domain score", p.RelatedDomainScore, w.Domain},
		{"any band score", p.AnyBandScore, w.Experience},
		{"band miss score", p.BandMissScore, w.Experience},
		{"career switch score", p.Goals.CareerSwitchScore, w.Goal},
		{"higher studies academic score", p.Goals.HigherStudiesAcademicScore, w.Goal},
		{"recency floor", p.RecencyFloor, w.Recency},
	}
	for _, pt := range partials {
		if pt.value < 0 || pt.value > pt.maxValue {
			errs = append(errs, fmt.Errorf("%s %d is out of [0,%d]", pt.name, pt.value, pt.maxValue))
		}
	}

	for _, band := range []ExperienceBand{Band0to2, Band2to5, Band5to10, Band10Plus} {
		if _, ok := p.Bands[band]; !ok {
			errs = append(errs, fmt.Errorf("experience band %q has no range", band))
		}
	}

	for i, tier := range p.RecencyTiers {
		if tier.Score < 0 || tier.Score > w.Recency {
			errs = append(errs, fmt.Errorf("recency tier %d score %d is out of [0,%d]", i, tier.Score, w.Recency))
		}
		if i > 0 && tier.MaxYears <= p.RecencyTiers[i-1].MaxYears {
			errs = append(errs, fmt.Errorf("recency tiers must be sorted by max years"))
		}
	}

	return errors.Join(errs...)
}

func (p Policy) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}
