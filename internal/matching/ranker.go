package matching

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pools smaller than this are scored on the calling goroutine.
const parallelThreshold = 256

// Engine ranks candidate pools against seeker preferences.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	policy Policy
	logger *zap.Logger

	// Now supplies the current time for graduation recency.
	Now func() time.Time
}

// NewEngine validates the policy and builds an Engine.
func NewEngine(policy Policy, logger *zap.Logger) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("matching policy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		policy: policy,
		logger: logger,
		Now:    time.Now,
	}, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Score returns the per-criterion breakdown for a single candidate.
func (e *Engine) Score(prefs SeekerPreferences, c CandidateProfile) (Breakdown, error) {
	normalized, err := prefs.Normalize()
	if err != nil {
		return Breakdown{}, err
	}
	return e.breakdown(&normalized, &c, e.Now().Year()), nil
}

// FindMatches scores every candidate in pool and returns at most Policy.Limit
// results with a score of at least Policy.MinScore, best first. Candidates
// with equal scores keep their pool order. The pool is not modified and the
// returned results point into it.
func (e *Engine) FindMatches(prefs *SeekerPreferences, pool []CandidateProfile) ([]MatchResult, error) {
	if prefs == nil {
		return nil, fmt.Errorf("%w: seeker preferences are required", ErrInvalidInput)
	}
	normalized, err := prefs.Normalize()
	if err != nil {
		return nil, err
	}
	prefs = &normalized

	year := e.Now().Year()
	scored := make([]MatchResult, len(pool))

	if len(pool) < parallelThreshold || e.policy.workers() == 1 {
		for i := range pool {
			scored[i] = e.evaluate(prefs, &pool[i], year)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.policy.workers())
		for i := range pool {
			g.Go(func() error {
				scored[i] = e.evaluate(prefs, &pool[i], year)
				return nil
			})
		}
		// evaluate never fails
		_ = g.Wait()
	}

	shortlist := make([]MatchResult, 0, min(len(scored), e.policy.Limit))
	for _, m := range scored {
		if m.Score < e.policy.MinScore {
			continue
		}
		shortlist = append(shortlist, m)
	}

	sort.SliceStable(shortlist, func(i, j int) bool {
		return shortlist[i].Score > shortlist[j].Score
	})

	if len(shortlist) > e.policy.Limit {
		shortlist = shortlist[:e.policy.Limit]
	}

	e.logger.Debug("matching completed",
		zap.Int("pool", len(pool)),
		zap.Int("shortlisted", len(shortlist)),
		zap.Int("min_score", e.policy.MinScore),
	)

	return shortlist, nil
}

func (e *Engine) breakdown(prefs *SeekerPreferences, c *CandidateProfile, year int) Breakdown {
	p := e.policy
	return Breakdown{
		Field:      p.FieldScore(prefs.FieldOfStudy, c.FieldOfStudy),
		Domain:     p.DomainScore(prefs.InterestedDomain, c.Domain),
		Experience: p.ExperienceScore(prefs.ExperienceBand, c.YearsExperience),
		Goal:       p.GoalScore(prefs.CareerGoal, c),
		Recency:    p.RecencyScore(year, c.GraduationYear),
	}
}

func (e *Engine) evaluate(prefs *SeekerPreferences, c *CandidateProfile, year int) MatchResult {
	b := e.breakdown(prefs, c, year)
	return MatchResult{
		Candidate: c,
		Score:     b.Total(),
		Reasons:   e.reasons(prefs, c, b),
	}
}

// reasons narrates notable criteria in evaluation order. Recency is never narrated.
func (e *Engine) reasons(prefs *SeekerPreferences, c *CandidateProfile, b Breakdown) []string {
	p := e.policy
	out := make([]string, 0, 4)

	switch {
	case b.Field == p.Weights.Field && b.Field > 0:
		out = append(out, fmt.Sprintf("Same branch (%s)", c.FieldOfStudy))
	case b.Field == p.RelatedFieldScore && b.Field > 0:
		out = append(out, fmt.Sprintf("Related branch (%s)", c.FieldOfStudy))
	}

	switch {
	case b.Domain == p.Weights.Domain && b.Domain > 0:
		out = append(out, fmt.Sprintf("Exact domain match (%s)", c.Domain))
	case b.Domain == p.RelatedDomainScore && b.Domain > 0:
		out = append(out, "Related domain field")
	}

	if b.Experience >= p.ExperienceReasonMin {
		years := strconv.FormatFloat(max(c.YearsExperience, 0), 'f', -1, 64)
		out = append(out, fmt.Sprintf("%s years experience aligns with preference", years))
	}

	if b.Goal > 0 {
		out = append(out, fmt.Sprintf("Profile fits %s goal", prefs.CareerGoal))
	}

	return out
}
