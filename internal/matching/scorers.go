package matching

import (
	"strings"
)

// FieldScore rates how close the candidate's field of study is to the seeker's.
func (p Policy) FieldScore(seeker, candidate string) int {
	s := fold(seeker)
	c := fold(candidate)
	if s == "" || c == "" {
		return 0
	}

	if s == c {
		return p.Weights.Field
	}

	for _, group := range p.RelatedFields {
		if containsFold(group, s) && containsFold(group, c) {
			return min(p.RelatedFieldScore, p.Weights.Field)
		}
	}

	for _, keyword := range p.DisciplineKeywords {
		keyword = fold(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(s, keyword) && strings.Contains(c, keyword) {
			return p.Weights.Field
		}
	}

	return 0
}

// DomainScore rates how close the candidate's professional domain is to the
// seeker's interest.
func (p Policy) DomainScore(seeker, candidate string) int {
	s := fold(seeker)
	c := fold(candidate)
	if s == "" || c == "" {
		return 0
	}

	if s == c || strings.Contains(c, s) || strings.Contains(s, c) {
		return p.Weights.Domain
	}

	for bucket, members := range p.DomainBuckets {
		inBucket := func(v string) bool {
			return v == fold(bucket) || containsFold(members, v)
		}
		if inBucket(s) && inBucket(c) {
			return min(p.RelatedDomainScore, p.Weights.Domain)
		}
	}

	return 0
}

// ExperienceScore rates the candidate's years of experience against the
// seeker's preferred band. A miss still earns BandMissScore, and so does a
// band that does not parse.
func (p Policy) ExperienceScore(band ExperienceBand, years float64) int {
	band, err := ParseExperienceBand(string(band))
	if err != nil {
		return min(p.BandMissScore, p.Weights.Experience)
	}
	if band == BandAny {
		return min(p.AnyBandScore, p.Weights.Experience)
	}

	years = max(years, 0)
	if r, ok := p.Bands[band]; ok && r.Contains(years) {
		return p.Weights.Experience
	}

	return min(p.BandMissScore, p.Weights.Experience)
}

// GoalScore rates how well the candidate's seniority and role suit the
// seeker's career goal.
func (p Policy) GoalScore(goal CareerGoal, c *CandidateProfile) int {
	if c == nil {
		return 0
	}

	rules := p.Goals
	role := fold(c.RoleTitle)
	years := max(c.YearsExperience, 0)

	score := 0
	switch ParseCareerGoal(string(goal)) {
	case GoalMentorship:
		if years > rules.MentorshipMinYears || containsAny(role, rules.MentorshipRoleKeywords) {
			score = p.Weights.Goal
		}
	case GoalInternship:
		if years < rules.InternshipMaxYears || containsAny(role, rules.InternshipRoleKeywords) {
			score = p.Weights.Goal
		}
	case GoalHigherStudies:
		if c.AcademicScore > rules.HigherStudiesMinAcademic {
			score = rules.HigherStudiesAcademicScore
		}
		if containsAny(fold(c.Domain), rules.ResearchKeywords) || containsAny(role, rules.ResearchKeywords) {
			score = max(score, p.Weights.Goal)
		}
	case GoalCareerSwitch:
		// Without the seeker's origin domain every candidate gets the same boost.
		score = rules.CareerSwitchScore
	}

	return clamp(score, 0, p.Weights.Goal)
}

// RecencyScore rates how recently the candidate graduated.
func (p Policy) RecencyScore(currentYear, graduationYear int) int {
	diff := currentYear - graduationYear
	for _, tier := range p.RecencyTiers {
		if diff <= tier.MaxYears {
			return clamp(tier.Score, 0, p.Weights.Recency)
		}
	}
	return clamp(p.RecencyFloor, 0, p.Weights.Recency)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if fold(v) == target {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		k = fold(k)
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
