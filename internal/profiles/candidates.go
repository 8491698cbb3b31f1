package profiles

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spigell/mentor-matcher/internal/matching"
)

const (
	CandidateIDField      = "ID"
	CandidateCompanyField = "Company"
)

// Candidates is an ordered candidate pool. Order is significant: the ranker
// breaks score ties by pool position.
type Candidates struct {
	Items []matching.CandidateProfile `json:"items" yaml:"items"`
}

type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	Name       string
	Company    string
	ExcludedAt time.Time
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *matching.CandidateProfile {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Clone returns a copy whose Items can be modified without touching c.
func (c *Candidates) Clone() *Candidates {
	if c == nil {
		return &Candidates{}
	}
	return &Candidates{Items: slices.Clone(c.Items)}
}

func getStringField(c *matching.CandidateProfile, name string) string {
	switch name {
	case CandidateIDField:
		return c.ID
	case CandidateCompanyField:
		return c.Company
	default:
		return ""
	}
}

// Exclude removes candidates whose field matches any of targets and returns
// the removed IDs. The relative order of remaining candidates is preserved.
// The backing array is reused, so Clone a shared pool first.
func (c *Candidates) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}

	var excluded []string
	c.Items = slices.DeleteFunc(c.Items, func(item matching.CandidateProfile) bool {
		if _, ok := set[getStringField(&item, name)]; ok {
			excluded = append(excluded, item.ID)
			return true
		}
		return false
	})
	return excluded
}

// ExcludeIncomplete drops candidates that cannot be scored meaningfully:
// no ID, or neither a field of study nor a domain.
func (c *Candidates) ExcludeIncomplete() []string {
	var excluded []string
	c.Items = slices.DeleteFunc(c.Items, func(item matching.CandidateProfile) bool {
		if item.ID == "" || (item.FieldOfStudy == "" && item.Domain == "") {
			excluded = append(excluded, fmt.Sprintf("%s (%s)", item.ID, item.Name))
			return true
		}
		return false
	})
	return excluded
}

// DumpToTmpFile writes v as indented JSON into a new temporary file and
// returns its name.
func DumpToTmpFile(v any) (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToExcluded converts the given candidates into exclude-file entries.
func ToExcluded(items []*matching.CandidateProfile) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	now := time.Now().UTC()
	for _, c := range items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:         c.ID,
			Name:       c.Name,
			Company:    c.Company,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedCandidatesFromFile reads an exclude file. A missing or empty
// file yields an empty list.
func GetExcludedCandidatesFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedCandidates) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, c := range e.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// ReportByCompany groups candidates by employer for a quick overview.
func (c *Candidates) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range c.Items {
		key := item.Company
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"id":     item.ID,
			"name":   item.Name,
			"role":   item.RoleTitle,
			"field":  item.FieldOfStudy,
			"domain": item.Domain,
		})
	}
	return report
}
