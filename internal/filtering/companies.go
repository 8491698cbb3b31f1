package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/profiles"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewCompanies creates a filter that removes candidates working at companies configured in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.ExcludeCompanies {
		if company = strings.TrimSpace(company); company != "" {
			f.companies = append(f.companies, company)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, c *profiles.Candidates) (*profiles.Candidates, Step, error) {
	initial := c.Len()
	if len(f.companies) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(profiles.CandidateCompanyField, f.companies)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
