package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/profiles"
)

type excludeIDsFilter struct {
	toggle
	ids []string
}

// NewExcludeIDs creates a filter that removes candidates listed in the config.
func NewExcludeIDs() Filter {
	return &excludeIDsFilter{}
}

func (f *excludeIDsFilter) Name() string { return "exclude_ids" }

func (f *excludeIDsFilter) Validate(cfg *Config) error {
	f.ids = nil
	if cfg != nil {
		f.ids = append(f.ids, cfg.ExcludeIDs...)
	}
	return nil
}

func (f *excludeIDsFilter) Apply(_ context.Context, deps Deps, c *profiles.Candidates) (*profiles.Candidates, Step, error) {
	initial := c.Len()
	if len(f.ids) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(profiles.CandidateIDField, f.ids)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by id",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *excludeIDsFilter) Status() Status {
	details := map[string]string{}
	if len(f.ids) > 0 {
		details["ids"] = strings.Join(f.ids, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
