package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/profiles"
)

type incompleteFilter struct {
	toggle
}

// NewIncomplete creates a filter that removes profiles that cannot be scored.
func NewIncomplete() Filter {
	return &incompleteFilter{}
}

func (f *incompleteFilter) Name() string { return "incomplete_profile" }

func (f *incompleteFilter) Validate(*Config) error { return nil }

func (f *incompleteFilter) Apply(_ context.Context, deps Deps, c *profiles.Candidates) (*profiles.Candidates, Step, error) {
	initial := c.Len()
	excluded := c.ExcludeIncomplete()
	if len(excluded) > 0 {
		deps.Logger.Info("excluding incomplete profiles",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *incompleteFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
