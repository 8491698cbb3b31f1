package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

const (
	ProfilesPath = "/profiles"
	userAgent    = "spigell/mentor-matcher"
	// Max value the directory accepts per page.
	perPage = 100
)

// Client talks to a remote alumni directory that exposes paginated profiles.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	PerPage    int
}

func New(apiURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  token,
		APIURL: strings.TrimRight(apiURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		PerPage:   perPage,
	}
}

// Load fetches every page of profiles. It implements profiles.Source.
func (c *Client) Load(ctx context.Context) (*profiles.Candidates, error) {
	if c.APIURL == "" {
		return nil, fmt.Errorf("directory url is not configured")
	}

	q := url.Values{}
	if c.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(c.PerPage))
	}

	items, err := c.GetItems(ctx, c.APIURL+ProfilesPath, q)
	if err != nil {
		return nil, fmt.Errorf("fetching profiles: %w", err)
	}

	var found []matching.CandidateProfile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &found,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding profiles: %w", err)
	}

	candidates := &profiles.Candidates{Items: found}
	profiles.AssignStableIDs(candidates)

	c.logger.Debug("profiles loaded from directory", zap.Int("count", candidates.Len()))
	return candidates, nil
}
