package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

type matchResponse struct {
	Candidate matching.CandidateProfile `json:"candidate"`
	Score     int                       `json:"score"`
	Reasons   []string                  `json:"reasons"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	engine, err := matching.NewEngine(matching.DefaultPolicy(), zap.NewNop())
	require.NoError(t, err)
	engine.Now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	return NewServer(Config{}, engine, zap.NewNop())
}

func testPool() *profiles.Candidates {
	return &profiles.Candidates{Items: []matching.CandidateProfile{
		{ID: "al-1", Name: "Aarav", FieldOfStudy: "CSE", Domain: "Software", RoleTitle: "Senior SDE", YearsExperience: 6, GraduationYear: 2022},
		{ID: "al-2", Name: "Bhavna", FieldOfStudy: "Mechanical", Domain: "Core", RoleTitle: "Design Engineer", YearsExperience: 1, GraduationYear: 2010},
	}}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestMatchesUsesLoadedPool(t *testing.T) {
	s := newTestServer(t)
	s.SetPool(testPool())

	rec := do(t, s, http.MethodPost, "/matches", `{"seeker":{"field_of_study":"cse","interested_domain":"Software","career_goal":"mentorship","experience_band":"5-10"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []matchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "al-1", got[0].Candidate.ID)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, []string{
		"Same branch (CSE)",
		"Exact domain match (Software)",
		"6 years experience aligns with preference",
		"Profile fits Mentorship goal",
	}, got[0].Reasons)
}

func TestMatchesInlineCandidates(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/matches", `{
		"seeker": {"field_of_study":"IT","interested_domain":"Data Science","career_goal":"Higher Studies","experience_band":"Any"},
		"candidates": [
			{"id":"x","field_of_study":"Civil","domain":"Construction","role_title":"Site Engineer","years_experience":3,"graduation_year":2000}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/matches", `{"seeker":{"experience_band":"Any"},"candidates":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMatchesInlineCandidatesGetStableIDs(t *testing.T) {
	s := newTestServer(t)
	body := `{
		"seeker": {"field_of_study":"CSE","interested_domain":"Software","career_goal":"Mentorship","experience_band":"5-10"},
		"candidates": [
			{"name":"Vikram Singh","field_of_study":"CSE","domain":"Software","role_title":"Senior SDE","years_experience":6,"graduation_year":2022}
		]
	}`

	var first, second []matchResponse
	rec := do(t, s, http.MethodPost, "/matches", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = do(t, s, http.MethodPost, "/matches", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEmpty(t, first[0].Candidate.ID)
	assert.Equal(t, first[0].Candidate.ID, second[0].Candidate.ID)
}

func TestMatchesWithoutDomainPreference(t *testing.T) {
	s := newTestServer(t)
	s.SetPool(testPool())

	rec := do(t, s, http.MethodPost, "/matches", `{"seeker":{"field_of_study":"CSE","career_goal":"Mentorship","experience_band":"5-10"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got []matchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "al-1", got[0].Candidate.ID)
	// 30 + 0 + 20 + 10 + 10
	assert.Equal(t, 70, got[0].Score)
	assert.Equal(t, []string{
		"Same branch (CSE)",
		"6 years experience aligns with preference",
		"Profile fits Mentorship goal",
	}, got[0].Reasons)
}

func TestMatchesBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed json", body: `{"seeker":`, status: http.StatusBadRequest},
		{name: "missing seeker", body: `{"candidates":[]}`, status: http.StatusBadRequest},
		{name: "invalid band", body: `{"seeker":{"experience_band":"3-4"},"candidates":[]}`, status: http.StatusBadRequest},
		{name: "no pool loaded", body: `{"seeker":{"experience_band":"Any"}}`, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := do(t, s, http.MethodPost, "/matches", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMatchesBodyLimit(t *testing.T) {
	engine, err := matching.NewEngine(matching.DefaultPolicy(), nil)
	require.NoError(t, err)
	s := NewServer(Config{MaxBodyBytes: 16}, engine, nil)

	rec := do(t, s, http.MethodPost, "/matches", `{"seeker":{"experience_band":"Any"},"candidates":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCandidate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/candidates/al-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "lookup before the pool is loaded")

	s.SetPool(testPool())

	rec = do(t, s, http.MethodGet, "/candidates/al-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got matching.CandidateProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Bhavna", got.Name)

	rec = do(t, s, http.MethodGet, "/candidates/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.SetPool(testPool())

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","pool_size":2}`, rec.Body.String())

	do(t, s, http.MethodPost, "/matches", `{"seeker":{"field_of_study":"CSE"}}`)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "mentor_matcher_pool_size 2")
	assert.Contains(t, body, `mentor_matcher_http_requests_total{method="POST",route="/matches",status="200"} 1`)
	assert.Contains(t, body, "mentor_matcher_shortlist_size_count 1")
}

func TestReloadKeepsPreviousPoolOnError(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.Reload(ctx, func(context.Context) (*profiles.Candidates, error) {
		return testPool(), nil
	}))
	require.Equal(t, 2, s.Pool().Len())

	boom := errors.New("directory down")
	err := s.Reload(ctx, func(context.Context) (*profiles.Candidates, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.Pool().Len())
}

func TestWatchPoolStopsWithContext(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	loaded := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.WatchPool(ctx, 5*time.Millisecond, func(context.Context) (*profiles.Candidates, error) {
			select {
			case loaded <- struct{}{}:
			default:
			}
			return testPool(), nil
		})
	}()

	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("pool was never reloaded")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestServersHaveIndependentMetrics(t *testing.T) {
	first := newTestServer(t)
	second := newTestServer(t)

	first.SetPool(testPool())

	rec := do(t, second, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), "mentor_matcher_pool_size 0")
}
