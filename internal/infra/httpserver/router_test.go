package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/msetiadi/leadintel/internal/application/analysis"
	appprofiles "github.com/msetiadi/leadintel/internal/application/profiles"
	"github.com/msetiadi/leadintel/internal/domain/profiles"
	"github.com/msetiadi/leadintel/internal/domain/reports"
	"github.com/msetiadi/leadintel/internal/infra/httpserver"
)

var jwtSecret = []byte("test-secret")

const goodCompletion = `{
	"tier1": {"status": "Urgent/High-Priority", "items": ["CEO stepping down"], "hasSignals": true},
	"tier2": {"status": "No relevant signals identified", "items": [], "hasSignals": false},
	"insight": {"content": "Pitch a CEO succession search.", "hasSignals": true}
}`

type stubClient struct {
	completion string
}

func (s *stubClient) Generate(ctx context.Context, text string) (string, error) {
	return s.completion, nil
}

func (s *stubClient) Model() string { return "test-model" }

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*profiles.Profile
}

func (m *memProfileRepo) Get(ctx context.Context, id string) (*profiles.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProfileRepo) ConsumeUsage(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.UsageCount >= p.UsageLimit {
		return false, nil
	}
	p.UsageCount++
	return true, nil
}

func (m *memProfileRepo) ResetUsage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		p.UsageCount = 0
	}
	return nil
}

func (m *memProfileRepo) SetLimit(ctx context.Context, id string, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		p.UsageLimit = limit
	}
	return nil
}

func (m *memProfileRepo) List(ctx context.Context, page, pageSize int) ([]*profiles.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*profiles.Profile
	for _, p := range m.profiles {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

type memReportRepo struct{}

func (memReportRepo) Save(ctx context.Context, rep *reports.Report) error { return nil }
func (memReportRepo) Paginate(ctx context.Context, page, pageSize int) ([]*reports.Report, error) {
	return []*reports.Report{}, nil
}
func (memReportRepo) LatestByUser(ctx context.Context, userID string) (*reports.Report, error) {
	return nil, nil
}

func newTestServer(t *testing.T, repo *memProfileRepo) *httptest.Server {
	t.Helper()

	analysisSvc := &appanalysis.Service{
		Client:   &stubClient{completion: goodCompletion},
		Profiles: repo,
		Reports:  memReportRepo{},
	}
	adminSvc := &appprofiles.Service{Repo: repo, Reports: memReportRepo{}}

	handler := httpserver.NewRouter(analysisSvc, adminSvc, httpserver.Options{
		JWTSecret:           jwtSecret,
		RateLimitCapacity:   100,
		RateLimitRefillRate: 100,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwtSecret)
	require.NoError(t, err)
	return signed
}

func defaultRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[string]*profiles.Profile{
		"user-1":  {ID: "user-1", Email: "user@example.com", UsageCount: 0, UsageLimit: 5, Role: profiles.RoleUser},
		"admin-1": {ID: "admin-1", Email: "admin@example.com", UsageCount: 0, UsageLimit: 100, Role: profiles.RoleAdmin},
	}}
}

func postAnalyze(t *testing.T, srv *httptest.Server, token, text string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/analyze", strings.NewReader(`{"text": "`+text+`"}`))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestHealthProbe(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	resp, err := http.Get(srv.URL + "/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Model     string `json:"model"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "online", body.Status)
	assert.Equal(t, "test-model", body.Model)
	_, err = time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}

func TestAnalyze_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	resp := postAnalyze(t, srv, "", "some lead content")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAnalyze_RejectsBadToken(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	resp := postAnalyze(t, srv, "not-a-real-token", "some lead content")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAnalyze_Success(t *testing.T) {
	repo := defaultRepo()
	srv := newTestServer(t, repo)

	resp := postAnalyze(t, srv, signToken(t, "user-1"), "CEO stepping down at Acme")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result struct {
		Tier1 struct {
			Items      []string `json:"items"`
			HasSignals bool     `json:"hasSignals"`
		} `json:"tier1"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Tier1.HasSignals)
	assert.NotEmpty(t, result.Tier1.Items)

	p, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.UsageCount)
}

func TestAnalyze_QuotaExceeded(t *testing.T) {
	repo := defaultRepo()
	repo.profiles["user-1"].UsageCount = 5
	srv := newTestServer(t, repo)

	resp := postAnalyze(t, srv, signToken(t, "user-1"), "some lead content")
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "Quota Exceeded", decodeError(t, resp))
}

func TestAnalyze_EmptyText(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	resp := postAnalyze(t, srv, signToken(t, "user-1"), "   ")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyze_UnknownProfile(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	resp := postAnalyze(t, srv, signToken(t, "ghost"), "some lead content")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "profile not found")
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/admin/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdmin_ResetAndSetLimit(t *testing.T) {
	repo := defaultRepo()
	repo.profiles["user-1"].UsageCount = 5
	srv := newTestServer(t, repo)
	adminToken := signToken(t, "admin-1")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/admin/users/user-1/reset", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	p, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.UsageCount)

	req, err = http.NewRequest(http.MethodPut, srv.URL+"/v1/admin/users/user-1/limit", strings.NewReader(`{"usage_limit": 20}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	p, err = repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20, p.UsageLimit)
}

func TestAdmin_ListUsers(t *testing.T) {
	srv := newTestServer(t, defaultRepo())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/admin/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []profiles.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)
}
