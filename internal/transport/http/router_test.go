package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"labfhir/internal/platform/middleware"
	reportModel "labfhir/internal/report/models"
	subjectModels "labfhir/internal/subject/models"
	"labfhir/internal/transport/http/mocks"
	id "labfhir/pkg/domain"
)

//go:generate mockgen -source=router.go -destination=mocks/services-mocks.go -package=mocks PipelineService,SubjectService,LedgerService
type RouterSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RouterSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

// testMocks bundles the three mocked services behind the handler.
type testMocks struct {
	pipeline *mocks.MockPipelineService
	subjects *mocks.MockSubjectService
	ledger   *mocks.MockLedgerService
}

func newTestHandler(t *testing.T, opts ...Option) (testMocks, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := testMocks{
		pipeline: mocks.NewMockPipelineService(ctrl),
		subjects: mocks.NewMockSubjectService(ctrl),
		ledger:   mocks.NewMockLedgerService(ctrl),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger)}, opts...)
	h := New(Deps{Pipeline: m.pipeline, Subjects: m.subjects, Ledger: m.ledger}, opts...)
	return m, h.Router()
}

// doJSON issues a request and decodes the JSON response body, nil when empty.
func doJSON(t *testing.T, router http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Body.Len() == 0 {
		return rr.Code, nil
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr.Code, out
}

// errCode extracts the code from the error envelope.
func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	code, _ := errObj["code"].(string)
	return code
}

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testSubject() *subjectModels.Subject {
	return &subjectModels.Subject{
		ID:                id.NewSubjectID(),
		ExternalSubjectID: "LAB-PATIENT-001",
		DisplayName:       "Jordan Fill",
		SubjectType:       subjectModels.SubjectHuman,
		CreatedAt:         testTime,
		UpdatedAt:         testTime,
	}
}

func testReport(status reportModel.Status) *reportModel.Report {
	return &reportModel.Report{
		ID:               id.NewReportID(),
		SubjectID:        id.NewSubjectID(),
		OriginalFilename: "cbc-panel.pdf",
		MimeType:         "application/pdf",
		ContentHash:      strings.Repeat("ab", 32),
		Status:           status,
		CreatedAt:        testTime,
		UpdatedAt:        testTime,
	}
}

func (s *RouterSuite) TestHealth() {
	_, router := newTestHandler(s.T())

	status, body := doJSON(s.T(), router, http.MethodGet, "/health", "")

	assert.Equal(s.T(), http.StatusOK, status)
	assert.Equal(s.T(), "ok", body["status"])
}

func (s *RouterSuite) TestHealthReportsDependencyProbes() {
	s.T().Run("all probes passing", func(t *testing.T) {
		_, router := newTestHandler(t, WithHealthChecks(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		}))

		status, body := doJSON(t, router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body["status"])
		checks, ok := body["checks"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ok", checks["postgres"])
		assert.Equal(t, "ok", checks["redis"])
	})

	s.T().Run("failing probe degrades to 503", func(t *testing.T) {
		_, router := newTestHandler(t, WithHealthChecks(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return assert.AnError },
		}))

		status, body := doJSON(t, router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "degraded", body["status"])
		checks, ok := body["checks"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ok", checks["postgres"])
		assert.Equal(t, assert.AnError.Error(), checks["redis"])
	})
}

func (s *RouterSuite) TestMetricsEndpointExposed() {
	_, router := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

// stubJWTValidator accepts exactly one token string.
type stubJWTValidator struct {
	token  string
	claims *middleware.JWTClaims
}

func (s stubJWTValidator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	if tokenString != s.token {
		return nil, assert.AnError
	}
	return s.claims, nil
}

func (s *RouterSuite) TestAuthGate() {
	validator := stubJWTValidator{
		token:  "good-token",
		claims: &middleware.JWTClaims{Subject: "reviewer-9", Role: "reviewer"},
	}

	s.T().Run("rejects requests without a bearer token", func(t *testing.T) {
		_, router := newTestHandler(t, WithJWTValidator(validator))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	s.T().Run("accepts a valid bearer token", func(t *testing.T) {
		m, router := newTestHandler(t, WithJWTValidator(validator))
		m.subjects.EXPECT().List(gomock.Any()).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("health stays open when auth is on", func(t *testing.T) {
		_, router := newTestHandler(t, WithJWTValidator(validator))

		status, _ := doJSON(t, router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, status)
	})
}

func (s *RouterSuite) TestRequestIDEchoedOnResponses() {
	m, router := newTestHandler(s.T())
	m.subjects.EXPECT().List(gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
	req.Header.Set("X-Request-Id", "upstream-77")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(s.T(), "upstream-77", rr.Header().Get("X-Request-Id"))
}
