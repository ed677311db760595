package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/riskguard/pkg/apperr"
	"github.com/gokaycavdar/riskguard/pkg/detector"
	"github.com/gokaycavdar/riskguard/pkg/engine"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

func testEngine() *engine.Engine {
	return engine.New(
		&detector.Detector{Extract: func(model.Session, []model.LoginHistoryItem, int64) []float64 { return nil }},
		nil, nil, nil,
		nil, nil, nil,
		discardLogger(),
	)
}

func TestHealthEndpoint(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger()}
	router := server.NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func validAnalyzeBody() []byte {
	body := analyzeRequest{
		UserID: "user@example.com",
		CurrentSession: sessionPayload{
			IPAddress:   "1.1.1.1",
			UserAgent:   "Mozilla/5.0",
			TimestampMs: 1_700_000_000_000,
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger()}
	router := server.NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(validAnalyzeBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeEndpointBadJSON(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger()}
	router := server.NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointMissingRequiredField(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger()}
	router := server.NewRouter()

	body, _ := json.Marshal(map[string]any{"currentSession": map[string]any{}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointRequiresAPIKeyWhenConfigured(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger(), APIKey: "secret"}
	router := server.NewRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(validAnalyzeBody()))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(validAnalyzeBody()))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-Api-Key", "secret")
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}

type erroringFeedbackSink struct{}

func (erroringFeedbackSink) Submit(string, string) error { return errors.New("boom") }

func TestFeedbackEndpointDiscardedWithoutSink(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger()}
	router := server.NewRouter()

	body, _ := json.Marshal(feedbackRequest{RequestID: "abc", ActualOutcome: "legitimate"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestFeedbackEndpointPropagatesSinkError(t *testing.T) {
	server := &Server{Engine: testEngine(), Log: discardLogger(), FeedbackSink: erroringFeedbackSink{}}
	router := server.NewRouter()

	body, _ := json.Marshal(feedbackRequest{RequestID: "abc", ActualOutcome: "legitimate"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperr.Validation("field", "bad"), http.StatusBadRequest},
		{apperr.RateLimited("slow down"), http.StatusTooManyRequests},
		{apperr.Timeout("too slow"), http.StatusInternalServerError},
		{apperr.Internal(errors.New("bug")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		writeError(ctx, c.err)
		assert.Equal(t, c.code, w.Code)
	}
}

func TestFactorExpectations(t *testing.T) {
	alg, count := factorExpectations("network")
	assert.Equal(t, "one_class_svm", alg)
	assert.Greater(t, count, 0)

	alg, count = factorExpectations("unknown")
	assert.Equal(t, "", alg)
	assert.Equal(t, 0, count)
}

func TestLoadBundleStatusesMissingBundlesReportUnloaded(t *testing.T) {
	statuses := LoadBundleStatuses(t.TempDir(), []string{"network", "temporal"})
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Loaded)
	}
}
