// Package httpapi implements the gin-based HTTP surface (C7 external
// interface): POST /v1/analyze, GET /health, and POST /v1/feedback.
// Grounded on the teacher's examples/webserver/main.go gin usage,
// generalized from a single demo handler into a routed, middleware-
// wrapped API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gokaycavdar/riskguard/pkg/adapters"
	"github.com/gokaycavdar/riskguard/pkg/apperr"
	"github.com/gokaycavdar/riskguard/pkg/bundle"
	"github.com/gokaycavdar/riskguard/pkg/engine"
	"github.com/gokaycavdar/riskguard/pkg/features"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

// BundleStatus reports one factor's loaded bundle state for /health.
type BundleStatus struct {
	Factor    string `json:"factor"`
	Loaded    bool   `json:"loaded"`
	Algorithm string `json:"algorithm,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Server wires the engine and ambient concerns (logging, auth, rate
// limiting) into a gin.Engine.
type Server struct {
	Engine       *engine.Engine
	Log          zerolog.Logger
	APIKey       string // empty disables the X-Api-Key check
	BundleStatus []BundleStatus
	FeedbackSink FeedbackSink

	Cache          adapters.Cache // nil disables rate limiting
	RequestsPerMin int
}

// FeedbackSink forwards caller-submitted ground-truth feedback
// (spec.md §9 supplemented "/v1/feedback" feature) to wherever
// retraining data is collected.
type FeedbackSink interface {
	Submit(requestID string, actualOutcome string) error
}

// NewRouter builds the configured gin.Engine.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), loggingMiddleware(s.Log), recoveryMiddleware(s.Log))

	r.GET("/health", s.handleHealth)
	api := r.Group("/v1")
	if s.APIKey != "" {
		api.Use(apiKeyMiddleware(s.APIKey))
	}
	if s.Cache != nil && s.RequestsPerMin > 0 {
		api.Use(rateLimitMiddleware(s.Cache, s.RequestsPerMin))
	}
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/feedback", s.handleFeedback)

	return r
}

type analyzeRequest struct {
	UserID         string                   `json:"userId" binding:"required"`
	CurrentSession sessionPayload           `json:"currentSession" binding:"required"`
	LoginHistory   []historyItemPayload     `json:"loginHistory"`
}

type sessionPayload struct {
	IPAddress   string              `json:"ipAddress" binding:"required"`
	UserAgent   string              `json:"userAgent"`
	TimestampMs int64               `json:"timestampMs" binding:"required"`
	Fingerprint *fingerprintPayload `json:"fingerprint,omitempty"`
}

type fingerprintPayload struct {
	ScreenResolution    string   `json:"screenResolution"`
	Timezone            string   `json:"timezone"`
	Platform            string   `json:"platform"`
	WebGLRenderer       string   `json:"webglRenderer"`
	Fonts               []string `json:"fonts"`
	Plugins             []string `json:"plugins"`
	CanvasFingerprint   string   `json:"canvasFingerprint"`
	AudioFingerprint    string   `json:"audioFingerprint"`
	TouchSupport        *bool    `json:"touchSupport,omitempty"`
	DeviceMemoryGiB     *int     `json:"deviceMemoryGiB,omitempty"`
	HardwareConcurrency *int     `json:"hardwareConcurrency,omitempty"`
	CookieEnabled       *bool    `json:"cookieEnabled,omitempty"`
}

type historyItemPayload struct {
	IPAddress   string          `json:"ipAddress"`
	UserAgent   string          `json:"userAgent"`
	TimestampMs int64           `json:"timestampMs"`
	Status      string          `json:"status"`
	Location    *locationPayload `json:"location,omitempty"`
}

type locationPayload struct {
	Country   string  `json:"country"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (req analyzeRequest) toModel() model.Request {
	history := make([]model.LoginHistoryItem, 0, len(req.LoginHistory))
	for _, h := range req.LoginHistory {
		item := model.LoginHistoryItem{
			IPAddress:   h.IPAddress,
			UserAgent:   h.UserAgent,
			TimestampMs: h.TimestampMs,
			Status:      model.LoginStatus(h.Status),
		}
		if h.Location != nil {
			item.Location = model.Location{
				Country:   h.Location.Country,
				City:      h.Location.City,
				Latitude:  h.Location.Latitude,
				Longitude: h.Location.Longitude,
			}
		}
		history = append(history, item)
	}

	session := model.Session{
		IPAddress:   req.CurrentSession.IPAddress,
		UserAgent:   req.CurrentSession.UserAgent,
		TimestampMs: req.CurrentSession.TimestampMs,
	}
	if fp := req.CurrentSession.Fingerprint; fp != nil {
		session.Fingerprint = &model.ClientFingerprint{
			ScreenResolution:    fp.ScreenResolution,
			Timezone:            fp.Timezone,
			Platform:            fp.Platform,
			WebGLRenderer:       fp.WebGLRenderer,
			Fonts:               fp.Fonts,
			Plugins:             fp.Plugins,
			CanvasFingerprint:   fp.CanvasFingerprint,
			AudioFingerprint:    fp.AudioFingerprint,
			TouchSupport:        fp.TouchSupport,
			DeviceMemoryGiB:     fp.DeviceMemoryGiB,
			HardwareConcurrency: fp.HardwareConcurrency,
			CookieEnabled:       fp.CookieEnabled,
		}
	}

	return model.Request{
		UserID:         req.UserID,
		CurrentSession: session,
		LoginHistory:   history,
	}
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Engine.Analyze(c.Request.Context(), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId":        result.Meta.RequestID,
		"userId":           result.Meta.UserID,
		"timestampMs":      result.Meta.TimestampMs,
		"processingTimeMs": result.Meta.ProcessingTimeMs,
		"modelsVersion":    result.Meta.ModelsVersion,
		"scores": gin.H{
			"ip":          result.Scores.IP,
			"dateTime":    result.Scores.DateTime,
			"userAgent":   result.Scores.UserAgent,
			"geolocation": result.Scores.Geolocation,
			"overall":     result.Scores.Overall,
		},
	})
}

type feedbackRequest struct {
	RequestID     string `json:"requestId" binding:"required"`
	ActualOutcome string `json:"actualOutcome" binding:"required"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.FeedbackSink == nil {
		c.JSON(http.StatusAccepted, gin.H{"status": "discarded"})
		return
	}
	if err := s.FeedbackSink.Submit(req.RequestID, req.ActualOutcome); err != nil {
		writeError(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"bundles": s.BundleStatus,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// LoadBundleStatuses inspects each factor's bundle on disk and reports
// whether it loaded successfully, for the /health endpoint.
func LoadBundleStatuses(dir string, factors []string) []BundleStatus {
	out := make([]BundleStatus, 0, len(factors))
	for _, f := range factors {
		path := bundle.FactorFilename(dir, f)
		alg, featureCount := factorExpectations(f)
		artifact, err := bundle.Load(path, alg, featureCount)
		if err != nil {
			out = append(out, BundleStatus{Factor: f, Loaded: false})
			continue
		}
		out = append(out, BundleStatus{Factor: f, Loaded: true, Algorithm: artifact.Meta.Algorithm, Version: artifact.Meta.Version})
	}
	return out
}

func factorExpectations(factor string) (algorithm string, featureCount int) {
	switch factor {
	case "network":
		return "one_class_svm", features.NetworkLen
	case "temporal":
		return "isolation_forest", features.TemporalLen
	case "agent":
		return "autoencoder", features.AgentLen
	case "geography":
		return "dbscan", features.GeoLen
	}
	return "", 0
}

func writeError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	case apperr.KindTimeout:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
