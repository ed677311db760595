// Package engine implements the synchronous scoring pipeline (C6):
// validate, enrich, dispatch the four factor detectors concurrently
// under a deadline, fuse, and attach metadata. Grounded on the teacher's
// GeoGuard.Validate, generalized from a flat rule loop into a fan-out
// over detector.Detector with per-call deadlines via
// golang.org/x/sync/errgroup.
package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokaycavdar/riskguard/pkg/adapters"
	"github.com/gokaycavdar/riskguard/pkg/apperr"
	"github.com/gokaycavdar/riskguard/pkg/detector"
	"github.com/gokaycavdar/riskguard/pkg/model"
	"github.com/gokaycavdar/riskguard/pkg/netaddr"
)

// emailValidator is shared across requests; validator.Validate is safe
// for concurrent use once built.
var emailValidator = validator.New()

// resultCacheTTLSeconds matches spec.md §6's documented result-cache TTL.
const resultCacheTTLSeconds = 300

// maxAgentChars bounds the user-agent string after sanitization, per
// spec.md §4.6 step 2.
const maxAgentChars = 1000

// newRequestID produces the "req_<hex>" identifier documented in spec.md
// §6, using uuid's random source for the hex payload.
func newRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Deadlines bound the two external calls the engine makes per request:
// geo enrichment and, independently, each factor detector.
type Deadlines struct {
	Enrichment time.Duration // spec.md §5 default: 100ms
	Detector   time.Duration // spec.md §5 default: 200ms per factor
}

// DefaultDeadlines matches spec.md §5's documented request budget.
var DefaultDeadlines = Deadlines{
	Enrichment: 100 * time.Millisecond,
	Detector:   200 * time.Millisecond,
}

// Engine ties the four factor detectors to the adapters that feed them.
type Engine struct {
	Network  *detector.Detector
	Temporal *detector.Detector
	Agent    *detector.Detector
	Geo      *detector.Detector

	GeoLookup adapters.GeoLookup
	Audit     adapters.AuditSink
	Cache     adapters.Cache // nil disables result caching
	Weights   model.FusionWeights
	Deadlines Deadlines
	Version   string // models-version string attached to every result
	Log       zerolog.Logger
}

// New builds an Engine with the default fusion weights and deadlines.
// Callers can override either field on the returned value before serving
// traffic.
func New(network, temporal, agent, geo *detector.Detector, lookup adapters.GeoLookup, audit adapters.AuditSink, cache adapters.Cache, log zerolog.Logger) *Engine {
	return &Engine{
		Network:   network,
		Temporal:  temporal,
		Agent:     agent,
		Geo:       geo,
		GeoLookup: lookup,
		Audit:     audit,
		Cache:     cache,
		Weights:   model.DefaultFusionWeights,
		Deadlines: DefaultDeadlines,
		Version:   "unversioned",
		Log:       log,
	}
}

// Analyze runs the full pipeline for req and returns the scored result.
// It never returns an error for a well-formed request whose detectors
// fail independently — a timed-out or panicking factor degrades to the
// neutral base and is not surfaced (a panic is logged) — only validation
// failures on req itself return an error.
func (e *Engine) Analyze(ctx context.Context, req model.Request) (model.Result, error) {
	start := time.Now()

	if err := validate(req); err != nil {
		return model.Result{}, err
	}

	session := sanitizeSession(req.CurrentSession)
	history := sanitizeHistory(req.LoginHistory)

	cacheKey := resultCacheKey(req.UserID, session.IPAddress, session.UserAgent)
	scores, cacheHit := e.cachedScores(ctx, cacheKey)
	if !cacheHit {
		session.Location = e.enrich(ctx, session.IPAddress)
		scores = e.dispatch(ctx, session, history)
		e.storeScores(ctx, cacheKey, scores)
	}

	result := model.Result{
		Meta: model.Meta{
			RequestID:        newRequestID(),
			UserID:           req.UserID,
			TimestampMs:      session.TimestampMs,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			ModelsVersion:    e.Version,
			CacheHit:         cacheHit,
		},
		Scores: scores,
	}

	if e.Audit != nil {
		if err := e.Audit.Record(ctx, result); err != nil {
			e.Log.Warn().Err(err).Str("requestId", result.Meta.RequestID).Msg("audit record failed")
		}
	}

	return result, nil
}

// resultCacheKey builds the C7 result-cache key spec.md §4.7 defines:
// user, current address, and the first 50 characters of the agent string
// (post-sanitization), so near-identical repeat logins within the TTL
// window reuse a prior verdict instead of re-scoring.
func resultCacheKey(userID, ip, agent string) string {
	return "result:" + userID + ":" + ip + ":" + truncateRunes(agent, 50)
}

// cachedScores returns the cached Scores for key and whether it was a
// hit. A cache miss, a disabled cache, or a corrupt cached entry all
// report false — the caller falls back to scoring normally.
func (e *Engine) cachedScores(ctx context.Context, key string) (model.Scores, bool) {
	if e.Cache == nil {
		return model.Scores{}, false
	}
	raw, ok, err := e.Cache.Get(ctx, key)
	if err != nil {
		e.Log.Warn().Err(err).Msg("result cache read failed")
		return model.Scores{}, false
	}
	if !ok {
		return model.Scores{}, false
	}
	var scores model.Scores
	if err := json.Unmarshal(raw, &scores); err != nil {
		e.Log.Warn().Err(err).Msg("result cache entry corrupt")
		return model.Scores{}, false
	}
	return scores, true
}

// storeScores writes scores to the result cache under key, only called
// after a successful computation. A write failure is logged and never
// surfaced — the cache is an optimization, not a correctness dependency.
func (e *Engine) storeScores(ctx context.Context, key string, scores model.Scores) {
	if e.Cache == nil {
		return
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		e.Log.Warn().Err(err).Msg("result cache encode failed")
		return
	}
	if err := e.Cache.Set(ctx, key, raw, resultCacheTTLSeconds); err != nil {
		e.Log.Warn().Err(err).Msg("result cache write failed")
	}
}

// validate enforces spec.md §4.6 step 1's request-shape invariants.
func validate(req model.Request) error {
	if req.UserID == "" {
		return apperr.Validation("userId", "userId is required")
	}
	if err := emailValidator.Var(req.UserID, "email"); err != nil {
		return apperr.Validation("userId", "userId must be a syntactically valid email")
	}
	if req.CurrentSession.IPAddress == "" {
		return apperr.Validation("currentSession.ipAddress", "currentSession.ipAddress is required")
	}
	if !netaddr.Classify(req.CurrentSession.IPAddress).Valid {
		return apperr.Validation("currentSession.ipAddress", "currentSession.ipAddress does not parse as an IP address")
	}
	if req.CurrentSession.TimestampMs < minValidTimestampMs || req.CurrentSession.TimestampMs > maxValidTimestampMs {
		return apperr.Validation("currentSession.timestampMs", "currentSession.timestampMs is out of range")
	}
	if len(req.LoginHistory) > model.MaxHistoryItems {
		return apperr.Validation("loginHistory", "loginHistory exceeds the maximum of 1000 items")
	}
	return nil
}

// minValidTimestampMs and maxValidTimestampMs bound CurrentSession.TimestampMs
// to 2020-01-01T00:00:00Z .. 2030-01-01T00:00:00Z per spec.md §4.6 step 1.
const (
	minValidTimestampMs = 1_577_836_800_000
	maxValidTimestampMs = 1_893_456_000_000
)

// sanitizeSession strips control characters from session's free-text
// fields and truncates the agent string, per spec.md §4.6 step 2.
func sanitizeSession(s model.Session) model.Session {
	s.IPAddress = stripControlChars(s.IPAddress)
	s.UserAgent = truncateRunes(stripControlChars(s.UserAgent), maxAgentChars)
	if s.Fingerprint != nil {
		fp := *s.Fingerprint
		fp.ScreenResolution = stripControlChars(fp.ScreenResolution)
		fp.Timezone = stripControlChars(fp.Timezone)
		fp.Platform = stripControlChars(fp.Platform)
		fp.WebGLRenderer = stripControlChars(fp.WebGLRenderer)
		fp.CanvasFingerprint = stripControlChars(fp.CanvasFingerprint)
		fp.AudioFingerprint = stripControlChars(fp.AudioFingerprint)
		s.Fingerprint = &fp
	}
	return s
}

// sanitizeHistory applies sanitizeSession's field-level rules to every
// history entry without mutating the caller's slice.
func sanitizeHistory(items []model.LoginHistoryItem) []model.LoginHistoryItem {
	out := make([]model.LoginHistoryItem, len(items))
	for i, h := range items {
		h.IPAddress = stripControlChars(h.IPAddress)
		h.UserAgent = truncateRunes(stripControlChars(h.UserAgent), maxAgentChars)
		out[i] = h
	}
	return out
}

// stripControlChars removes ASCII control characters (including DEL)
// from s, leaving ordinary printable and Unicode content untouched.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// truncateRunes returns s truncated to at most max runes.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// enrich resolves session's location under the enrichment deadline. A
// timeout, an error, or a miss all resolve to the zero Location —
// "unknown", never a request failure (spec.md §4.6 step 3).
func (e *Engine) enrich(ctx context.Context, ip string) model.Location {
	if e.GeoLookup == nil {
		return model.Location{}
	}
	lookupCtx, cancel := context.WithTimeout(ctx, e.Deadlines.Enrichment)
	defer cancel()

	loc, err := e.GeoLookup.Lookup(lookupCtx, ip)
	if err != nil {
		e.Log.Warn().Err(err).Str("ip", ip).Msg("geo enrichment failed")
		return model.Location{}
	}
	return loc
}

// dispatch runs the four factor detectors concurrently, each under its
// own Deadlines.Detector budget, and fuses their results. A detector
// that exceeds its deadline or panics contributes detector.NeutralBase
// instead of failing the whole request.
func (e *Engine) dispatch(ctx context.Context, session model.Session, history []model.LoginHistoryItem) model.Scores {
	now := session.TimestampMs
	results := [4]int{
		detector.NeutralBase,
		detector.NeutralBase,
		detector.NeutralBase,
		detector.NeutralBase,
	}
	detectors := [4]*detector.Detector{e.Network, e.Temporal, e.Agent, e.Geo}

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range detectors {
		i, d := i, d
		if d == nil {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					e.Log.Error().Interface("panic", r).Int("factor", i).Msg("detector panicked")
				}
			}()
			factorCtx, cancel := context.WithTimeout(gctx, e.Deadlines.Detector)
			defer cancel()
			results[i] = scoreWithDeadline(factorCtx, d, session, history, now)
			return nil
		})
	}
	// errgroup's recorded error is always nil here: every goroutine
	// recovers its own panics and never returns non-nil, so dispatch
	// itself cannot fail the request.
	_ = g.Wait()

	ip, dt, ua, geo := model.Clamp(results[0]), model.Clamp(results[1]), model.Clamp(results[2]), model.Clamp(results[3])
	return model.Scores{
		IP:          ip,
		DateTime:    dt,
		UserAgent:   ua,
		Geolocation: geo,
		Overall:     model.Fuse(ip, dt, ua, geo, e.Weights),
	}
}

// scoreWithDeadline runs d.Score on its own goroutine and returns
// detector.NeutralBase if ctx expires first, per spec.md §5's per-factor
// timeout-degrades-to-neutral contract.
func scoreWithDeadline(ctx context.Context, d *detector.Detector, session model.Session, history []model.LoginHistoryItem, now int64) int {
	type outcome struct {
		score    int
		panicVal any
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicVal: r}
			}
		}()
		done <- outcome{score: d.Score(session, history, now)}
	}()
	select {
	case o := <-done:
		if o.panicVal != nil {
			// Re-raised on the dispatch goroutine, whose recover logs it.
			panic(o.panicVal)
		}
		return o.score
	case <-ctx.Done():
		return detector.NeutralBase
	}
}