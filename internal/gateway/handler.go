package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/nutrigate/internal/auth"
	"github.com/af-corp/nutrigate/internal/config"
	"github.com/af-corp/nutrigate/internal/contract"
	"github.com/af-corp/nutrigate/internal/filter"
	"github.com/af-corp/nutrigate/internal/httputil"
	"github.com/af-corp/nutrigate/internal/inference"
	"github.com/af-corp/nutrigate/internal/prompt"
	"github.com/af-corp/nutrigate/internal/telemetry"
	"github.com/af-corp/nutrigate/internal/types"
)

// Per-endpoint sampling temperatures: analysis favors consistency,
// recommendations favor variety.
const (
	analyzeTemperature   = 0.2
	recommendTemperature = 0.4
)

// Inferencer is the slice of the inference client the handlers need.
type Inferencer interface {
	Complete(ctx context.Context, system string, user []types.ContentPart, temperature float64) (string, inference.Usage, error)
}

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	llm         Inferencer
	enforcer    *contract.Enforcer
	filterChain *filter.Chain
	metrics     *telemetry.Metrics
	cfg         func() *config.Config
}

func NewHandler(llm Inferencer, enforcer *contract.Enforcer, filterChain *filter.Chain, metrics *telemetry.Metrics, cfg func() *config.Config) *Handler {
	return &Handler{
		llm:         llm,
		enforcer:    enforcer,
		filterChain: filterChain,
		metrics:     metrics,
		cfg:         cfg,
	}
}

// RequireConfigured rejects requests with 503 while required configuration is
// absent, keeping the process itself up (graceful startup policy).
func (h *Handler) RequireConfigured(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if missing := h.cfg().MissingRequired(); len(missing) > 0 {
			httputil.WriteServerNotConfiguredError(w, w.Header().Get("X-Request-ID"), missing)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AnalyzeMeal handles POST /api/analyze-meal
func (h *Handler) AnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	claim, ok := auth.ClaimFromContext(r.Context())
	if !ok {
		httputil.WriteInvalidTokenError(w, reqID)
		return
	}

	mealReq, err := parseMealRequest(r)
	if err != nil {
		if errors.Is(err, errMissingInput) {
			h.record("analyze-meal", http.StatusBadRequest, receivedAt, inference.Usage{})
			httputil.WriteMissingInputError(w, reqID)
			return
		}
		if bodyTooLarge(err) {
			h.record("analyze-meal", http.StatusRequestEntityTooLarge, receivedAt, inference.Usage{})
			httputil.WritePayloadTooLargeError(w, reqID)
			return
		}
		h.record("analyze-meal", http.StatusBadRequest, receivedAt, inference.Usage{})
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}

	scanIn := &filter.ScanInput{
		Endpoint: "analyze-meal",
		Subject:  claim.Subject,
		Lang:     mealReq.Lang,
		HasImage: mealReq.Image != nil,
	}
	if mealReq.Text != "" {
		scanIn.Texts = []string{mealReq.Text}
	}
	if !h.runFilters(w, r, reqID, scanIn, receivedAt) {
		return
	}

	raw, usage, err := h.llm.Complete(r.Context(), prompt.SystemAnalyze, prompt.AnalysisContent(mealReq), analyzeTemperature)
	if err != nil {
		slog.Error("inference request failed", "request_id", reqID, "endpoint", "analyze-meal", "error", err)
		h.record("analyze-meal", http.StatusInternalServerError, receivedAt, usage)
		httputil.WriteInternalError(w, reqID, "Inference request failed")
		return
	}

	result, err := h.enforcer.Enforce(raw, claim)
	if err != nil {
		slog.Warn("model output failed contract", "request_id", reqID, "endpoint", "analyze-meal", "raw_len", len(raw))
		h.record("analyze-meal", http.StatusBadGateway, receivedAt, usage)
		httputil.WriteInvalidModelOutputError(w, reqID, raw)
		return
	}

	h.record("analyze-meal", http.StatusOK, receivedAt, usage)
	slog.Info("request completed",
		"request_id", reqID,
		"endpoint", "analyze-meal",
		"user_id", claim.Subject,
		"lang", mealReq.Lang,
		"has_image", mealReq.Image != nil,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"duration_ms", time.Since(receivedAt).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Recommendations handles POST /api/recommendations
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	claim, ok := auth.ClaimFromContext(r.Context())
	if !ok {
		httputil.WriteInvalidTokenError(w, reqID)
		return
	}

	payload, err := parseRecommendationsPayload(r)
	if err != nil {
		h.record("recommendations", http.StatusRequestEntityTooLarge, receivedAt, inference.Usage{})
		httputil.WritePayloadTooLargeError(w, reqID)
		return
	}

	scanIn := &filter.ScanInput{
		Endpoint:      "recommendations",
		Subject:       claim.Subject,
		Texts:         collectStrings(payload),
		PayloadFields: topLevelFields(payload),
	}
	if !h.runFilters(w, r, reqID, scanIn, receivedAt) {
		return
	}

	userContent, err := prompt.RecommendationsContent(payload)
	if err != nil {
		h.record("recommendations", http.StatusBadRequest, receivedAt, inference.Usage{})
		httputil.WriteBadRequestError(w, reqID, "Failed to serialize payload")
		return
	}

	raw, usage, err := h.llm.Complete(r.Context(), prompt.SystemRecommend, userContent, recommendTemperature)
	if err != nil {
		slog.Error("inference request failed", "request_id", reqID, "endpoint", "recommendations", "error", err)
		h.record("recommendations", http.StatusInternalServerError, receivedAt, usage)
		httputil.WriteInternalError(w, reqID, "Inference request failed")
		return
	}

	result, err := h.enforcer.Enforce(raw, claim)
	if err != nil {
		slog.Warn("model output failed contract", "request_id", reqID, "endpoint", "recommendations", "raw_len", len(raw))
		h.record("recommendations", http.StatusBadGateway, receivedAt, usage)
		httputil.WriteInvalidModelOutputError(w, reqID, raw)
		return
	}

	h.record("recommendations", http.StatusOK, receivedAt, usage)
	slog.Info("request completed",
		"request_id", reqID,
		"endpoint", "recommendations",
		"user_id", claim.Subject,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"duration_ms", time.Since(receivedAt).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// runFilters executes the filter chain; a false return means the request was
// blocked and a response already written.
func (h *Handler) runFilters(w http.ResponseWriter, r *http.Request, reqID string, in *filter.ScanInput, receivedAt time.Time) bool {
	if h.filterChain == nil {
		return true
	}
	results, blocked := h.filterChain.Run(r.Context(), in)
	if blocked != nil {
		slog.Warn("request blocked by filter",
			"request_id", reqID,
			"endpoint", in.Endpoint,
			"filter", blocked.FilterName,
			"detections", blocked.Detections,
			"score", blocked.Score,
			"user_id", in.Subject,
		)
		if h.metrics != nil {
			h.metrics.RecordFilterAction(blocked.FilterName, string(blocked.Action))
			h.metrics.RecordRequest(telemetry.RequestLabels{
				Endpoint:   in.Endpoint,
				Status:     "451",
				DurationMs: float64(time.Since(receivedAt).Milliseconds()),
			})
		}
		httputil.WriteContentBlockedError(w, reqID, blocked.Message)
		return false
	}
	for _, fr := range results {
		if fr.Action == filter.ActionFlag && h.metrics != nil {
			h.metrics.RecordFilterAction(fr.FilterName, "flag")
		}
	}
	return true
}

func (h *Handler) record(endpoint string, status int, receivedAt time.Time, usage inference.Usage) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordRequest(telemetry.RequestLabels{
		Endpoint:         endpoint,
		Status:           strconv.Itoa(status),
		DurationMs:       float64(time.Since(receivedAt).Milliseconds()),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	})
}
