package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/activity"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/config"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/engine"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/event"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/metrics"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/retry"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/stats"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	pipeline  *engine.Pipeline
	store     store.Store
	stats     *stats.Aggregator
	window    *activity.Window
	evaluator *rules.Evaluator
	scheduler *retry.Scheduler
	loader    *config.Loader
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(pipeline *engine.Pipeline, s store.Store, agg *stats.Aggregator, window *activity.Window,
	evaluator *rules.Evaluator, scheduler *retry.Scheduler, loader *config.Loader, logger *slog.Logger) http.Handler {

	h := &Handler{
		pipeline:  pipeline,
		store:     s,
		stats:     agg,
		window:    window,
		evaluator: evaluator,
		scheduler: scheduler,
		loader:    loader,
		logger:    logger,
		mux:       http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /v1/transactions", h.ingestTransaction)
	h.mux.HandleFunc("POST /v1/transactions/batch", h.ingestBatch)
	h.mux.HandleFunc("GET /v1/fraud", h.listFraud)
	h.mux.HandleFunc("GET /v1/stats", h.getStats)
	h.mux.HandleFunc("POST /v1/activity/clear", h.clearActivity)
	h.mux.HandleFunc("GET /v1/rules", h.listRules)
	h.mux.HandleFunc("POST /v1/rules/reload", h.reloadRules)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(logger, h.mux)
}

// POST /v1/transactions — synchronous single-transaction ingestion through
// the same pipeline the Kafka loop uses.
func (h *Handler) ingestTransaction(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	rec, err := h.pipeline.Process(r.Context(), raw)
	if err != nil {
		if engine.Permanent(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{"flagged": rec != nil}
	if rec != nil {
		resp["record"] = rec
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /v1/transactions/batch — up to 100 payloads, each processed and
// committed independently: a failure in one never discards the others.
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var payloads []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(payloads) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one transaction")
		return
	}
	if len(payloads) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(payloads), maxBatchSize))
		return
	}

	jobID := uuid.New().String()
	var flagged, clean, dropped, retried int
	for _, raw := range payloads {
		rec, err := h.pipeline.Process(r.Context(), raw)
		switch {
		case err == nil && rec != nil:
			flagged++
		case err == nil:
			clean++
		case engine.Permanent(err):
			metrics.MessagesDropped.WithLabelValues(permanentReason(err)).Inc()
			dropped++
		default:
			h.scheduler.Schedule(raw)
			retried++
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"total":   len(payloads),
		"flagged": flagged,
		"clean":   clean,
		"dropped": dropped,
		"retried": retried,
	})
}

// GET /v1/fraud — all flagged transactions; ?userId= or ?rule= narrows the
// result. The two filters are mutually exclusive.
func (h *Handler) listFraud(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	rule := r.URL.Query().Get("rule")
	if userID != "" && rule != "" {
		writeError(w, http.StatusBadRequest, "userId and rule filters are mutually exclusive")
		return
	}

	var (
		records []store.FraudRecord
		err     error
	)
	switch {
	case userID != "":
		records, err = h.store.GetByUser(userID)
	case rule != "":
		records, err = h.store.GetByRule(rules.Name(rule))
	default:
		records, err = h.store.GetAll()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}

// GET /v1/stats — on-demand aggregate snapshot.
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stats.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.CacheHitRatio.Set(snap.CacheHitRatio)
	writeJSON(w, http.StatusOK, snap)
}

// POST /v1/activity/clear — drops the activity window and its counters. The
// fraud store is append-only and is never cleared.
func (h *Handler) clearActivity(w http.ResponseWriter, r *http.Request) {
	h.window.ClearAll()
	h.logger.Info("activity window cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GET /v1/rules — thresholds currently in effect.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	t := h.evaluator.Thresholds()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"high_amount_threshold": t.HighAmount,
		"domestic_location":     t.DomesticLocation,
		"round_amount_divisor":  t.RoundDivisor,
	})
}

// POST /v1/rules/reload — re-read config from disk; registered OnChange
// callbacks swap the evaluator thresholds.
func (h *Handler) reloadRules(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reloaded": true})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — readiness plus a view of pending retries.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"pending_retries": h.scheduler.Pending(),
		"tracked_users":   h.window.Users(),
	})
}

func permanentReason(err error) string {
	var validation *event.ValidationError
	if errors.As(err, &validation) {
		return metrics.ReasonValidation
	}
	return metrics.ReasonMalformed
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
