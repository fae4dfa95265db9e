// Package api exposes the read-only HTTP query surface over stored recommendations.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

const (
	userPrefix     = "/v1/recommendations/users/"
	activityPrefix = "/v1/recommendations/activities/"
)

// Handler handles HTTP interactions.
type Handler struct {
	store domain.RecommendationStore
	log   *logger.Logger
}

// NewHandler constructs Handler.
func NewHandler(store domain.RecommendationStore, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, log: log.With("component", "api")}
}

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(userPrefix, h.recommendationsByUser)
	mux.HandleFunc(activityPrefix, h.recommendationsByActivity)
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/metrics", promhttp.Handler())
}

// healthz returns an OK response for readiness checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) recommendationsByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, userPrefix)
	if strings.TrimSpace(userID) == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	limit := persistence.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = persistence.ClampLimit(parsed)
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid cursor")
		return
	}

	recs, next, err := h.store.ListByUser(r.Context(), userID, cursor, limit)
	if err != nil {
		h.log.Error("list recommendations by user failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "unable to list recommendations")
		return
	}

	resp := map[string]any{"items": nonNil(recs)}
	if next != nil {
		resp["nextCursor"] = persistence.EncodeCursor(next)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recommendationsByActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	activityID := strings.TrimPrefix(r.URL.Path, activityPrefix)
	if strings.TrimSpace(activityID) == "" || strings.Contains(activityID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	recs, err := h.store.ListByActivity(r.Context(), activityID)
	if err != nil {
		h.log.Error("list recommendations by activity failed", "activity_id", activityID, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "unable to list recommendations")
		return
	}
	if len(recs) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "no recommendation found for activity")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": recs})
}

func nonNil(recs []domain.Recommendation) []domain.Recommendation {
	if recs == nil {
		return []domain.Recommendation{}
	}
	return recs
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"type": code, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
