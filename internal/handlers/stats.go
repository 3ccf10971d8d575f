package handlers

import (
	"errors"
	"log"
	"net/http"

	"cafe-rater-backend/internal/stats"
)

type StatsHandler struct {
	stats *stats.Service
}

func NewStatsHandler(statsSvc *stats.Service) *StatsHandler {
	return &StatsHandler{stats: statsSvc}
}

// --- GET /cafes/{id}/stats ---

func (h *StatsHandler) CafeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	detail, err := h.stats.CafeDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cafe not found")
			return
		}
		log.Printf("Error computing cafe stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// --- GET /items/{id}/stats ---

func (h *StatsHandler) ItemStats(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	detail, err := h.stats.ItemDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		log.Printf("Error computing item stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// --- GET /stats ---

func (h *StatsHandler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	global, err := h.stats.Global(r.Context())
	if err != nil {
		log.Printf("Error computing global stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, global)
}
