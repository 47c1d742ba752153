package handlers

import (
	"context"
	"net/http"
	"time"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services"
)

// Health reports database and event pipeline state. It answers 503 when
// the database cannot be reached.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	producer, consumer := services.EventPipelineStatus()
	status := map[string]interface{}{
		"database":       "down",
		"kafka_producer": producer,
		"kafka_consumer": consumer,
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err == nil {
			status["database"] = "up"
		}
	}

	if status["database"] != "up" {
		resp.SendJSON(w, http.StatusServiceUnavailable, resp.StandardResponse{
			Status: "error",
			Error:  "database unavailable",
			Data:   status,
		})
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "ok", status)
}
