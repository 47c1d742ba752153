package handlers

import (
	"encoding/json"
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/logger"
	"counsellor-matching/services"
	"counsellor-matching/utils"
)

const defaultDLQLimit = 50

// GetDLQMessages retrieves unresolved DLQ messages
// GET /api/dlq/messages?limit=50
func GetDLQMessages(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := utils.ParseIntParam(r, "limit", defaultDLQLimit)
	if err != nil || limit <= 0 {
		limit = defaultDLQLimit
	}

	messages, err := services.GetDLQMessages(limit)
	if err != nil {
		logger.Error("Error fetching DLQ messages: %v", err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch DLQ messages: "+err.Error())
		return
	}

	resp.SuccessResponse(w, http.StatusOK, "DLQ messages retrieved", map[string]interface{}{
		"count": len(messages),
		"data":  messages,
	})
}

// RetryDLQMessage reprocesses a specific DLQ message
// POST /api/dlq/messages/retry/?id=<message_id>
func RetryDLQMessage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	messageID := utils.QueryParam(r, "id")
	if messageID == "" {
		resp.ErrorResponse(w, http.StatusBadRequest, "Missing message ID parameter")
		return
	}

	succeeded, err := services.RetryDLQMessage(messageID)
	if err != nil {
		logger.Error("Error retrying DLQ message %s: %v", messageID, err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Failed to retry message: "+err.Error())
		return
	}

	message := "Message reprocessed"
	if !succeeded {
		message = "Message retry failed, it stays in the DLQ"
	}
	resp.SuccessResponse(w, http.StatusOK, message, map[string]interface{}{
		"messageId": messageID,
		"succeeded": succeeded,
	})
}

// ResolveDLQMessage marks a DLQ message as resolved
// POST /api/dlq/messages/resolve/?id=<message_id> {"notes": "..."}
func ResolveDLQMessage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	messageID := utils.QueryParam(r, "id")
	if messageID == "" {
		resp.ErrorResponse(w, http.StatusBadRequest, "Missing message ID parameter")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == "" {
		req.Notes = "Manually resolved"
	}

	if err := services.ResolveDLQMessage(messageID, req.Notes); err != nil {
		logger.Error("Error resolving DLQ message %s: %v", messageID, err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve message: "+err.Error())
		return
	}

	resp.SuccessResponse(w, http.StatusOK, "Message marked as resolved", map[string]interface{}{
		"messageId": messageID,
	})
}

// GetDLQStats retrieves statistics about DLQ messages
// GET /api/dlq/stats
func GetDLQStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := services.GetDLQStats()
	if err != nil {
		logger.Error("Error fetching DLQ statistics: %v", err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch DLQ statistics: "+err.Error())
		return
	}

	resp.SuccessResponse(w, http.StatusOK, "DLQ statistics", stats)
}
