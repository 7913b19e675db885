package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	"github.com/jiwar-sa/analytics-service/internal/domain"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/response"
)

type CleanupHandler struct {
	svc *analytics.Service
}

func NewCleanupHandler(svc *analytics.Service) *CleanupHandler {
	return &CleanupHandler{svc: svc}
}

type cleanupReq struct {
	Action           string `json:"action"`
	ConfirmationCode string `json:"confirmationCode"`
}

type deleteAllResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type purgeResp struct {
	Success bool `json:"success"`
	analytics.PurgeResult
}

// Post runs one of the two cleanup variants. A body with an action is the
// admin bulk delete gated on the confirmation code; an empty body is the cron
// age-based retention purge.
func (h *CleanupHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req cleanupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Err(w, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON",
		}))
		return
	}

	if req.Action == "" && req.ConfirmationCode == "" {
		res, err := h.svc.PurgeOlderThan(r.Context(), 0)
		if err != nil {
			response.Err(w, err)
			return
		}
		response.JSON(w, http.StatusOK, purgeResp{Success: true, PurgeResult: res})
		return
	}

	count, err := h.svc.DeleteAll(r.Context(), req.Action, req.ConfirmationCode)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, deleteAllResp{
		Success: true,
		Message: fmt.Sprintf("Deleted %d records", count),
		Count:   count,
	})
}
