package handlers

import (
	"net/http"
	"strconv"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	"github.com/jiwar-sa/analytics-service/internal/domain"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/response"
)

type LogsHandler struct {
	svc *analytics.Service
}

func NewLogsHandler(svc *analytics.Service) *LogsHandler {
	return &LogsHandler{svc: svc}
}

type logsResp struct {
	Success bool                   `json:"success"`
	Logs    []domain.SessionRecord `json:"logs"`
	Count   int                    `json:"count"`
}

// Get returns the full session collection, newest-first. The dashboard sends
// a ?t= cache-buster which is ignored; ?limit= caps the listing.
func (h *LogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}

	logs, err := h.svc.Logs(r.Context(), limit)
	if err != nil {
		response.Err(w, err)
		return
	}

	// the dashboards poll; keep intermediaries out of it
	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, http.StatusOK, logsResp{
		Success: true,
		Logs:    logs,
		Count:   len(logs),
	})
}

type statsResp struct {
	Success bool            `json:"success"`
	Stats   analytics.Stats `json:"stats"`
}

// GetStats returns the dashboard groupings computed server-side.
func (h *LogsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.Err(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, http.StatusOK, statsResp{Success: true, Stats: stats})
}
