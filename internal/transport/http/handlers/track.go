package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	"github.com/jiwar-sa/analytics-service/internal/domain"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/response"
)

type TrackHandler struct {
	svc *analytics.Service
}

func NewTrackHandler(svc *analytics.Service) *TrackHandler {
	return &TrackHandler{svc: svc}
}

type trackResp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Merged    bool   `json:"merged"`
}

// Post ingests one beacon. Payloads arrive via sendBeacon or keepalive fetch;
// unknown fields are tolerated, the client IP is enriched from trusted proxy
// headers when absent.
func (h *TrackHandler) Post(w http.ResponseWriter, r *http.Request) {
	var ev analytics.TrackEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		response.Err(w, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON",
		}))
		return
	}

	// Server-detected IP beats a missing/placeholder client value; some
	// clients literally send the string "null".
	if ev.IP == "" || ev.IP == "null" {
		if ip := clientIP(r); ip != "" {
			ev.IP = ip
		}
	}

	res, err := h.svc.Track(r.Context(), ev)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, trackResp{
		Success:   true,
		Message:   "analytics data stored",
		SessionID: res.SessionID,
		Merged:    res.Merged,
	})
}

// clientIP resolves the visitor address: cf-connecting-ip, then x-real-ip,
// then the first x-forwarded-for hop, then the socket address.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("Cf-Connecting-Ip")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
