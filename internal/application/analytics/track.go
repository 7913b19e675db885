package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

type TrackResult struct {
	SessionID string
	Merged    bool
}

// LeadSubmitted is the notification body published the first time a session's
// interest form is submitted.
type LeadSubmitted struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	OccurredAt  string         `json:"occurredAt"`
	GUID        string         `json:"guid"`
	SessionID   string         `json:"sessionId"`
	Country     string         `json:"country,omitempty"`
	Source      string         `json:"source,omitempty"`
	Form        map[string]any `json:"form,omitempty"`
	FormHasData bool           `json:"formHasData,omitempty"`
}

// Track ingests one beacon: locate the session's stored record, merge the
// event into it, write the result back under the derived key and drop any
// stale blobs for the same session. Read-merge-write runs without isolation;
// concurrent beacons for one session resolve last-write-wins.
func (s *Service) Track(ctx context.Context, ev TrackEvent) (TrackResult, error) {
	if s.store == nil {
		return TrackResult{}, domain.ErrUnavailable("blob storage not configured")
	}

	key := ev.MergeKey()
	if key == "" {
		return TrackResult{}, domain.ErrValidationMeta("invalid payload", map[string]string{
			"sessionId": "payload must carry sessionId or guid",
		})
	}

	prefix := s.opts.SessionPrefix + key
	page, err := s.store.List(ctx, prefix, "", 100)
	if err != nil {
		return TrackResult{}, fmt.Errorf("list session blobs: %w", err)
	}

	var existing *domain.SessionRecord
	var existingKeys []string
	var latest BlobInfo
	for _, b := range page.Blobs {
		existingKeys = append(existingKeys, b.Key)
		if latest.Key == "" || b.UploadedAt.After(latest.UploadedAt) {
			latest = b
		}
	}

	if latest.Key != "" {
		body, err := s.store.Get(ctx, latest.Key)
		if err != nil {
			return TrackResult{}, fmt.Errorf("get session blob %s: %w", latest.Key, err)
		}
		var rec domain.SessionRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			// Partially-written blob: start the session over rather than fail
			// the beacon.
			zlog.Warn().Err(err).Str("key", latest.Key).Msg("unparseable session blob, replacing")
		} else {
			existing = &rec
		}
	}

	wasSubmitted := existing != nil && existing.InterestPage.Submitted

	merged := Merge(existing, ev, s.clock.Now())

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return TrackResult{}, fmt.Errorf("marshal session record: %w", err)
	}

	newKey := s.opts.SessionPrefix + key + ".json"
	if err := s.store.Put(ctx, newKey, data); err != nil {
		return TrackResult{}, fmt.Errorf("put session blob %s: %w", newKey, err)
	}

	var stale []string
	for _, k := range existingKeys {
		if k != newKey {
			stale = append(stale, k)
		}
	}
	if len(stale) > 0 {
		// Leftover duplicates are collapsed at retrieval, so a failed delete
		// is not fatal to the beacon.
		if err := s.store.Delete(ctx, stale...); err != nil {
			zlog.Warn().Err(err).Strs("keys", stale).Msg("failed to delete stale session blobs")
		}
	}

	s.invalidateLogs(ctx)

	if merged.InterestPage.Submitted && !wasSubmitted {
		s.publishLead(ctx, merged)
	}

	return TrackResult{SessionID: key, Merged: existing != nil}, nil
}

// publishLead is best-effort: a broker outage must never fail the beacon.
func (s *Service) publishLead(ctx context.Context, rec *domain.SessionRecord) {
	lead := LeadSubmitted{
		ID:          uuid.NewString(),
		Type:        "lead.submitted",
		OccurredAt:  rec.LastUpdated,
		GUID:        rec.GUID,
		SessionID:   rec.SessionID,
		Country:     rec.Country,
		Source:      rec.Source,
		Form:        rec.InterestPage.Form,
		FormHasData: rec.InterestPage.FormHasData,
	}
	body, err := json.Marshal(lead)
	if err != nil {
		zlog.Error().Err(err).Msg("marshal lead notification")
		return
	}
	if err := s.pub.Publish(ctx, "lead.submitted", lead.ID, body); err != nil {
		zlog.Warn().Err(err).Str("session_id", rec.SessionID).Msg("lead notification publish failed")
	}
}
