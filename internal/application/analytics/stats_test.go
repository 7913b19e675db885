package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

func TestComputeStats(t *testing.T) {
	records := []domain.SessionRecord{
		{GUID: "g1", SessionID: "a", Country: "Saudi Arabia", Source: "facebook"},
		{GUID: "g1", SessionID: "b", Country: "Saudi Arabia", InterestPage: domain.InterestPage{Submitted: true}},
		{GUID: "g2", SessionID: "c", Source: "tiktok", InterestPage: domain.InterestPage{Submitted: true}},
	}

	st := computeStats(records)

	assert.Equal(t, 2, st.UniqueVisitors)
	assert.Equal(t, 3, st.Sessions)
	assert.Equal(t, 2, st.Submitted)
	assert.Equal(t, map[string]int{"Saudi Arabia": 2, "unknown": 1}, st.ByCountry)
	assert.Equal(t, map[string]int{"facebook": 1, "tiktok": 1, "direct": 1}, st.ByPlatform)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	t.Run("aggregates_stored_sessions", func(t *testing.T) {
		store := newMemStore()
		svc, _ := testService(store)
		seedSession(t, store, "g1", "a", base, func(r *domain.SessionRecord) {
			r.Country = "Egypt"
			r.InterestPage.Submitted = true
		})
		seedSession(t, store, "g2", "b", base, nil)

		st, err := svc.Stats(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, st.UniqueVisitors)
		assert.Equal(t, 2, st.Sessions)
		assert.Equal(t, 1, st.Submitted)
		assert.Equal(t, 1, st.ByCountry["Egypt"])
	})

	t.Run("empty_when_storage_unconfigured", func(t *testing.T) {
		svc, _ := testService(nil)
		st, err := svc.Stats(ctx)
		assert.NoError(t, err)
		assert.Zero(t, st.Sessions)
		assert.Empty(t, st.ByCountry)
	})
}
