package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionRecord_EffectiveTime(t *testing.T) {
	t.Run("parses_timestamp", func(t *testing.T) {
		r := SessionRecord{Timestamp: "2025-11-03T10:00:00.000Z"}
		assert.Equal(t, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC), r.EffectiveTime().UTC())
	})

	t.Run("falls_back_to_legacy_ts", func(t *testing.T) {
		r := SessionRecord{TS: "2025-11-03T10:00:00Z"}
		assert.Equal(t, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC), r.EffectiveTime().UTC())
	})

	t.Run("garbage_timestamp_falls_through_to_ts", func(t *testing.T) {
		r := SessionRecord{Timestamp: "last tuesday", TS: "2025-11-03T10:00:00Z"}
		assert.Equal(t, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC), r.EffectiveTime().UTC())
	})

	t.Run("zero_when_nothing_parses", func(t *testing.T) {
		r := SessionRecord{Timestamp: "nope"}
		assert.True(t, r.EffectiveTime().IsZero())
	})
}

func TestCleanPlatformSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"known_platform", "facebook", "facebook"},
		{"case_insensitive", "TikTok", "tiktok"},
		{"whitespace_trimmed", "  snapchat ", "snapchat"},
		{"internal_cta_id_is_direct", "hero_cta_primary", ""},
		{"direct_literal_is_direct", "direct", ""},
		{"unknown_junk_is_direct", "utm_wat", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPlatformSource(tt.in))
		})
	}
}

func TestSessionRecord_Normalize(t *testing.T) {
	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	t.Run("defaults_missing_timestamp_to_now", func(t *testing.T) {
		r := SessionRecord{}
		r.Normalize(now)
		assert.Equal(t, FormatTime(now), r.Timestamp)
	})

	t.Run("promotes_legacy_ts", func(t *testing.T) {
		r := SessionRecord{TS: "2025-10-01T00:00:00.000Z"}
		r.Normalize(now)
		assert.Equal(t, "2025-10-01T00:00:00.000Z", r.Timestamp)
	})

	t.Run("keeps_existing_timestamp", func(t *testing.T) {
		r := SessionRecord{Timestamp: "2025-10-02T00:00:00.000Z", TS: "2025-10-01T00:00:00.000Z"}
		r.Normalize(now)
		assert.Equal(t, "2025-10-02T00:00:00.000Z", r.Timestamp)
	})

	t.Run("cleans_platform_source", func(t *testing.T) {
		r := SessionRecord{Source: "header_cta"}
		r.Normalize(now)
		assert.Equal(t, "", r.Source)
	})

	t.Run("nil_page_visits_become_empty", func(t *testing.T) {
		r := SessionRecord{}
		r.Normalize(now)
		assert.NotNil(t, r.PageVisits)
		assert.Empty(t, r.PageVisits)
	})
}

func TestSessionRecord_JSONShape(t *testing.T) {
	t.Run("empty_sub_documents_marshal_as_objects", func(t *testing.T) {
		r := SessionRecord{GUID: "g1", SessionID: "s1", PageVisits: []PageVisit{}}
		b, err := json.Marshal(r)
		assert.NoError(t, err)
		assert.Contains(t, string(b), `"landingPage":{}`)
		assert.Contains(t, string(b), `"interestPage":{}`)
		assert.Contains(t, string(b), `"pageVisits":[]`)
	})

	t.Run("round_trips_wire_field_names", func(t *testing.T) {
		in := `{
			"guid":"g1","sessionId":"s1","ip":"203.0.113.9","country":"Saudi Arabia",
			"sourceTimestamp":"1730000000000",
			"pageVisits":[{"pageName":"landing","timestamp":"2025-11-03T10:00:00.000Z","secondsOnPage":30}],
			"landingPage":{"sectionsViewed":["hero"],"navClicks":[{"t":1730000000000,"label":"FAQ","href":"#faq"}]},
			"interestPage":{"submitted":true,"form":{"name":"Ahmed"}},
			"totalSecondsOnSite":30,"sessionEnded":true
		}`
		var r SessionRecord
		assert.NoError(t, json.Unmarshal([]byte(in), &r))
		assert.Equal(t, "g1", r.GUID)
		assert.Equal(t, "1730000000000", r.SourceTimestamp)
		assert.Len(t, r.PageVisits, 1)
		assert.Equal(t, []string{"hero"}, r.LandingPage.SectionsViewed)
		assert.Equal(t, "FAQ", r.LandingPage.NavClicks[0].Label)
		assert.True(t, r.InterestPage.Submitted)
		assert.Equal(t, "Ahmed", r.InterestPage.Form["name"])
		assert.True(t, r.SessionEnded)
	})

	t.Run("legacy_flat_record_decodes", func(t *testing.T) {
		in := `{"guid":"g1","sessionId":"s1","ts":"2025-09-01T00:00:00.000Z","secondsOnPage":12,"sectionsViewed":["hero"],"pageName":"landing"}`
		var r SessionRecord
		assert.NoError(t, json.Unmarshal([]byte(in), &r))
		assert.Equal(t, "2025-09-01T00:00:00.000Z", r.TS)
		assert.Equal(t, 12, r.SecondsOnPage)
		assert.Equal(t, []string{"hero"}, r.SectionsViewed)
	})
}

func TestSessionRecord_Keys(t *testing.T) {
	t.Run("merge_key_prefers_session_id", func(t *testing.T) {
		r := SessionRecord{GUID: "g1", SessionID: "s1"}
		assert.Equal(t, "s1", r.MergeKey())
	})
	t.Run("merge_key_falls_back_to_guid", func(t *testing.T) {
		r := SessionRecord{GUID: "g1"}
		assert.Equal(t, "g1", r.MergeKey())
	})
	t.Run("dedup_key_combines_both", func(t *testing.T) {
		r := SessionRecord{GUID: "g1", SessionID: "s1"}
		assert.Equal(t, "g1-s1", r.DedupKey())
	})
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 11, 3, 10, 30, 45, 123000000, time.UTC)
	assert.Equal(t, "2025-11-03T10:30:45.123Z", FormatTime(ts))
}
