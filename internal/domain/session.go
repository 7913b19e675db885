package domain

import (
	"strings"
	"time"
)

// TimeLayout is the wire format for record timestamps. Stored blobs written by
// earlier deployments carry JS Date.toISOString() values, which RFC3339Nano
// parses as a superset.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Click is a single tracked click on a nav link, menu item, card or CTA.
type Click struct {
	T     int64  `json:"t"`
	Label string `json:"label,omitempty"`
	Href  string `json:"href,omitempty"`
}

// PageEvent is one entry of the raw in-page event stream.
type PageEvent struct {
	T     int64  `json:"t"`
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Href  string `json:"href,omitempty"`
	Q     string `json:"q,omitempty"`
}

// PageVisit is one append-only entry per ingested beacon.
type PageVisit struct {
	PageName            string `json:"pageName"`
	Timestamp           string `json:"timestamp"`
	SecondsOnPage       int    `json:"secondsOnPage"`
	ActiveSecondsOnPage int    `json:"activeSecondsOnPage,omitempty"`
	ExitedAt            string `json:"exitedAt,omitempty"`
	SessionEnded        bool   `json:"sessionEnded,omitempty"`
}

// LandingPage holds the interaction facts captured on the landing page.
// All fields are optional so the zero value marshals as {}.
type LandingPage struct {
	SectionsViewed      []string    `json:"sectionsViewed,omitempty"`
	NavClicks           []Click     `json:"navClicks,omitempty"`
	MenuClicks          []Click     `json:"menuClicks,omitempty"`
	FaqOpened           []string    `json:"faqOpened,omitempty"`
	JiwarCardClicks     []Click     `json:"jiwarCardClicks,omitempty"`
	CtaClicks           []Click     `json:"ctaClicks,omitempty"`
	Events              []PageEvent `json:"events,omitempty"`
	SecondsOnPage       int         `json:"secondsOnPage,omitempty"`
	ActiveSecondsOnPage int         `json:"activeSecondsOnPage,omitempty"`
	ExitedAt            string      `json:"exitedAt,omitempty"`
}

// InterestPage holds the interaction facts captured on the interest page,
// including the unit-selection form. Submitted is monotonic across merges.
type InterestPage struct {
	SelectedOptions     []string       `json:"selectedOptions,omitempty"`
	SelectedJiwar1      []string       `json:"selectedJiwar1,omitempty"`
	SelectedJiwar2      []string       `json:"selectedJiwar2,omitempty"`
	Form                map[string]any `json:"form,omitempty"`
	FormHasData         bool           `json:"formHasData,omitempty"`
	Submitted           bool           `json:"submitted,omitempty"`
	InterestSource      string         `json:"interestSource,omitempty"`
	SecondsOnPage       int            `json:"secondsOnPage,omitempty"`
	ActiveSecondsOnPage int            `json:"activeSecondsOnPage,omitempty"`
	ExitedAt            string         `json:"exitedAt,omitempty"`
}

// SessionRecord is the cumulative merged analytics document for one browsing
// session, one stored blob per (guid, sessionId).
type SessionRecord struct {
	GUID      string `json:"guid,omitempty"`
	SessionID string `json:"sessionId,omitempty"`

	IP      string `json:"ip,omitempty"`
	Country string `json:"country,omitempty"`
	UA      string `json:"ua,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Path    string `json:"path,omitempty"`

	// Attribution, first-write-wins once non-empty.
	Source            string `json:"source,omitempty"`
	SourceTimestamp   string `json:"sourceTimestamp,omitempty"`
	Location          string `json:"location,omitempty"`
	LocationTimestamp string `json:"locationTimestamp,omitempty"`

	PageVisits   []PageVisit  `json:"pageVisits"`
	LandingPage  LandingPage  `json:"landingPage"`
	InterestPage InterestPage `json:"interestPage"`

	TotalSecondsOnSite       int `json:"totalSecondsOnSite"`
	TotalActiveSecondsOnSite int `json:"totalActiveSecondsOnSite"`

	SessionEnded bool   `json:"sessionEnded"`
	Timestamp    string `json:"timestamp,omitempty"`
	LastUpdated  string `json:"lastUpdated,omitempty"`

	// Legacy per-event shape (analytics-*.json blobs), kept so old records
	// survive a read/normalize round trip.
	TS                  string      `json:"ts,omitempty"`
	SecondsOnPage       int         `json:"secondsOnPage,omitempty"`
	ActiveSecondsOnPage int         `json:"activeSecondsOnPage,omitempty"`
	SectionsViewed      []string    `json:"sectionsViewed,omitempty"`
	NavClicks           []Click     `json:"navClicks,omitempty"`
	MenuClicks          []Click     `json:"menuClicks,omitempty"`
	FaqOpened           []string    `json:"faqOpened,omitempty"`
	Events              []PageEvent `json:"events,omitempty"`
	PageName            string      `json:"pageName,omitempty"`
}

// MergeKey returns the identifier a record is stored under: sessionId,
// falling back to guid for legacy records.
func (r *SessionRecord) MergeKey() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.GUID
}

// DedupKey identifies one browsing session across duplicate blobs.
func (r *SessionRecord) DedupKey() string {
	return r.GUID + "-" + r.SessionID
}

// EffectiveTime parses the record timestamp, falling back to the legacy ts
// field. Returns the zero time when neither parses.
func (r *SessionRecord) EffectiveTime() time.Time {
	for _, s := range []string{r.Timestamp, r.TS} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatTime renders t in the wire format used for record timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// validPlatforms are the referral sources counted as marketing channels.
// Anything else carried in the source field (internal CTA ids, "direct", junk)
// is treated as direct traffic.
var validPlatforms = map[string]bool{
	"facebook":  true,
	"twitter":   true,
	"snapchat":  true,
	"tiktok":    true,
	"instagram": true,
}

// CleanPlatformSource lowercases a known platform source and blanks anything
// that is not a recognized marketing channel.
func CleanPlatformSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	if validPlatforms[s] {
		return s
	}
	return ""
}

// Normalize fills defaults for missing or malformed fields so callers never
// see a partially-written or legacy-shape record. Applied uniformly at the
// retrieval boundary.
func (r *SessionRecord) Normalize(now time.Time) {
	if r.Timestamp == "" {
		if r.TS != "" {
			r.Timestamp = r.TS
		} else {
			r.Timestamp = FormatTime(now)
		}
	}
	r.Source = CleanPlatformSource(r.Source)
	if r.PageVisits == nil {
		r.PageVisits = []PageVisit{}
	}
}
