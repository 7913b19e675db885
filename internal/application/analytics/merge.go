package analytics

import (
	"slices"
	"time"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

const (
	PageLanding  = "landing"
	PageInterest = "interest"
)

// TrackEvent is one beacon payload as the browser sends it: identity,
// attribution and the page-specific facts flattened at the top level, with
// pageName discriminating which page sub-document they belong to. Every field
// is optional on the wire.
type TrackEvent struct {
	GUID      string `json:"guid"`
	SessionID string `json:"sessionId"`

	IP      string `json:"ip"`
	Country string `json:"country"`
	UA      string `json:"ua"`
	Lang    string `json:"lang"`
	Path    string `json:"path"`

	PageName string `json:"pageName"`

	Source            string `json:"source"`
	SourceTimestamp   string `json:"sourceTimestamp"`
	Location          string `json:"location"`
	LocationTimestamp string `json:"locationTimestamp"`

	SecondsOnPage       int `json:"secondsOnPage"`
	ActiveSecondsOnPage int `json:"activeSecondsOnPage"`

	// Landing page facts
	SectionsViewed  []string           `json:"sectionsViewed"`
	NavClicks       []domain.Click     `json:"navClicks"`
	MenuClicks      []domain.Click     `json:"menuClicks"`
	FaqOpened       []string           `json:"faqOpened"`
	JiwarCardClicks []domain.Click     `json:"jiwarCardClicks"`
	CtaClicks       []domain.Click     `json:"ctaClicks"`
	Events          []domain.PageEvent `json:"events"`

	// Interest page facts
	SelectedOptions []string       `json:"selectedOptions"`
	SelectedJiwar1  []string       `json:"selectedJiwar1"`
	SelectedJiwar2  []string       `json:"selectedJiwar2"`
	Form            map[string]any `json:"form"`
	FormHasData     bool           `json:"formHasData"`
	Submitted       bool           `json:"submitted"`
	InterestSource  string         `json:"interestSource"`

	TS           string `json:"ts"`
	ExitedAt     string `json:"exitedAt"`
	SessionEnded *bool  `json:"sessionEnded"`
}

// MergeKey is the identifier the session record is stored under: sessionId,
// falling back to guid. Empty means the caller contract is violated.
func (e *TrackEvent) MergeKey() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.GUID
}

// Merge computes the next session record from the previous one (nil when the
// session has no stored record yet) and one incoming event. Inputs are never
// mutated.
//
// Field discipline:
//   - identity/attribution: first-write-wins (existing value kept once set)
//   - pageVisits: append-only, one entry per call
//   - the sub-document matching pageName: replaced wholesale, except that
//     interestPage.submitted only ever goes false -> true
//   - totals: additive accumulation
//   - sessionEnded: last-write-wins when the event carries it
//   - timestamp/lastUpdated: always now
func Merge(existing *domain.SessionRecord, ev TrackEvent, now time.Time) *domain.SessionRecord {
	visit := domain.PageVisit{
		PageName:            ev.PageName,
		Timestamp:           domain.FormatTime(now),
		SecondsOnPage:       ev.SecondsOnPage,
		ActiveSecondsOnPage: ev.ActiveSecondsOnPage,
		ExitedAt:            ev.ExitedAt,
		SessionEnded:        ev.SessionEnded != nil && *ev.SessionEnded,
	}

	if existing == nil {
		rec := &domain.SessionRecord{
			GUID:              ev.GUID,
			SessionID:         ev.SessionID,
			IP:                ev.IP,
			Country:           ev.Country,
			UA:                ev.UA,
			Lang:              ev.Lang,
			Path:              ev.Path,
			Source:            ev.Source,
			SourceTimestamp:   ev.SourceTimestamp,
			Location:          ev.Location,
			LocationTimestamp: ev.LocationTimestamp,

			PageVisits: []domain.PageVisit{visit},

			TotalSecondsOnSite:       ev.SecondsOnPage,
			TotalActiveSecondsOnSite: ev.ActiveSecondsOnPage,

			SessionEnded: ev.SessionEnded != nil && *ev.SessionEnded,
			Timestamp:    domain.FormatTime(now),
			LastUpdated:  domain.FormatTime(now),
		}
		switch ev.PageName {
		case PageLanding:
			rec.LandingPage = landingFromEvent(ev)
		case PageInterest:
			rec.InterestPage = interestFromEvent(ev)
		}
		return rec
	}

	merged := *existing

	// first-write-wins: existing ?? incoming
	merged.GUID = firstNonEmpty(existing.GUID, ev.GUID)
	merged.SessionID = firstNonEmpty(existing.SessionID, ev.SessionID)
	merged.IP = firstNonEmpty(existing.IP, ev.IP)
	merged.Country = firstNonEmpty(existing.Country, ev.Country)
	merged.UA = firstNonEmpty(existing.UA, ev.UA)
	merged.Lang = firstNonEmpty(existing.Lang, ev.Lang)
	merged.Path = firstNonEmpty(existing.Path, ev.Path)
	merged.Source = firstNonEmpty(existing.Source, ev.Source)
	merged.SourceTimestamp = firstNonEmpty(existing.SourceTimestamp, ev.SourceTimestamp)
	merged.Location = firstNonEmpty(existing.Location, ev.Location)
	merged.LocationTimestamp = firstNonEmpty(existing.LocationTimestamp, ev.LocationTimestamp)

	merged.PageVisits = append(slices.Clone(existing.PageVisits), visit)

	switch ev.PageName {
	case PageLanding:
		merged.LandingPage = landingFromEvent(ev)
	case PageInterest:
		page := interestFromEvent(ev)
		page.Submitted = ev.Submitted || existing.InterestPage.Submitted
		merged.InterestPage = page
	}

	merged.TotalSecondsOnSite = existing.TotalSecondsOnSite + ev.SecondsOnPage
	merged.TotalActiveSecondsOnSite = existing.TotalActiveSecondsOnSite + ev.ActiveSecondsOnPage

	if ev.SessionEnded != nil {
		merged.SessionEnded = *ev.SessionEnded
	}

	merged.Timestamp = domain.FormatTime(now)
	merged.LastUpdated = domain.FormatTime(now)

	return &merged
}

func landingFromEvent(ev TrackEvent) domain.LandingPage {
	return domain.LandingPage{
		SectionsViewed:      ev.SectionsViewed,
		NavClicks:           ev.NavClicks,
		MenuClicks:          ev.MenuClicks,
		FaqOpened:           ev.FaqOpened,
		JiwarCardClicks:     ev.JiwarCardClicks,
		CtaClicks:           ev.CtaClicks,
		Events:              ev.Events,
		SecondsOnPage:       ev.SecondsOnPage,
		ActiveSecondsOnPage: ev.ActiveSecondsOnPage,
		ExitedAt:            ev.ExitedAt,
	}
}

func interestFromEvent(ev TrackEvent) domain.InterestPage {
	return domain.InterestPage{
		SelectedOptions:     ev.SelectedOptions,
		SelectedJiwar1:      ev.SelectedJiwar1,
		SelectedJiwar2:      ev.SelectedJiwar2,
		Form:                ev.Form,
		FormHasData:         ev.FormHasData,
		Submitted:           ev.Submitted,
		InterestSource:      ev.InterestSource,
		SecondsOnPage:       ev.SecondsOnPage,
		ActiveSecondsOnPage: ev.ActiveSecondsOnPage,
		ExitedAt:            ev.ExitedAt,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
