package analytics

import (
	"context"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

// Stats are the dashboard groupings computed over the retrieved collection.
type Stats struct {
	UniqueVisitors int            `json:"uniqueVisitors"`
	Sessions       int            `json:"sessions"`
	Submitted      int            `json:"submitted"`
	ByCountry      map[string]int `json:"byCountry"`
	ByPlatform     map[string]int `json:"byPlatform"`
}

const (
	countryUnknown = "unknown"
	platformDirect = "direct"
)

// Stats aggregates the full session collection: visitors by guid, sessions by
// (guid, sessionId), submissions, and groupings by country and referral
// platform. Records with no recognized platform count as direct traffic.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.Logs(ctx, 0)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(records), nil
}

func computeStats(records []domain.SessionRecord) Stats {
	st := Stats{
		Sessions:   len(records),
		ByCountry:  map[string]int{},
		ByPlatform: map[string]int{},
	}

	visitors := make(map[string]bool, len(records))
	for _, r := range records {
		if !visitors[r.GUID] {
			visitors[r.GUID] = true
		}

		if r.InterestPage.Submitted {
			st.Submitted++
		}

		country := r.Country
		if country == "" {
			country = countryUnknown
		}
		st.ByCountry[country]++

		platform := r.Source
		if platform == "" {
			platform = platformDirect
		}
		st.ByPlatform[platform]++
	}
	st.UniqueVisitors = len(visitors)

	return st
}
