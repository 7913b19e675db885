package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

// Logs returns every stored session record, normalized, newest-first and
// deduplicated on (guid, sessionId). Unconfigured storage yields an empty
// collection so the dashboards still render. Individual blob failures are
// skipped; when the wall-clock budget runs out the records retrieved so far
// are returned.
//
// limit > 0 caps the listing (dashboard dev mode); 0 means everything up to
// the safety cap. The cache only fronts uncapped calls.
func (s *Service) Logs(ctx context.Context, limit int) ([]domain.SessionRecord, error) {
	if s.store == nil {
		return []domain.SessionRecord{}, nil
	}

	if s.cache != nil && limit == 0 {
		var cached []domain.SessionRecord
		if ok, err := s.cache.Get(ctx, logsCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	max := s.opts.MaxBlobs
	if limit > 0 && limit < max {
		max = limit
	}

	var blobs []BlobInfo
	for _, prefix := range s.prefixes() {
		bs, err := s.listAll(ctx, prefix, max)
		if err != nil {
			return nil, fmt.Errorf("list %s blobs: %w", prefix, err)
		}
		blobs = append(blobs, bs...)
	}

	records := s.fetchRecords(ctx, blobs)

	now := s.clock.Now()
	for i := range records {
		records[i].Normalize(now)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EffectiveTime().After(records[j].EffectiveTime())
	})

	records = dedupe(records)

	if s.cache != nil && limit == 0 {
		if err := s.cache.Set(ctx, logsCacheKey, records, s.opts.CacheTTL); err != nil {
			zlog.Warn().Err(err).Msg("logs cache set failed")
		}
	}

	return records, nil
}

// listAll pages through one key prefix until exhausted or max entries, with
// the hard cap guarding against a runaway listing.
func (s *Service) listAll(ctx context.Context, prefix string, max int) ([]BlobInfo, error) {
	var all []BlobInfo
	cursor := ""
	for {
		limit := 1000
		if remaining := max - len(all); remaining < limit {
			limit = remaining
		}
		if limit <= 0 {
			break
		}

		page, err := s.store.List(ctx, prefix, cursor, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Blobs...)
		cursor = page.Cursor

		if !page.HasMore {
			break
		}
		if len(all) >= s.opts.MaxBlobs {
			zlog.Warn().Str("prefix", prefix).Int("count", len(all)).Msg("blob listing safety cap reached")
			break
		}
	}
	return all, nil
}

// fetchRecords gets blob bodies in bounded concurrent batches. Each fetch has
// its own timeout so one slow blob cannot stall a batch; between batches the
// overall budget is checked and violations return partial results.
func (s *Service) fetchRecords(ctx context.Context, blobs []BlobInfo) []domain.SessionRecord {
	deadline := s.clock.Now().Add(s.opts.RetrievalBudget)
	records := make([]domain.SessionRecord, 0, len(blobs))
	var mu sync.Mutex

	for start := 0; start < len(blobs); start += s.opts.FetchBatchSize {
		if s.clock.Now().After(deadline) {
			zlog.Warn().
				Int("retrieved", len(records)).
				Int("total", len(blobs)).
				Msg("retrieval budget exhausted, returning partial results")
			break
		}

		end := start + s.opts.FetchBatchSize
		if end > len(blobs) {
			end = len(blobs)
		}

		var wg sync.WaitGroup
		for _, b := range blobs[start:end] {
			wg.Add(1)
			go func(b BlobInfo) {
				defer wg.Done()

				fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
				defer cancel()

				body, err := s.store.Get(fctx, b.Key)
				if err != nil {
					zlog.Warn().Err(err).Str("key", b.Key).Msg("skipping unfetchable blob")
					return
				}
				var rec domain.SessionRecord
				if err := json.Unmarshal(body, &rec); err != nil {
					zlog.Warn().Err(err).Str("key", b.Key).Msg("skipping unparseable blob")
					return
				}

				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}(b)
		}
		wg.Wait()
	}

	return records
}

// dedupe collapses records sharing (guid, sessionId), keeping the first
// occurrence. The input is already sorted newest-first, so the freshest
// duplicate survives.
func dedupe(records []domain.SessionRecord) []domain.SessionRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		k := r.DedupKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
