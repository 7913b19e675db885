package analytics

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/jiwar-sa/analytics-service/internal/domain"
)

const ActionDeleteAll = "delete_all"

// PurgeResult reports one age-based cleanup pass.
type PurgeResult struct {
	Deleted    int `json:"deletedCount"`
	Retained   int `json:"retainedCount"`
	TotalFiles int `json:"totalFiles"`
	Errors     int `json:"errors"`
}

// DeleteAll removes every stored record across all key namespaces. The
// confirmation code is a fixed shared secret; a mismatch is rejected before
// the action is even looked at.
func (s *Service) DeleteAll(ctx context.Context, action, confirmationCode string) (int, error) {
	if s.store == nil {
		return 0, domain.ErrUnavailable("blob storage not configured")
	}
	if confirmationCode != s.opts.ConfirmationCode {
		return 0, domain.ErrForbidden("invalid confirmation code")
	}
	if action != ActionDeleteAll {
		return 0, domain.ErrValidationMeta("invalid action", map[string]string{
			"action": "must be " + ActionDeleteAll,
		})
	}

	blobs, err := s.listAllPrefixes(ctx)
	if err != nil {
		return 0, err
	}
	if len(blobs) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(blobs))
	for _, b := range blobs {
		keys = append(keys, b.Key)
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete %d blobs: %w", len(keys), err)
	}

	s.invalidateLogs(ctx)
	zlog.Info().Int("count", len(keys)).Msg("deleted all analytics records")

	return len(keys), nil
}

// PurgeOlderThan deletes blobs whose upload time predates the retention
// window (cron variant, no confirmation required). Per-blob failures are
// counted, never fatal. window <= 0 uses the configured default.
func (s *Service) PurgeOlderThan(ctx context.Context, window time.Duration) (PurgeResult, error) {
	if s.store == nil {
		return PurgeResult{}, domain.ErrUnavailable("blob storage not configured")
	}
	if window <= 0 {
		window = s.opts.RetentionWindow
	}
	cutoff := s.clock.Now().Add(-window)

	blobs, err := s.listAllPrefixes(ctx)
	if err != nil {
		return PurgeResult{}, err
	}

	res := PurgeResult{TotalFiles: len(blobs)}
	for _, b := range blobs {
		if !b.UploadedAt.Before(cutoff) {
			res.Retained++
			continue
		}
		if err := s.store.Delete(ctx, b.Key); err != nil {
			zlog.Error().Err(err).Str("key", b.Key).Msg("failed to delete expired blob")
			res.Errors++
			continue
		}
		res.Deleted++
	}

	if res.Deleted > 0 {
		s.invalidateLogs(ctx)
	}
	zlog.Info().
		Int("deleted", res.Deleted).
		Int("retained", res.Retained).
		Int("errors", res.Errors).
		Msg("age-based cleanup complete")

	return res, nil
}

func (s *Service) listAllPrefixes(ctx context.Context) ([]BlobInfo, error) {
	var all []BlobInfo
	for _, prefix := range s.prefixes() {
		bs, err := s.listAll(ctx, prefix, s.opts.MaxBlobs)
		if err != nil {
			return nil, fmt.Errorf("list %s blobs: %w", prefix, err)
		}
		all = append(all, bs...)
	}
	return all, nil
}

func (s *Service) invalidateLogs(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, logsCacheKey); err != nil {
		zlog.Warn().Err(err).Msg("logs cache invalidation failed")
	}
}
