package analytics

import "time"

// Options bounds the retrieval fan-out and names the key namespaces.
type Options struct {
	SessionPrefix string
	LegacyPrefix  string

	MaxBlobs        int
	FetchBatchSize  int
	FetchTimeout    time.Duration
	RetrievalBudget time.Duration
	CacheTTL        time.Duration

	ConfirmationCode string
	RetentionWindow  time.Duration
}

type Service struct {
	store BlobStore
	cache Cache
	pub   LeadPublisher
	clock Clock

	opts Options
}

// New wires the ingestion/retrieval pipeline. store may be nil when the blob
// credentials are absent: ingestion then degrades to 503 and retrieval to an
// empty collection. cache may be nil (no caching), pub may be nil (no lead
// notifications).
func New(store BlobStore, cache Cache, pub LeadPublisher, clock Clock, opts Options) *Service {
	// Defaults if 0
	if opts.SessionPrefix == "" {
		opts.SessionPrefix = "session-"
	}
	if opts.LegacyPrefix == "" {
		opts.LegacyPrefix = "analytics-"
	}
	if opts.MaxBlobs == 0 {
		opts.MaxBlobs = 10000
	}
	if opts.FetchBatchSize == 0 {
		opts.FetchBatchSize = 200
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.RetrievalBudget == 0 {
		opts.RetrievalBudget = 55 * time.Second
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 15 * time.Second
	}
	if opts.RetentionWindow == 0 {
		opts.RetentionWindow = 30 * 24 * time.Hour
	}
	if pub == nil {
		pub = NoopPublisher{}
	}

	return &Service{
		store: store,
		cache: cache,
		pub:   pub,
		clock: clock,
		opts:  opts,
	}
}

// prefixes returns the key namespaces scanned during retrieval and cleanup,
// live layout first.
func (s *Service) prefixes() []string {
	return []string{s.opts.SessionPrefix, s.opts.LegacyPrefix}
}
