package analytics

// logsCacheKey fronts the full retrieval collection. Invalidated on every
// ingestion write and after cleanup.
const logsCacheKey = "analytics:logs:v1"
