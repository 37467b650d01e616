package jobs

import (
	"encoding/json"
	"time"

	"github.com/subboxhq/batchflow/internal/pkg/cache"
)

const (
	jobRunKeyPrefix = "jobs:last_run:"
	jobRunTTL       = 7 * 24 * time.Hour
)

// CacheRecorder stores the latest summary per job in Redis so operators can
// inspect what the last run did without trawling logs.
type CacheRecorder struct{}

// NewCacheRecorder creates a Redis-backed job run recorder.
func NewCacheRecorder() *CacheRecorder {
	return &CacheRecorder{}
}

func (c *CacheRecorder) RecordJobRun(name string, summary any) error {
	payload, err := json.Marshal(map[string]any{
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
		"summary":     summary,
	})
	if err != nil {
		return err
	}
	return cache.Set(jobRunKeyPrefix+name, string(payload), jobRunTTL)
}

// LastJobRun returns the stored summary JSON for a job, or "" when none is
// recorded.
func LastJobRun(name string) (string, error) {
	val, err := cache.Get(jobRunKeyPrefix + name)
	if err != nil {
		if cache.IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}
