package cache

import (
	"context"
	"encoding/json"
	"time"
)

// ReportCache holds rendered report payloads keyed by report id plus its
// parameters. Reports are read-heavy and tolerate short staleness.
type ReportCache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (json.RawMessage, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ json.RawMessage, _ time.Duration) error {
	return nil
}
