package admin

import "context"

// LogsRepo persists and lists activity logs.
type LogsRepo interface {
	Record(ctx context.Context, log ActivityLog) error
	List(ctx context.Context, limit, offset int) ([]ActivityLog, error)
}

// SettingsRepo is a key/value store for dashboard settings.
type SettingsRepo interface {
	All(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (Setting, error)
	Set(ctx context.Context, key, value string) (Setting, error)
}

// AnalyticsRepo computes the dashboard snapshot.
type AnalyticsRepo interface {
	Snapshot(ctx context.Context) (Analytics, error)
}
