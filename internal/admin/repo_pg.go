package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrSettingNotFound indicates a missing settings key.
var ErrSettingNotFound = errors.New("setting not found")

// PGLogsRepo implements LogsRepo using Postgres.
type PGLogsRepo struct {
	DB *sql.DB
}

// Record inserts one activity log row.
func (r *PGLogsRepo) Record(ctx context.Context, log ActivityLog) error {
	const query = `INSERT INTO activity_logs (actor, action, detail, created_at) VALUES ($1, $2, $3, $4)`
	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query, log.Actor, log.Action, log.Detail, createdAt)
	return err
}

// List returns activity logs newest-first.
func (r *PGLogsRepo) List(ctx context.Context, limit, offset int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, actor, action, detail, created_at
FROM activity_logs
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityLog
	for rows.Next() {
		var log ActivityLog
		if err := rows.Scan(&log.ID, &log.Actor, &log.Action, &log.Detail, &log.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

// PGSettingsRepo implements SettingsRepo using Postgres.
type PGSettingsRepo struct {
	DB *sql.DB
}

// All returns every setting.
func (r *PGSettingsRepo) All(ctx context.Context) ([]Setting, error) {
	const query = `SELECT key, value, updated_at FROM settings ORDER BY key`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns one setting.
func (r *PGSettingsRepo) Get(ctx context.Context, key string) (Setting, error) {
	const query = `SELECT key, value, updated_at FROM settings WHERE key = $1 LIMIT 1`
	var s Setting
	err := r.DB.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrSettingNotFound
		}
		return Setting{}, err
	}
	return s, nil
}

// Set upserts one setting.
func (r *PGSettingsRepo) Set(ctx context.Context, key, value string) (Setting, error) {
	const query = `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
RETURNING key, value, updated_at`
	var s Setting
	if err := r.DB.QueryRowContext(ctx, query, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return Setting{}, err
	}
	return s, nil
}

// PGAnalyticsRepo implements AnalyticsRepo using Postgres.
type PGAnalyticsRepo struct {
	DB *sql.DB
}

// Snapshot runs the dashboard aggregate queries.
func (r *PGAnalyticsRepo) Snapshot(ctx context.Context) (Analytics, error) {
	var out Analytics

	const totalsQuery = `
SELECT
  (SELECT count(*) FROM users),
  (SELECT count(*) FROM documents),
  (SELECT count(*) FROM suggestions),
  (SELECT avg(originality_score) FROM documents WHERE originality_score IS NOT NULL)`
	var avg sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, totalsQuery).Scan(
		&out.TotalUsers,
		&out.TotalDocuments,
		&out.TotalSuggestions,
		&avg,
	); err != nil {
		return Analytics{}, err
	}
	if avg.Valid {
		out.AverageOriginalityScore = &avg.Float64
	}

	const uploadsQuery = `
SELECT to_char(date_trunc('day', uploaded_at), 'YYYY-MM-DD') AS day, count(*)
FROM documents
WHERE uploaded_at >= now() - interval '14 days'
GROUP BY 1
ORDER BY 1`
	rows, err := r.DB.QueryContext(ctx, uploadsQuery)
	if err != nil {
		return Analytics{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return Analytics{}, err
		}
		out.UploadsPerDay = append(out.UploadsPerDay, dc)
	}
	if err := rows.Err(); err != nil {
		return Analytics{}, err
	}

	const typesQuery = `SELECT file_type, count(*) FROM documents GROUP BY file_type`
	typeRows, err := r.DB.QueryContext(ctx, typesQuery)
	if err != nil {
		return Analytics{}, err
	}
	defer typeRows.Close()
	out.FileTypeCounts = make(map[string]int64)
	for typeRows.Next() {
		var fileType string
		var count int64
		if err := typeRows.Scan(&fileType, &count); err != nil {
			return Analytics{}, err
		}
		out.FileTypeCounts[fileType] = count
	}
	return out, typeRows.Err()
}

var (
	_ LogsRepo      = (*PGLogsRepo)(nil)
	_ SettingsRepo  = (*PGSettingsRepo)(nil)
	_ AnalyticsRepo = (*PGAnalyticsRepo)(nil)
)
