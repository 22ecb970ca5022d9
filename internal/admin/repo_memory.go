package admin

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryLogsRepo is an in-memory implementation of LogsRepo.
type MemoryLogsRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   []ActivityLog
}

// NewMemoryLogsRepo constructs a MemoryLogsRepo.
func NewMemoryLogsRepo() *MemoryLogsRepo {
	return &MemoryLogsRepo{}
}

// Record stores one activity log entry.
func (r *MemoryLogsRepo) Record(ctx context.Context, log ActivityLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.data = append(r.data, log)
	return nil
}

// List returns activity logs newest-first.
func (r *MemoryLogsRepo) List(ctx context.Context, limit, offset int) ([]ActivityLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	logs := make([]ActivityLog, len(r.data))
	copy(logs, r.data)
	r.mu.RUnlock()

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].CreatedAt.Equal(logs[j].CreatedAt) {
			return logs[i].ID > logs[j].ID
		}
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})

	if offset >= len(logs) {
		return []ActivityLog{}, nil
	}
	end := len(logs)
	if offset+limit < end {
		end = offset + limit
	}
	return logs[offset:end], nil
}

// MemorySettingsRepo is an in-memory implementation of SettingsRepo.
type MemorySettingsRepo struct {
	mu   sync.RWMutex
	data map[string]Setting
}

// NewMemorySettingsRepo constructs a MemorySettingsRepo.
func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{data: make(map[string]Setting)}
}

// All returns every setting sorted by key.
func (r *MemorySettingsRepo) All(ctx context.Context) ([]Setting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Setting, 0, len(r.data))
	for _, s := range r.data {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Key, out[j].Key) < 0 })
	return out, nil
}

// Get returns one setting.
func (r *MemorySettingsRepo) Get(ctx context.Context, key string) (Setting, error) {
	if err := ctx.Err(); err != nil {
		return Setting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[key]
	if !ok {
		return Setting{}, ErrSettingNotFound
	}
	return s, nil
}

// Set upserts one setting.
func (r *MemorySettingsRepo) Set(ctx context.Context, key, value string) (Setting, error) {
	if err := ctx.Err(); err != nil {
		return Setting{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	r.data[key] = s
	return s, nil
}

// MemoryAnalyticsRepo serves an empty snapshot. Dashboard aggregates are only
// meaningful against the relational store.
type MemoryAnalyticsRepo struct{}

// Snapshot returns an empty snapshot.
func (MemoryAnalyticsRepo) Snapshot(ctx context.Context) (Analytics, error) {
	if err := ctx.Err(); err != nil {
		return Analytics{}, err
	}
	return Analytics{FileTypeCounts: map[string]int64{}, UploadsPerDay: []DayCount{}}, nil
}

var (
	_ LogsRepo      = (*MemoryLogsRepo)(nil)
	_ SettingsRepo  = (*MemorySettingsRepo)(nil)
	_ AnalyticsRepo = (MemoryAnalyticsRepo{})
)
