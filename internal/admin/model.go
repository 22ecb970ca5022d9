package admin

import "time"

// ActivityLog is one recorded action, newest-first in listings.
type ActivityLog struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting is one dashboard configuration entry.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayCount is a per-day upload count for the dashboard chart.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Analytics is the dashboard snapshot.
type Analytics struct {
	TotalUsers              int64            `json:"total_users"`
	TotalDocuments          int64            `json:"total_documents"`
	TotalSuggestions        int64            `json:"total_suggestions"`
	AverageOriginalityScore *float64         `json:"average_originality_score"`
	UploadsPerDay           []DayCount       `json:"uploads_per_day"`
	FileTypeCounts          map[string]int64 `json:"file_type_counts"`
}
