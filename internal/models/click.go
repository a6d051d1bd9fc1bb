package models

import "time"

// Click is one recorded traversal of a short link. Rows are append-only.
type Click struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Fingerprint string    `json:"-"` // sha256(ip|user-agent|salt), never the raw IP
	Referer     string    `json:"referer,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats are the aggregates derived from the click log of one code.
type Stats struct {
	TotalClicks  int64        `json:"total_clicks"`
	UniqueClicks int64        `json:"unique_clicks"`
	DailyClicks  []DailyClick `json:"daily_clicks"`
}

// DailyClick is the click count of a single day, most recent first.
type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// TopLink is one entry of the most-clicked ranking.
type TopLink struct {
	Code   string `json:"short_code"`
	Clicks int64  `json:"clicks"`
}
