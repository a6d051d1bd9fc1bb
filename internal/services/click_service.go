package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/database"
	"github.com/gorgio/shortlink-be/internal/models"
)

// ClickServiceProvider defines the interface for click recording and stats.
type ClickServiceProvider interface {
	Record(ctx context.Context, code, fingerprint, referer string) error
	StatsFor(ctx context.Context, code string) (models.Stats, error)
	Fingerprint(ip, userAgent string) string
}

// ClickService appends click events and derives aggregates from them. The
// click log is the source of truth; cached aggregates are a read
// optimization only.
type ClickService struct {
	db    *sql.DB
	cache *cache.Cache
	salt  string
}

// NewClickService creates a new ClickService.
func NewClickService(db *sql.DB, c *cache.Cache, fingerprintSalt string) *ClickService {
	return &ClickService{db: db, cache: c, salt: fingerprintSalt}
}

// Fingerprint derives the anonymized visitor identifier from the client IP
// and user agent. The raw IP is never stored.
func (s *ClickService) Fingerprint(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + s.salt))
	return hex.EncodeToString(h[:])
}

// Record appends one click event for a known code. Repeated fingerprints
// are expected; they are what separates total from unique counts. The
// write is a plain INSERT, safe under concurrent callers.
func (s *ClickService) Record(ctx context.Context, code, fingerprint, referer string) error {
	if err := s.codeExists(ctx, code); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clicks (code, fingerprint, referer) VALUES (?, ?, ?)",
		code, fingerprint, referer)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	s.cache.InvalidateStats(ctx, code)
	return nil
}

// StatsFor returns the aggregates of a known code. A code with no clicks
// yet yields zero counts, not an error.
func (s *ClickService) StatsFor(ctx context.Context, code string) (models.Stats, error) {
	if err := s.codeExists(ctx, code); err != nil {
		return models.Stats{}, err
	}

	if cached, ok := s.cache.GetStats(ctx, code); ok {
		return *cached, nil
	}

	stats, err := s.computeStats(ctx, code)
	if err != nil {
		return models.Stats{}, err
	}

	s.cache.SetStats(ctx, code, &stats)
	return stats, nil
}

// RecentCodes returns the codes clicked since a point in time. Used by the
// background aggregate warmer to decide what is worth precomputing.
func (s *ClickService) RecentCodes(ctx context.Context, since time.Time, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code FROM clicks
		WHERE created_at >= ?
		GROUP BY code
		ORDER BY COUNT(*) DESC
		LIMIT ?`, since.UTC().Format(database.TimeLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// WarmStats recomputes the aggregate of a code and refreshes the cache.
func (s *ClickService) WarmStats(ctx context.Context, code string) error {
	stats, err := s.computeStats(ctx, code)
	if err != nil {
		return err
	}
	s.cache.SetStats(ctx, code, &stats)
	return nil
}

func (s *ClickService) computeStats(ctx context.Context, code string) (models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT fingerprint) FROM clicks WHERE code = ?",
		code).Scan(&stats.TotalClicks, &stats.UniqueClicks)
	if err != nil {
		return models.Stats{}, err
	}

	daily, err := s.dailyClicks(ctx, code)
	if err != nil {
		return models.Stats{}, err
	}
	stats.DailyClicks = daily
	return stats, nil
}

// dailyClicks returns the last 7 days of counts, today first, with days
// without clicks filled in as zero.
func (s *ClickService) dailyClicks(ctx context.Context, code string) ([]models.DailyClick, error) {
	since := time.Now().UTC().AddDate(0, 0, -6).Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at), COUNT(*)
		FROM clicks
		WHERE code = ? AND date(created_at) >= ?
		GROUP BY date(created_at)`, code, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var day string
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily := make([]models.DailyClick, 0, 7)
	for i := 0; i < 7; i++ {
		day := time.Now().UTC().AddDate(0, 0, -i).Format("2006-01-02")
		daily = append(daily, models.DailyClick{Date: day, Count: counts[day]})
	}
	return daily, nil
}

func (s *ClickService) codeExists(ctx context.Context, code string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM links WHERE code = ?)", code).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: code %q", models.ErrNotFound, code)
	}
	return nil
}
