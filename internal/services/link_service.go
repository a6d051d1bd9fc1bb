package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/database"
	"github.com/gorgio/shortlink-be/internal/models"
	"github.com/gorgio/shortlink-be/internal/validator"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	maxAttempts  = 5
)

// LinkServiceProvider defines the interface for link services.
type LinkServiceProvider interface {
	Shorten(ctx context.Context, ownerID, originalURL, customAlias string) (models.Link, error)
	Resolve(ctx context.Context, code string) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	Top(ctx context.Context, period string, limit int) ([]models.TopLink, error)
}

// LinkService owns the short code registry: generation, reservation,
// resolution and per-owner listing.
type LinkService struct {
	db    *sql.DB
	cache *cache.Cache
}

// NewLinkService creates a new LinkService.
func NewLinkService(db *sql.DB, c *cache.Cache) *LinkService {
	return &LinkService{db: db, cache: c}
}

// Shorten validates the destination URL and reserves a code for it. With a
// custom alias exactly one insert is attempted; without one, random
// candidates are tried until the insert succeeds or the attempt budget runs
// out. The INSERT against the PRIMARY KEY is the only uniqueness check, so
// two concurrent requests can never both win the same code.
func (s *LinkService) Shorten(ctx context.Context, ownerID, originalURL, customAlias string) (models.Link, error) {
	if err := validator.ValidateURL(originalURL); err != nil {
		return models.Link{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if customAlias != "" {
		if err := validator.ValidateShortCode(customAlias); err != nil {
			return models.Link{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}
		link, err := s.insert(ctx, customAlias, ownerID, originalURL)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return models.Link{}, fmt.Errorf("%w: alias %q taken", models.ErrConflict, customAlias)
			}
			return models.Link{}, err
		}
		return link, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return models.Link{}, fmt.Errorf("failed to generate code: %w", err)
		}
		link, err := s.insert(ctx, code, ownerID, originalURL)
		if err != nil {
			if database.IsUniqueViolation(err) {
				log.Warn().Str("code", code).Int("attempt", attempt+1).Msg("Short code collision, retrying")
				continue
			}
			return models.Link{}, err
		}
		return link, nil
	}

	return models.Link{}, fmt.Errorf("%w: gave up after %d attempts", models.ErrExhausted, maxAttempts)
}

func (s *LinkService) insert(ctx context.Context, code, ownerID, originalURL string) (models.Link, error) {
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO links (code, owner_id, original_url) VALUES (?, ?, ?) RETURNING created_at",
		code, ownerID, originalURL).Scan(&createdAt)
	if err != nil {
		return models.Link{}, err
	}

	s.cache.SetURL(ctx, code, originalURL)
	return models.Link{
		Code:        code,
		OwnerID:     ownerID,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
	}, nil
}

// Resolve returns the destination URL of a code. Reads go through the
// cache first; link rows never change once created, so cached entries only
// ever expire, never go stale.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	if url, ok := s.cache.GetURL(ctx, code); ok {
		return url, nil
	}

	var url string
	err := s.db.QueryRowContext(ctx,
		"SELECT original_url FROM links WHERE code = ?", code).Scan(&url)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: code %q", models.ErrNotFound, code)
		}
		return "", err
	}

	s.cache.SetURL(ctx, code, url)
	return url, nil
}

// ListByOwner returns the owner's links, most recent first, each carrying
// its current total click count.
func (s *LinkService) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.code, l.owner_id, l.original_url, l.created_at, COUNT(c.id)
		FROM links l
		LEFT JOIN clicks c ON c.code = l.code
		WHERE l.owner_id = ?
		GROUP BY l.code
		ORDER BY l.created_at DESC, l.rowid DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.Code, &link.OwnerID, &link.OriginalURL, &link.CreatedAt, &link.Clicks); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Top returns the most-clicked codes for a period (all, day, week, month).
func (s *LinkService) Top(ctx context.Context, period string, limit int) ([]models.TopLink, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	since := time.Time{}
	now := time.Now().UTC()
	switch period {
	case "day":
		since = now.AddDate(0, 0, -1)
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, COUNT(*) AS clicks
		FROM clicks
		WHERE created_at >= ?
		GROUP BY code
		ORDER BY clicks DESC
		LIMIT ?`, since.UTC().Format(database.TimeLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]models.TopLink, 0, limit)
	for rows.Next() {
		var entry models.TopLink
		if err := rows.Scan(&entry.Code, &entry.Clicks); err != nil {
			return nil, err
		}
		top = append(top, entry)
	}
	return top, rows.Err()
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
