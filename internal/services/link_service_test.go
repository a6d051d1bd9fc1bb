package services

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorgio/shortlink-be/internal/models"
)

var codePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)

func TestLinkService_Shorten_GeneratedCodes(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	owner := seedUser(t, db, "alice")
	ctx := context.Background()

	first, err := svc.Shorten(ctx, owner, "https://a.com", "")
	require.NoError(t, err)
	assert.Regexp(t, codePattern, first.Code)
	assert.Equal(t, "https://a.com", first.OriginalURL)
	assert.False(t, first.CreatedAt.IsZero())

	// Same destination again must yield a fresh, distinct code.
	second, err := svc.Shorten(ctx, owner, "https://a.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)
}

func TestLinkService_Shorten_CustomAlias(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	ctx := context.Background()

	link, err := svc.Shorten(ctx, owner, "https://a.com", "my-link")
	require.NoError(t, err)
	assert.Equal(t, "my-link", link.Code)

	// Taken alias fails regardless of who asks, never overwrites.
	_, err = svc.Shorten(ctx, other, "https://b.com", "my-link")
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := svc.Resolve(ctx, "my-link")
	require.NoError(t, err)
	assert.Equal(t, "https://a.com", got)
}

func TestLinkService_Shorten_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	owner := seedUser(t, db, "alice")
	ctx := context.Background()

	tests := []struct {
		name  string
		url   string
		alias string
	}{
		{name: "empty url", url: ""},
		{name: "no scheme", url: "example.com/page"},
		{name: "ftp scheme", url: "ftp://example.com"},
		{name: "alias too short", url: "https://a.com", alias: "ab"},
		{name: "alias too long", url: "https://a.com", alias: "abcdefghijklmno"},
		{name: "alias with slash", url: "https://a.com", alias: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Shorten(ctx, owner, tt.url, tt.alias)
			require.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestLinkService_Shorten_ConcurrentSameAlias(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	owner := seedUser(t, db, "alice")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Shorten(context.Background(), owner, "https://a.com", "popular")
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, models.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one reservation must win")
	assert.Equal(t, workers-1, conflicts)
}

func TestLinkService_Resolve(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	owner := seedUser(t, db, "alice")
	ctx := context.Background()

	link, err := svc.Shorten(ctx, owner, "https://example.com/page", "")
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got)

	_, err = svc.Resolve(ctx, "nosuch")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLinkService_ListByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	clicks := NewClickService(db, noCache(t), "salt")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	ctx := context.Background()

	// Explicit timestamps make the expected order unambiguous.
	for _, row := range []struct{ code, created string }{
		{"oldest", "2024-01-01 10:00:00"},
		{"middle", "2024-06-01 10:00:00"},
		{"newest", "2024-12-01 10:00:00"},
	} {
		_, err := db.Exec("INSERT INTO links (code, owner_id, original_url, created_at) VALUES (?, ?, ?, ?)",
			row.code, alice, "https://a.com/"+row.code, row.created)
		require.NoError(t, err)
	}
	_, err := db.Exec("INSERT INTO links (code, owner_id, original_url) VALUES (?, ?, ?)",
		"bobs", bob, "https://b.com")
	require.NoError(t, err)

	require.NoError(t, clicks.Record(ctx, "middle", "fp-a", ""))
	require.NoError(t, clicks.Record(ctx, "middle", "fp-b", ""))

	links, err := svc.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, links, 3, "must not include other owners' links")

	assert.Equal(t, "newest", links[0].Code)
	assert.Equal(t, "middle", links[1].Code)
	assert.Equal(t, "oldest", links[2].Code)
	assert.Equal(t, int64(2), links[1].Clicks)
	assert.Equal(t, int64(0), links[0].Clicks)

	empty, err := svc.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLinkService_Top(t *testing.T) {
	db := newTestDB(t)
	svc := NewLinkService(db, noCache(t))
	clicks := NewClickService(db, noCache(t), "salt")
	owner := seedUser(t, db, "alice")
	ctx := context.Background()

	busy, err := svc.Shorten(ctx, owner, "https://a.com", "")
	require.NoError(t, err)
	quiet, err := svc.Shorten(ctx, owner, "https://b.com", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, clicks.Record(ctx, busy.Code, "fp", ""))
	}
	require.NoError(t, clicks.Record(ctx, quiet.Code, "fp", ""))

	top, err := svc.Top(ctx, "all", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, busy.Code, top[0].Code)
	assert.Equal(t, int64(3), top[0].Clicks)
	assert.Equal(t, quiet.Code, top[1].Code)

	day, err := svc.Top(ctx, "day", 1)
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, busy.Code, day[0].Code)
}
