//go:build integration

package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dsjohal14/propstats/internal/libs/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB opens a pool whose search_path points at a throwaway schema.
func openTestDB(t *testing.T, maxConns int32) *DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var b [4]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	schema := "propstats_it_" + hex.EncodeToString(b[:])

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	ident := pgx.Identifier{schema}.Sanitize()
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+ident)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+ident+" CASCADE")
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	d, err := New(ctx, config.ConnectionTarget{URL: u.String()}, maxConns)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	return d
}

func TestMigrateIsRepeatable(t *testing.T) {
	d := openTestDB(t, DefaultMaxConns)
	ctx := context.Background()

	require.NoError(t, d.Migrate(ctx, zerolog.Nop()))
	require.NoError(t, d.Migrate(ctx, zerolog.Nop()))

	n, err := d.CountPropositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCountPropositions(t *testing.T) {
	d := openTestDB(t, DefaultMaxConns)
	ctx := context.Background()
	require.NoError(t, d.Migrate(ctx, zerolog.Nop()))

	_, err := d.Pool().Exec(ctx,
		`INSERT INTO propositions (statement) SELECT 'p' || g FROM generate_series(1, 42) g`)
	require.NoError(t, err)

	n, err := d.CountPropositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestCountWithoutTable(t *testing.T) {
	d := openTestDB(t, DefaultMaxConns)

	_, err := d.CountPropositions(context.Background())
	assert.Error(t, err)
}

func TestPoolBoundsConcurrentCounts(t *testing.T) {
	const maxConns = 3
	d := openTestDB(t, maxConns)
	ctx := context.Background()
	require.NoError(t, d.Migrate(ctx, zerolog.Nop()))

	var wg sync.WaitGroup
	errs := make(chan error, maxConns*4)
	for i := 0; i < maxConns*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.CountPropositions(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, d.Stat().TotalConns(), int32(maxConns))
}
