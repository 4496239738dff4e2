package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/client/storage"
	"github.com/dmitrijs2005/farmkeeper/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user_ip", []byte("192.168.1.100")))

	v, err := r.Get(ctx, "user_ip")
	require.NoError(t, err)
	assert.Equal(t, []byte("192.168.1.100"), v)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_OverwritesValueAndTimestamp(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	r.now = fixedClock(first)
	require.NoError(t, r.Set(ctx, "accessToken", []byte("old")))
	r.now = fixedClock(second)
	require.NoError(t, r.Set(ctx, "accessToken", []byte("newer")))

	v, err := r.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("newer"), v)

	entries, err := r.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "accessToken", entries[0].Key)
	assert.Equal(t, 5, entries[0].Size)
	assert.True(t, entries[0].UpdatedAt.Equal(second))
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Empty(t, v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{1}))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "never-existed"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEntriesAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user_ip", []byte("10.0.0.5")))
	require.NoError(t, r.Set(ctx, "accessToken", []byte{0xBB, 0xCC}))

	entries, err := r.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "accessToken", entries[0].Key)
	assert.Equal(t, 2, entries[0].Size)
	assert.Equal(t, "user_ip", entries[1].Key)
	assert.False(t, entries[1].UpdatedAt.IsZero())

	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx))

	entries, err = r.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntries_UnstampedRowHasZeroTime(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES ('legacy', x'01')`)
	require.NoError(t, err)

	entries, err := NewSQLiteRepository(db).Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].UpdatedAt.IsZero())
}

func TestConcurrentWriters_LastWriteWins(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Set(ctx, "accessToken", []byte(fmt.Sprintf("tok-%d", i)))
		}(i)
	}
	wg.Wait()

	v, err := r.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Regexp(t, `^tok-[0-7]$`, string(v))
}

func TestWorksInsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, "reset_email", []byte("a@b.co")); err != nil {
			return err
		}
		return repo.Set(ctx, "reset_otp", []byte("1234"))
	})
	require.NoError(t, err)

	entries, err := NewSQLiteRepository(db).Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestErrorsNameTheKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `read "k"`)

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, `write "k"`)

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, `delete "k"`)

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "clear local data")

	_, err = r.Entries(ctx)
	require.ErrorContains(t, err, "list keys")
}
