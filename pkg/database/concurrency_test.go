package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campusshelf/campusshelf/pkg/config"
	"github.com/campusshelf/campusshelf/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// newFileDB opens a migrated database backed by a temp file with retries
// turned off, so any lock contention would surface as an error.
func newFileDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "campusshelf.db")
	cfg.DatabaseMaxRetries = 0
	cfg.DatabaseBusyTimeout = time.Millisecond

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return db
}

func TestConcurrentSignups(t *testing.T) {
	t.Parallel()

	db := newFileDB(t)

	const workers = 10
	const perWorker = 20

	var wg sync.WaitGroup
	var failures atomic.Int32
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := fmt.Sprintf("student%d_%d", w, i)
				_, err := db.Exec(
					"INSERT INTO users (username, email, password_hash, is_active, created_at, updated_at) VALUES (?, ?, 'x', 1, ?, ?)",
					name, name+"@example.edu", time.Now(), time.Now(),
				)
				if err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, workers*perWorker, count)
}

func TestConcurrentCatalogReadsAndWrites(t *testing.T) {
	t.Parallel()

	db := newFileDB(t)

	const workers = 8
	const ops = 50

	var wg sync.WaitGroup
	var failures atomic.Int32
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				var err error
				if w%2 == 0 {
					_, err = db.Exec(
						"INSERT INTO books (title, author, course, created_at, updated_at) VALUES (?, 'Author', 'CS 101', ?, ?)",
						fmt.Sprintf("Book %d-%d", w, i), time.Now(), time.Now(),
					)
				} else {
					var n int
					err = db.QueryRow("SELECT COUNT(*) FROM books WHERE course = 'CS 101'").Scan(&n)
				}
				if err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, workers/2*ops, count)
}
