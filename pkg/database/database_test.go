package database

import (
	"errors"
	"testing"

	"github.com/campusshelf/campusshelf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"unique constraint", errors.New("constraint failed: UNIQUE constraint failed: books.isbn (2067)"), true},
		{"mattn unique", errors.New("UNIQUE constraint failed: books.isbn"), true},
		{"not null constraint", errors.New("NOT NULL constraint failed: books.title"), false},
		{"busy", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolation(tt.err))
		})
	}
}

func TestNew_InMemory(t *testing.T) {
	cfg := config.NewForTest()
	cfg.DatabaseConnectRetryCount = 1

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	// every query must see the same in-memory database
	_, err = db.Exec(`CREATE TABLE unique_test (id INTEGER PRIMARY KEY, value TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO unique_test (value) VALUES ('a')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO unique_test (value) VALUES ('a')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var fk int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk)
}
