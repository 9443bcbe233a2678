package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, EnsureSchema(context.Background(), db))
}

func TestIsConstraintViolationUnique(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Client.ExecContext(ctx, `INSERT INTO colleges (name) VALUES ('A')`)
	require.NoError(t, err)

	_, err = db.Client.ExecContext(ctx, `INSERT INTO colleges (name) VALUES ('A')`)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestIsConstraintViolationForeignKey(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Client.ExecContext(context.Background(),
		`INSERT INTO students (college_id, name, email) VALUES (999, 'Bob', 'bob@x.com')`)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestIsConstraintViolationIgnoresOtherErrors(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Client.ExecContext(context.Background(), `SELECT * FROM no_such_table`)
	require.Error(t, err)
	assert.False(t, IsConstraintViolation(err))
	assert.False(t, IsConstraintViolation(nil))
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t,
		"INSERT INTO t (a, b) VALUES ($1, $2)",
		pg.Rebind("INSERT INTO t (a, b) VALUES (?, ?)"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t,
		"INSERT INTO t (a, b) VALUES (?, ?)",
		lite.Rebind("INSERT INTO t (a, b) VALUES (?, ?)"))
}
