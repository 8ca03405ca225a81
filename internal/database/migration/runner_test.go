package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func checksum(sqlText string) string {
	h := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(h[:])
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V2__levels.sql", "CREATE TABLE role_levels (id UUID);\n")
	writeFile(t, dir, "V1__roles.sql", "  CREATE TABLE roles (id UUID);  ")
	writeFile(t, dir, "README.md", "not a migration")

	migs, err := loadMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "roles", migs[0].Name)
	assert.Equal(t, "CREATE TABLE roles (id UUID);", migs[0].SQL)
	assert.Equal(t, checksum("CREATE TABLE roles (id UUID);"), migs[0].Checksum)
	assert.Equal(t, int64(2), migs[1].Version)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;")
	writeFile(t, dir, "V01__b.sql", "SELECT 2;")

	_, err := loadMigrations(dir)
	assert.ErrorContains(t, err, "duplicate migration version")
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	migs, err := loadMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, migs)
}

func TestRunner_AppliesPending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__roles.sql", "CREATE TABLE roles (id UUID);")
	writeFile(t, dir, "V2__levels.sql", "CREATE TABLE role_levels (id UUID);")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).
		WithArgs(advisoryLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, checksum FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}).
			AddRow(int64(1), checksum("CREATE TABLE roles (id UUID);")))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE role_levels (id UUID);")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs(int64(2), "levels", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(advisoryLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := Runner{Dir: dir}.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__roles.sql", "CREATE TABLE roles (id UUID, name TEXT);")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, checksum FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}).AddRow(int64(1), "stale"))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = Runner{Dir: dir}.Run(context.Background(), db)
	assert.ErrorContains(t, err, "checksum mismatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_NoFilesSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	applied, err := Runner{Dir: t.TempDir()}.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_NilDB(t *testing.T) {
	_, err := Runner{Dir: t.TempDir()}.Run(context.Background(), nil)
	assert.Error(t, err)
}
