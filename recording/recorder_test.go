package recording_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/memshim/recording"
)

type sampleEntry struct {
	ID   int
	Name string
}

func setupTestRecorder(t *testing.T) *recording.SQLiteRecorder {
	t.Helper()

	r := recording.NewSQLiteRecorder(filepath.Join(t.TempDir(), "test"))
	r.Init()

	t.Cleanup(func() { r.DB.Close() })

	return r
}

func TestInit(t *testing.T) {
	r := setupTestRecorder(t)

	assert.NotNil(t, r.DB, "Database connection should be established")
}

func TestInitCreatesFileEagerly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")

	r := recording.NewSQLiteRecorder(path)
	r.Init()
	defer r.DB.Close()

	_, err := os.Stat(path + ".sqlite3")
	assert.NoError(t, err,
		"the database file should exist before any table is created")
}

func TestInitRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")

	r := recording.NewSQLiteRecorder(path)
	r.Init()
	defer r.DB.Close()

	assert.Panics(t, func() {
		recording.NewSQLiteRecorder(path).Init()
	})
}

func TestCreateTable(t *testing.T) {
	r := setupTestRecorder(t)

	r.CreateTable("test_table", sampleEntry{})

	var tableName string
	err := r.QueryRow(
		"SELECT name FROM sqlite_master " +
			"WHERE type='table' AND name='test_table';").
		Scan(&tableName)
	require.NoError(t, err, "Table should be created")
	assert.Equal(t, "test_table", tableName)
}

func TestCreateTableRejectsNonScalarFields(t *testing.T) {
	r := setupTestRecorder(t)

	entry := struct {
		ID   int
		Data []byte
	}{}

	assert.Panics(t, func() {
		r.CreateTable("bad_table", entry)
	})
}

func TestInsertAndFlush(t *testing.T) {
	r := setupTestRecorder(t)

	r.CreateTable("test_table", sampleEntry{})
	r.Insert("test_table", sampleEntry{ID: 1, Name: "first"})
	r.Insert("test_table", sampleEntry{ID: 2, Name: "second"})
	r.Flush()

	var count int
	err := r.QueryRow("SELECT COUNT(*) FROM test_table").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var name string
	err = r.QueryRow(
		"SELECT Name FROM test_table WHERE ID = 2").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "second", name)
}

func TestInsertIntoUnknownTablePanics(t *testing.T) {
	r := setupTestRecorder(t)

	assert.Panics(t, func() {
		r.Insert("no_such_table", sampleEntry{})
	})
}

func TestInsertWrongTypePanics(t *testing.T) {
	r := setupTestRecorder(t)

	r.CreateTable("test_table", sampleEntry{})

	assert.Panics(t, func() {
		r.Insert("test_table", struct{ Other float64 }{})
	})
}

func TestListTables(t *testing.T) {
	r := setupTestRecorder(t)

	r.CreateTable("table_a", sampleEntry{})
	r.CreateTable("table_b", sampleEntry{})

	tables := r.ListTables()

	assert.ElementsMatch(t, []string{"table_a", "table_b"}, tables)
}

func TestFlushWithoutEntries(t *testing.T) {
	r := setupTestRecorder(t)

	r.CreateTable("test_table", sampleEntry{})

	assert.NotPanics(t, func() { r.Flush() })
}
