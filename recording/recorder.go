// Package recording stores simulation results in SQLite databases. Tables
// are derived from flat structs through reflection, and inserts are batched
// until Flush is called or the batch size is reached.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Recorders write through SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder can record result entries into named tables.
type Recorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry. All fields must be of scalar types.
	CreateTable(tableName string, sampleEntry any)

	// Insert buffers one entry for a table that was created earlier. The
	// entry must be of the same type as the table's sample entry.
	Insert(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// New creates a Recorder backed by an SQLite database at path + ".sqlite3".
// If path is empty, a unique name is generated. The Recorder flushes
// remaining entries when the process exits through atexit.
func New(path string) Recorder {
	r := NewSQLiteRecorder(path)
	r.Init()

	atexit.Register(func() { r.Flush() })

	return r
}

// SQLiteRecorder is a Recorder that writes into an SQLite database. Most
// users should create one through New; NewSQLiteRecorder plus Init is for
// callers that manage the flush-at-exit behavior themselves.
type SQLiteRecorder struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

type table struct {
	entryType reflect.Type
	pending   []any
}

// NewSQLiteRecorder creates an SQLiteRecorder without opening the database.
// Init must be called before use.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	return &SQLiteRecorder{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}
}

// Init creates the database file. It panics if the file already exists, so
// that an earlier run's results are never silently appended to.
func (r *SQLiteRecorder) Init() {
	if r.dbName == "" {
		r.dbName = "memshim_recording_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("recording file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Recording results to: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	// sql.Open is lazy; ping so the file exists on disk from here on and
	// the exists check above is meaningful for the next Init.
	err = db.Ping()
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// CreateTable creates a table whose columns are the fields of sampleEntry.
func (r *SQLiteRecorder) CreateTable(tableName string, sampleEntry any) {
	if err := checkEntryFields(sampleEntry); err != nil {
		panic(err)
	}

	fields := structs.Names(sampleEntry)
	createSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + strings.Join(fields, ", \n\t") + "\n" + `);`
	r.mustExecute(createSQL)

	r.tables[tableName] = &table{
		entryType: reflect.TypeOf(sampleEntry),
	}
}

// Insert buffers one entry. When the total number of buffered entries
// reaches the batch size, all tables are flushed.
func (r *SQLiteRecorder) Insert(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("recording table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Sprintf("entry type %T does not match table %s",
			entry, tableName))
	}

	t.pending = append(t.pending, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.Flush()
	}
}

// ListTables returns the names of all created tables.
func (r *SQLiteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes all buffered entries to the database in one transaction.
func (r *SQLiteRecorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		if len(t.pending) == 0 {
			continue
		}

		stmt := r.prepareInsert(tableName, t.pending[0])

		for _, entry := range t.pending {
			values := entryValues(entry)

			_, err := stmt.Exec(values...)
			if err != nil {
				panic(err)
			}
		}

		stmt.Close()
		t.pending = nil
	}

	r.entryCount = 0
}

func (r *SQLiteRecorder) prepareInsert(
	tableName string,
	sampleEntry any,
) *sql.Stmt {
	placeholders := structs.Names(sampleEntry)
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertSQL := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := r.Prepare(insertSQL)
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *SQLiteRecorder) mustExecute(query string) sql.Result {
	res, err := r.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func entryValues(entry any) []any {
	v := reflect.ValueOf(entry)

	values := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, v.Field(i).Interface())
	}

	return values
}

func checkEntryFields(entry any) error {
	t := reflect.TypeOf(entry)

	for i := 0; i < t.NumField(); i++ {
		if !isScalarKind(t.Field(i).Type.Kind()) {
			return fmt.Errorf("field %s is not of a scalar type",
				t.Field(i).Name)
		}
	}

	return nil
}

func isScalarKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
