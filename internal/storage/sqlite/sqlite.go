// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk, with no server
// process, which makes it handy for local runs and end-to-end tests.
//
// Records are kept as JSON documents, the same shape the MongoDB backend
// stores, and queried with SQLite's built-in JSON functions:
//
//	seq — insertion order, used for ORDER BY
//	id  — the 24-char hex identifier handed out to clients
//	doc — {"name": …, "age": …, "address": {"city": …, "country": …}}
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aanand-mishra/students-api/internal/identifier"
	"github.com/aanand-mishra/students-api/internal/query"
	"github.com/aanand-mishra/students-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// document is the JSON stored in the doc column.
type document struct {
	Name    string        `json:"name"`
	Age     int           `json:"age"`
	Address types.Address `json:"address"`
}

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path (a file path or a "file:" DSN),
// creates the students table if it does not already exist, and returns
// a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to an in-memory database gets its own empty one,
	// so the pool must never grow past the connection that owns the table.
	if inMemory(path) {
		db.SetMaxOpenConns(1)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every start.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id  TEXT    NOT NULL UNIQUE,
			doc TEXT    NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

func inMemory(path string) bool {
	return path == "" || strings.HasPrefix(path, ":memory:") ||
		strings.HasPrefix(path, "file::memory:") || strings.Contains(path, "mode=memory")
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new document. SQLite has no ObjectID of its own,
// so the identifier is generated here, in the same format MongoDB uses.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (identifier.ID, error) {
	doc, err := json.Marshal(document{
		Name:    student.Name,
		Age:     student.Age,
		Address: student.Address,
	})
	if err != nil {
		return identifier.ID{}, types.Persistence("CreateStudent", fmt.Errorf("marshal: %w", err))
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students (id, doc) VALUES (?, ?)",
	)
	if err != nil {
		return identifier.ID{}, types.Persistence("CreateStudent", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	id := identifier.New()
	if _, err := stmt.ExecContext(ctx, identifier.Encode(id), string(doc)); err != nil {
		return identifier.ID{}, types.Persistence("CreateStudent", fmt.Errorf("exec: %w", err))
	}

	return id, nil
}

// GetStudentByID fetches exactly one document matched by identifier.
func (s *SQLite) GetStudentByID(ctx context.Context, id identifier.ID) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, doc FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, types.Persistence("GetStudentByID", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, identifier.Encode(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, types.Persistence("GetStudentByID", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudents returns the documents matching filter, oldest first.
//
// The WHERE clause is assembled from fixed fragments only; user input is
// always bound through ? placeholders.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudents(ctx context.Context, filter query.Filter, page query.Page) ([]types.Student, error) {
	where, args := whereClause(filter)
	args = append(args, page.Limit, page.Offset)

	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, doc FROM students"+where+" ORDER BY seq LIMIT ? OFFSET ?",
	)
	if err != nil {
		return nil, types.Persistence("GetStudents", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, types.Persistence("GetStudents", fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	// Non-nil so an empty result encodes as [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, types.Persistence("GetStudents", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, types.Persistence("GetStudents", fmt.Errorf("rows iteration: %w", err))
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID merges the provided fields into the stored document
// with json_set. Fields missing from update are left untouched.
//
// SQLite counts every row matched by WHERE as changed, even when the new
// value equals the old one, so RowsAffected == 0 means "no such id".
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudentByID(ctx context.Context, id identifier.ID, update types.UpdateStudent) error {
	if update.IsEmpty() {
		var one int
		err := s.Db.QueryRowContext(ctx,
			"SELECT 1 FROM students WHERE id = ?", identifier.Encode(id),
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("UpdateStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
		}
		return types.Persistence("UpdateStudentByID", err)
	}

	set, args, err := setClause(update)
	if err != nil {
		return types.Persistence("UpdateStudentByID", err)
	}
	args = append(args, identifier.Encode(id))

	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE students SET doc = "+set+" WHERE id = ?",
	)
	if err != nil {
		return types.Persistence("UpdateStudentByID", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return types.Persistence("UpdateStudentByID", fmt.Errorf("exec: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.Persistence("UpdateStudentByID", fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("UpdateStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}

	return nil
}

// DeleteStudentByID removes a document by identifier.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id identifier.ID) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return types.Persistence("DeleteStudentByID", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, identifier.Encode(id))
	if err != nil {
		return types.Persistence("DeleteStudentByID", fmt.Errorf("exec: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.Persistence("DeleteStudentByID", fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("DeleteStudentByID %s: %w", identifier.Encode(id), types.ErrNotFound)
	}

	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return types.Persistence("Ping", s.Db.PingContext(ctx))
}

func (s *SQLite) Close(context.Context) error {
	return types.Persistence("Close", s.Db.Close())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var id, raw string
	if err := row.Scan(&id, &raw); err != nil {
		return types.Student{}, err
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return types.Student{}, fmt.Errorf("decode document %s: %w", id, err)
	}

	return types.Student{
		ID:      id,
		Name:    doc.Name,
		Age:     doc.Age,
		Address: doc.Address,
	}, nil
}

// whereClause translates a query.Filter into a WHERE fragment (with a
// leading space) and its bind arguments.
func whereClause(f query.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Country != nil {
		conds = append(conds, "json_extract(doc, '$.address.country') = ?")
		args = append(args, *f.Country)
	}
	if f.MinAge != nil {
		conds = append(conds, "json_extract(doc, '$.age') >= ?")
		args = append(args, *f.MinAge)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// setClause builds a json_set(...) expression for the provided fields.
// Keys come from types.UpdateStudent.Fields, never from the request.
func setClause(u types.UpdateStudent) (string, []any, error) {
	fields := u.Fields()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("json_set(doc")
	args := make([]any, 0, len(keys))

	for _, k := range keys {
		if k == types.FieldAddress {
			raw, err := json.Marshal(fields[k])
			if err != nil {
				return "", nil, fmt.Errorf("marshal %s: %w", k, err)
			}
			b.WriteString(", '$." + k + "', json(?)")
			args = append(args, string(raw))
			continue
		}
		b.WriteString(", '$." + k + "', ?")
		args = append(args, fields[k])
	}
	b.WriteString(")")

	return b.String(), args, nil
}
