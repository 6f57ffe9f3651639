// Package storage defines the Storage interface — a contract that any
// datastore backend must satisfy to work with this application.
//
// Handlers (HTTP layer) only depend on this interface. Two backends
// implement it:
//
//   - mongo:  the production document store
//   - sqlite: an embedded JSON-document store for local runs and tests
//
// Open picks one from the connection string.
package storage

import (
	"context"

	"github.com/aanand-mishra/students-api/internal/identifier"
	"github.com/aanand-mishra/students-api/internal/query"
	"github.com/aanand-mishra/students-api/internal/types"
)

// Storage is the datastore contract. Every method performs at most one
// round trip.
//
// Errors: a miss wraps types.ErrNotFound, anything else is a
// *types.PersistenceError.
type Storage interface {
	// CreateStudent inserts a new record and returns the identifier the
	// datastore assigned to it.
	CreateStudent(ctx context.Context, student types.Student) (identifier.ID, error)

	// GetStudentByID fetches a single student.
	GetStudentByID(ctx context.Context, id identifier.ID) (types.Student, error)

	// GetStudents returns the students matching filter, in insertion
	// order, restricted to page. Returns an empty slice (not nil) when
	// nothing matches.
	GetStudents(ctx context.Context, filter query.Filter, page query.Page) ([]types.Student, error)

	// UpdateStudentByID writes only the fields present in update. An
	// update with no fields only checks that the record exists.
	UpdateStudentByID(ctx context.Context, id identifier.ID, update types.UpdateStudent) error

	// DeleteStudentByID removes a record permanently.
	DeleteStudentByID(ctx context.Context, id identifier.ID) error

	// Ping checks that the datastore is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}
