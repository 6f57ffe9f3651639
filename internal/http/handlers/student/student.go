// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies (the storage) once, at
// route registration, and returns the http.HandlerFunc that serves every
// request:
//
//	router.HandleFunc("POST /students", student.New(storage))
//
// Every handler follows the same shape: decode the id (if any), validate
// the input, make exactly one storage call, map the outcome.
package student

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/identifier"
	"github.com/aanand-mishra/students-api/internal/query"
	"github.com/aanand-mishra/students-api/internal/schema"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

const (
	// DeletedMessage is the confirmation body of a successful delete.
	DeletedMessage = "Student deleted successfully"

	// MaxBodyBytes caps create and update bodies.
	MaxBodyBytes = 1 << 20
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body (JSON):
//
//	{ "name": "John", "age": 20, "address": { "city": "NYC", "country": "USA" } }
//
// Success response (201 Created), the submitted fields plus the new id:
//
//	{ "id": "65f1c0d2e4b0a1a2b3c4d5e6", "name": "John", "age": 20, "address": {…} }
//
// Error responses:
//
//	422 Unprocessable — empty, oversized or malformed body, or failed validation
//	500 Internal      — datastore error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		input, err := schema.DecodeNewStudent(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			writeError(w, err, "Failed to create student")
			return
		}

		student := input.Student()
		id, err := storage.CreateStudent(r.Context(), student)
		if err != nil {
			writeError(w, err, "Failed to create student")
			return
		}

		student.ID = identifier.Encode(id)
		slog.Info("student created", slog.String("id", student.ID))

		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students?country=&age=&offset=&limit=
//
//	country — exact match on address.country
//	age     — minimum age (inclusive)
//	offset  — records to skip, >= 0, default 0
//	limit   — page size, 1..1000, default 100
//
// Returns a JSON array in insertion order; [] (not null) when nothing
// matches. Bad pagination is rejected with 422 before the datastore is
// queried.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing students", slog.String("query", r.URL.RawQuery))

		filter, page, err := query.Parse(r.URL.Query())
		if err != nil {
			writeError(w, err, "Failed to list students")
			return
		}

		students, err := storage.GetStudents(r.Context(), filter, page)
		if err != nil {
			writeError(w, err, "Failed to list students")
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// A malformed id can never match a record, so it gets the same 404 as a
// well-formed id that does not exist.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", raw))

		id, err := identifier.Decode(raw)
		if err != nil {
			writeError(w, err, "Failed to fetch student")
			return
		}

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeError(w, err, "Failed to fetch student")
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /students/{id}
// Applies a partial update: only the fields present in the body are written.
//
// Request body (JSON), any subset of:
//
//	{ "name": "John", "age": 21, "address": { "city": "NYC", "country": "USA" } }
//
// address must be complete when present. Success is 204 with no body.
//
// Error responses:
//
//	404 Not Found     — malformed or unknown id
//	422 Unprocessable — body failed validation
//	500 Internal      — datastore error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", raw))

		id, err := identifier.Decode(raw)
		if err != nil {
			writeError(w, err, "Failed to update student")
			return
		}

		update, err := schema.DecodeUpdate(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			writeError(w, err, "Failed to update student")
			return
		}

		if err := storage.UpdateStudentByID(r.Context(), id, update); err != nil {
			writeError(w, err, "Failed to update student")
			return
		}

		slog.Info("student updated", slog.String("id", raw))
		response.WriteNoContent(w)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully" }
//
// Deleting the same id again returns 404.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", raw))

		id, err := identifier.Decode(raw)
		if err != nil {
			writeError(w, err, "Failed to delete student")
			return
		}

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			writeError(w, err, "Failed to delete student")
			return
		}

		slog.Info("student deleted", slog.String("id", raw))
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": DeletedMessage})
	}
}
