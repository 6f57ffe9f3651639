// Package server assembles the HTTP router: the route table plus the
// middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/http/handlers/health"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/storage"
)

// NewRouter registers every route against storage.
//
// Route table:
//
//	POST   /students        → create a new student
//	GET    /students        → list students (country, age, offset, limit)
//	GET    /students/{id}   → get one student by id
//	PATCH  /students/{id}   → partially update a student
//	DELETE /students/{id}   → delete a student
//	GET    /healthz         → datastore ping
func NewRouter(storage storage.Storage, log *slog.Logger, allowedOrigins []string) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("POST /students", student.New(storage))
	router.HandleFunc("GET /students", student.GetList(storage))
	router.HandleFunc("GET /students/{id}", student.GetByID(storage))
	router.HandleFunc("PATCH /students/{id}", student.Update(storage))
	router.HandleFunc("DELETE /students/{id}", student.Delete(storage))
	router.HandleFunc("GET /healthz", health.Check(storage))

	return middleware.Chain(router,
		middleware.Recover(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS(allowedOrigins),
	)
}
