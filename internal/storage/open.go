package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage/mongodb"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
)

var (
	_ Storage = (*mongodb.MongoDB)(nil)
	_ Storage = (*sqlite.SQLite)(nil)
)

const sqliteScheme = "sqlite://"

// Open connects to the datastore named by cfg.URI:
//
//	mongodb://… or mongodb+srv://…  → MongoDB
//	sqlite://path/to/file.db        → SQLite file
//	file:…                          → SQLite DSN, passed through as is
func Open(ctx context.Context, cfg config.Storage) (Storage, error) {
	uri := cfg.URI
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		db, err := mongodb.New(ctx, uri, cfg.Database)
		if err != nil {
			return nil, err
		}
		return db, nil
	case strings.HasPrefix(uri, sqliteScheme), strings.HasPrefix(uri, "file:"):
		db, err := sqlite.New(strings.TrimPrefix(uri, sqliteScheme))
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("storage.Open: unsupported datastore uri %q", Redact(uri))
	}
}

// Redact strips credentials so the uri can be logged.
func Redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
