package database

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
)

var (
	bookWriter  func() BookWriter
	backendName string
	backendMu   sync.RWMutex
)

// RegisterBookBackend registers the active storage backend.
// This is called by the backend packages to avoid import cycles.
func RegisterBookBackend(name string, writer func() BookWriter) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = name
	bookWriter = writer
}

// Backend returns the name of the registered backend, or "".
func Backend() string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendName
}

// GetBookWriter returns a BookWriter from the registered backend
func GetBookWriter(ctx context.Context) (BookWriter, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if bookWriter == nil {
		return nil, errors.New("storage backend not initialized: DATABASE_URL is required")
	}
	return bookWriter(), nil
}

// Backend names as returned by Scheme.
const (
	SchemePostgres = "postgres"
	SchemeMySQL    = "mysql"
	SchemeSQLite   = "sqlite"
)

// Scheme picks the backend for a DATABASE_URL. URLs without a known scheme
// are treated as SQLite file paths.
func Scheme(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return SchemeSQLite
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return SchemePostgres
	case "mysql", "mariadb":
		return SchemeMySQL
	default:
		return SchemeSQLite
	}
}
