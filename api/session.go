package api

import (
	"sync/atomic"

	"catalog-insights/models"
)

// Session holds the one in-memory catalog a dashboard works on. Readers
// always see a complete catalog; a backfill swaps in a new one.
type Session struct {
	current     atomic.Pointer[models.Catalog]
	diagnostics models.Diagnostics
}

// NewSession starts a session on catalog.
func NewSession(catalog *models.Catalog, diag models.Diagnostics) *Session {
	s := &Session{diagnostics: diag}
	if catalog == nil {
		catalog = models.EmptyCatalog()
	}
	s.current.Store(catalog)
	return s
}

// Catalog returns the current catalog.
func (s *Session) Catalog() *models.Catalog {
	return s.current.Load()
}

// Replace installs next if the session still holds prev. It reports whether
// the swap happened.
func (s *Session) Replace(prev, next *models.Catalog) bool {
	return s.current.CompareAndSwap(prev, next)
}

// Diagnostics returns how the session's catalog was loaded.
func (s *Session) Diagnostics() models.Diagnostics {
	return s.diagnostics
}
