// Package session holds the transient per-viewer selection state of a
// dashboard page.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Session tracks the table currently on screen and at most one selected
// record of it. Nothing here is persisted.
type Session struct {
	ID string

	mu       sync.Mutex
	shown    *table.Table
	selected table.Record
	index    int
}

// New starts a session with a fresh random ID.
func New() *Session {
	return &Session{ID: uuid.New().String(), index: -1}
}

// Show sets the table that selection indexes refer to. Any previous
// selection is cleared, since its index belonged to the old table.
func (s *Session) Show(t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = t
	s.selected = table.Record{}
	s.index = -1
}

// Shown returns the displayed table, or nil.
func (s *Session) Shown() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Select records row i of the displayed table as the one selection,
// replacing any earlier one. On error the previous selection is kept.
func (s *Session) Select(i int) (table.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown == nil {
		return table.Record{}, fmt.Errorf("select %d: no table is displayed", i)
	}
	rec, err := s.shown.Row(i)
	if err != nil {
		return table.Record{}, fmt.Errorf("select: %w", err)
	}
	s.selected = rec
	s.index = i
	return rec, nil
}

// CurrentSelection returns the selected record, if any.
func (s *Session) CurrentSelection() (table.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, !s.selected.IsZero()
}

// SelectedIndex returns the selected row index, or -1.
func (s *Session) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Clear drops the selection.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = table.Record{}
	s.index = -1
}
