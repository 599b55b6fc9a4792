package annotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// document is the on-disk layout: notes grouped by user id.
type document struct {
	Notes map[string][]Note `yaml:"notes"`
}

// Store keeps per-user notes in a YAML file. The file is read once by Open
// and rewritten after every change.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	notes map[int64][]Note
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
		notes:  make(map[int64][]Note),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse notes: %w", err)
	}
	for key, notes := range doc.Notes {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("skipping notes with invalid user key", "key", key)
			continue
		}
		s.notes[userID] = notes
	}
	return nil
}

// save must be called with the write lock held.
func (s *Store) save() error {
	doc := document{Notes: make(map[string][]Note, len(s.notes))}
	for userID, notes := range s.notes {
		if len(notes) > 0 {
			doc.Notes[strconv.FormatInt(userID, 10)] = notes
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write notes: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace notes: %w", err)
	}
	return nil
}

// List returns the user's notes, highest priority first and newest first
// within a priority. An empty priority lists everything.
func (s *Store) List(_ context.Context, userID int64, priority Priority) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, 0, len(s.notes[userID]))
	for _, n := range s.notes[userID] {
		if priority == "" || n.Priority == priority {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if wi, wj := out[i].Priority.weight(), out[j].Priority.weight(); wi != wj {
			return wi < wj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Create(_ context.Context, userID int64, dto CreateNoteDTO) (*Note, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	n := NewNote(dto, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.notes[userID]
	s.notes[userID] = append([]Note{n}, previous...)
	if err := s.save(); err != nil {
		s.notes[userID] = previous
		s.logger.Error("failed to save notes", "user_id", userID, "error", err)
		return nil, apperrors.NewInternalError("failed to save note", err)
	}
	return &n, nil
}

func (s *Store) Delete(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.notes[userID]
	kept := make([]Note, 0, len(previous))
	for _, n := range previous {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(previous) {
		return apperrors.ErrNoteNotFound
	}

	s.notes[userID] = kept
	if err := s.save(); err != nil {
		s.notes[userID] = previous
		s.logger.Error("failed to save notes", "user_id", userID, "error", err)
		return apperrors.NewInternalError("failed to delete note", err)
	}
	return nil
}
