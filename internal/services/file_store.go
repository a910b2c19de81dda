package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"klarna_checkout_echo/internal/models"
)

// DefaultAutosaveInterval matches the original demo's 4 second flush timer.
const DefaultAutosaveInterval = 4 * time.Second

type fileSnapshot struct {
	Sessions []models.SessionRecord `json:"session"`
	Orders   []models.OrderRecord   `json:"order"`
}

// FileStore is an embedded RecordStore persisting both collections as a
// single JSON snapshot file. The file is loaded at construction and written
// back by an autosave goroutine whenever a mutation has happened since the
// last flush, plus once on Close. A crash can lose mutations made inside the
// autosave window; there is no write-ahead log and no atomic multi-record
// update. That loss window is accepted for this demo-scale mirror.
type FileStore struct {
	mu       sync.Mutex
	path     string
	sessions []models.SessionRecord
	orders   []models.OrderRecord
	dirty    bool
	done     chan struct{}
	stopped  sync.Once
}

// NewFileStore loads the snapshot at path, starting with empty collections
// when the file does not exist yet.
func NewFileStore(path string, autosaveInterval time.Duration) (*FileStore, error) {
	s := &FileStore{
		path: path,
		done: make(chan struct{}),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var snap fileSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to load store file %s: %w", path, err)
		}
		s.sessions = snap.Sessions
		s.orders = snap.Orders
	case os.IsNotExist(err):
		// first run, nothing to load
	default:
		return nil, fmt.Errorf("failed to read store file %s: %w", path, err)
	}

	if autosaveInterval <= 0 {
		autosaveInterval = DefaultAutosaveInterval
	}
	go s.autosaveLoop(autosaveInterval)

	return s, nil
}

func (s *FileStore) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.flushIfDirty(); err != nil {
				log.Printf("store autosave failed: %v", err)
			}
		case <-s.done:
			return
		}
	}
}

func (s *FileStore) flushIfDirty() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snap := fileSnapshot{
		Sessions: append([]models.SessionRecord(nil), s.sessions...),
		Orders:   append([]models.OrderRecord(nil), s.orders...),
	}
	s.dirty = false
	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) InsertSession(rec *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.sessions = append(s.sessions, *rec)
	s.dirty = true
	return nil
}

func (s *FileStore) InsertOrder(rec *models.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.orders = append(s.orders, *rec)
	s.dirty = true
	return nil
}

func (s *FileStore) ListSessions() ([]models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SessionRecord(nil), s.sessions...), nil
}

func (s *FileStore) ListOrders() ([]models.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OrderRecord(nil), s.orders...), nil
}

func (s *FileStore) GetSession(sessionID string) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].SessionID == sessionID {
			rec := s.sessions[i]
			return &rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *FileStore) GetOrder(orderID string) (*models.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			rec := s.orders[i]
			return &rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *FileStore) UpdateSession(sessionID string, update models.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].SessionID == sessionID {
			rec := s.sessions[i]
			update.Apply(&rec)
			rec.UpdatedAt = time.Now()
			s.sessions[i] = rec
			s.dirty = true
			return nil
		}
	}
	return ErrRecordNotFound
}

func (s *FileStore) UpdateOrder(orderID string, update models.OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			rec := s.orders[i]
			update.Apply(&rec)
			rec.UpdatedAt = time.Now()
			s.orders[i] = rec
			s.dirty = true
			return nil
		}
	}
	return ErrRecordNotFound
}

// Close stops the autosave loop and flushes any pending snapshot.
func (s *FileStore) Close() error {
	s.stopped.Do(func() { close(s.done) })
	return s.flushIfDirty()
}
