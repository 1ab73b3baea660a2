package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mroshb/quizbot/internal/models"
	"github.com/mroshb/quizbot/pkg/errors"
)

// FileStore keeps the ledger as a single JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
	doc  *models.Ledger
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc models.Ledger
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorruptLedger, "decode "+s.path)
	}

	s.doc = doc.Clone()
	return &doc, nil
}

func (s *FileStore) PutScore(_ context.Context, period string, entry models.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		s.doc = models.NewLedger(period)
	}
	s.doc.Period = period

	g := s.doc.Group(entry.RoomID)
	g.Points[entry.UserID] = entry.Points
	g.Names[entry.UserID] = entry.DisplayName

	return s.writeLocked()
}

func (s *FileStore) Reset(_ context.Context, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = models.NewLedger(period)
	return s.writeLocked()
}

// writeLocked replaces the file atomically via a temp file and rename.
func (s *FileStore) writeLocked() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.doc); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
