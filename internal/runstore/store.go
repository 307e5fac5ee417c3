// Package runstore persists analysis runs on disk so past reports can
// be listed and reloaded. Layout: <root>/runs.json index plus one
// result JSON per run.
package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/algorzen/insight-reporter/internal/report"
	"github.com/algorzen/insight-reporter/internal/utils"
	"github.com/google/uuid"
)

const indexFileName = "runs.json"

// Entry is the index record for one stored run.
type Entry struct {
	ID          string    `json:"id"`
	Dataset     string    `json:"dataset"`
	DatasetType string    `json:"dataset_type"`
	Method      string    `json:"method"`
	Degraded    bool      `json:"degraded"`
	StoredAt    time.Time `json:"stored_at"`
	File        string    `json:"file"`
}

// Store manages the runs directory.
type Store struct {
	rootDir string
}

// Open returns a Store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("runs directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure runs dir: %w", err)
	}
	return &Store{rootDir: dir}, nil
}

// RootDir returns the on-disk runs directory path.
func (s *Store) RootDir() string { return s.rootDir }

// Save persists a result and updates the index. The result's run ID is
// assigned here if empty.
func (s *Store) Save(r *report.Result) (*Entry, error) {
	if r.Meta.RunID == "" {
		r.Meta.RunID = uuid.NewString()
	}
	file := r.Meta.RunID + ".json"
	if err := r.WriteJSON(filepath.Join(s.rootDir, file)); err != nil {
		return nil, err
	}
	e := Entry{
		ID:          r.Meta.RunID,
		Dataset:     r.Meta.Dataset,
		DatasetType: r.Meta.DatasetType,
		Method:      r.Meta.GenerationMethod,
		Degraded:    r.Degraded,
		StoredAt:    time.Now(),
		File:        file,
	}
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	// Re-saving a run replaces its index entry; one file, one entry.
	kept := entries[:0]
	for _, old := range entries {
		if old.ID != e.ID {
			kept = append(kept, old)
		}
	}
	entries = append(kept, e)
	data, err := utils.PrettyJSON(entries)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(s.rootDir, indexFileName), data); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	return &e, nil
}

// List returns stored runs, newest first.
func (s *Store) List() ([]Entry, error) {
	b, err := os.ReadFile(filepath.Join(s.rootDir, indexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StoredAt.After(entries[j].StoredAt)
	})
	return entries, nil
}

// Load reads a stored result by run ID.
func (s *Store) Load(id string) (*report.Result, error) {
	b, err := os.ReadFile(filepath.Join(s.rootDir, id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	return report.ParseJSON(b)
}
