package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/samber/lo"

	"wordle-results/internal/logging"
	"wordle-results/internal/types"
)

// DefaultFileName is used when Config.FileName is empty.
const DefaultFileName = "wordle_data.json"

// ErrStorage wraps every failure to persist results.
var ErrStorage = errors.New("storage failure")

// Config describes where the results file lives.
type Config struct {
	Dir         string // preferred data directory
	FallbackDir string // used when Dir cannot be created or written
	FileName    string
}

// FileStore keeps the whole date -> bucket document in a single JSON file.
// Reads take a shared lock; Save, Reset and Update are serialized.
type FileStore struct {
	mu   sync.RWMutex
	dir  string
	path string
}

// Snapshot describes the backing file for diagnostics.
type Snapshot struct {
	DataDir    string   `json:"data_dir"`
	DataFile   string   `json:"data_file"`
	FileExists bool     `json:"file_exists"`
	FileSize   int64    `json:"file_size"`
	FileMode   string   `json:"file_mode,omitempty"`
	Files      []string `json:"files"`
}

// Open resolves the data directory once, falling back to cfg.FallbackDir
// when cfg.Dir is unusable, and makes sure a well-formed file exists.
func Open(cfg Config) (*FileStore, error) {
	name := lo.CoalesceOrEmpty(cfg.FileName, DefaultFileName)
	candidates := lo.Uniq(lo.Compact([]string{cfg.Dir, cfg.FallbackDir}))
	if len(candidates) == 0 {
		candidates = []string{"."}
	}

	var lastErr error
	for _, dir := range candidates {
		if err := ensureWritable(dir); err != nil {
			logging.Warn("Data directory %s is not writable: %v", dir, err)
			lastErr = err
			continue
		}
		s := &FileStore{dir: dir, path: filepath.Join(dir, name)}
		s.mu.Lock()
		s.load()
		s.mu.Unlock()
		logging.Info("Using data file: %s", s.path)
		return s, nil
	}
	return nil, fmt.Errorf("%w: no writable data directory: %v", ErrStorage, lastErr)
}

// ensureWritable creates dir if needed and probes it with a throwaway file.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// Path returns the absolute or relative path of the results file.
func (s *FileStore) Path() string { return s.path }

// Dir returns the resolved data directory.
func (s *FileStore) Dir() string { return s.dir }

// Load returns the persisted results. It never fails: a missing, empty or
// malformed file yields an empty mapping and is rewritten as "{}".
func (s *FileStore) Load() types.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Save replaces the persisted results with results.
func (s *FileStore) Save(results types.Results) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(results)
}

// Reset replaces the persisted results with an empty mapping.
func (s *FileStore) Reset() error {
	return s.Save(types.Results{})
}

// Update runs fn against freshly loaded results and persists them, all while
// holding the write lock. If fn returns an error nothing is written.
func (s *FileStore) Update(fn func(types.Results) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.load()
	if err := fn(results); err != nil {
		return err
	}
	return s.save(results)
}

// Inspect reports on the backing file and directory.
func (s *FileStore) Inspect() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{DataDir: s.dir, DataFile: s.path, Files: []string{}}
	if info, err := os.Stat(s.path); err == nil {
		snap.FileExists = true
		snap.FileSize = info.Size()
		snap.FileMode = info.Mode().String()
	}
	if entries, err := os.ReadDir(s.dir); err == nil {
		snap.Files = lo.Map(entries, func(e fs.DirEntry, _ int) string { return e.Name() })
		slices.Sort(snap.Files)
	} else {
		logging.Warn("Failed to list data directory %s: %v", s.dir, err)
	}
	return snap
}

func (s *FileStore) load() types.Results {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrPermission) {
		// best effort: restore owner read/write and retry once
		if chErr := os.Chmod(s.path, 0o644); chErr == nil {
			data, err = os.ReadFile(s.path)
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Info("Data file %s not found, creating empty store", s.path)
			s.repair()
		} else {
			logging.Warn("Failed to read data file %s: %v", s.path, err)
		}
		return types.Results{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		logging.Warn("Data file %s is empty, resetting", s.path)
		s.repair()
		return types.Results{}
	}

	var results types.Results
	if err := json.Unmarshal(data, &results); err != nil || results == nil {
		logging.Warn("Data file %s is malformed, resetting: %v", s.path, err)
		s.repair()
		return types.Results{}
	}
	return results
}

// repair overwrites the file with an empty document. Failures are logged only.
func (s *FileStore) repair() {
	if err := s.save(types.Results{}); err != nil {
		logging.Warn("Failed to reset data file %s: %v", s.path, err)
	}
}

func (s *FileStore) save(results types.Results) error {
	if results == nil {
		results = types.Results{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode results: %v", ErrStorage, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write temp file: %v", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync temp file: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close temp file: %v", ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Warn("Failed to chmod %s: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: replace data file: %v", ErrStorage, err)
	}
	return nil
}
