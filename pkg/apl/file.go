package apl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilePath is where FileAPL keeps records when no path is configured.
const DefaultFilePath = ".saleor-app-auth.json"

// FileAPL persists records to a local JSON file. It is meant for development
// and single-host deployments. The file is re-read on every call and all
// FileAPL values for one path share a lock, so they stay consistent within a
// process. Separate processes writing one file are not coordinated.
type FileAPL struct {
	mu   *sync.RWMutex
	path string
}

var _ APL = (*FileAPL)(nil)

// fileLocks holds one lock per absolute file path.
var fileLocks sync.Map

func lockFor(path string) *sync.RWMutex {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	mu, _ := fileLocks.LoadOrStore(key, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

func NewFileAPL(path string) *FileAPL {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileAPL{mu: lockFor(path), path: path}
}

func (f *FileAPL) Path() string { return f.path }

type fileSnapshot struct {
	Records map[string]AuthData `json:"records"`
}

func (f *FileAPL) Get(_ context.Context, saleorAPIURL string) (*AuthData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	if d, ok := snap.Records[saleorAPIURL]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *FileAPL) Set(_ context.Context, data AuthData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return err
	}
	snap.Records[data.SaleorAPIURL] = data
	return f.save(snap)
}

func (f *FileAPL) Delete(_ context.Context, saleorAPIURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := snap.Records[saleorAPIURL]; !ok {
		return nil
	}
	delete(snap.Records, saleorAPIURL)
	return f.save(snap)
}

func (f *FileAPL) GetAll(_ context.Context) ([]AuthData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]AuthData, 0, len(snap.Records))
	for _, d := range snap.Records {
		out = append(out, d)
	}
	return out, nil
}

// IsReady checks that the target directory exists and the file, if present, parses.
func (f *FileAPL) IsReady(_ context.Context) ReadyResult {
	dir := filepath.Dir(f.path)
	st, err := os.Stat(dir)
	if err != nil {
		return notReady(fmt.Errorf("%w: file APL directory %s: %v", ErrConnectivity, dir, err))
	}
	if !st.IsDir() {
		return notReady(fmt.Errorf("%w: file APL directory %s is not a directory", ErrConnectivity, dir))
	}
	check, err := os.CreateTemp(dir, ".apl-ready-*")
	if err != nil {
		return notReady(fmt.Errorf("%w: file APL directory %s is not writable: %v", ErrConnectivity, dir, err))
	}
	_ = check.Close()
	_ = os.Remove(check.Name())
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, err := f.load(); err != nil {
		return notReady(err)
	}
	return ready()
}

func (f *FileAPL) IsConfigured() ConfiguredResult {
	if f.path == "" {
		return notConfigured(fmt.Errorf("%w: file APL path is empty", ErrConfiguration))
	}
	return configured()
}

func (f *FileAPL) load() (fileSnapshot, error) {
	snap := fileSnapshot{Records: map[string]AuthData{}}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return snap, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if snap.Records == nil {
		snap.Records = map[string]AuthData{}
	}
	return snap, nil
}

func (f *FileAPL) save(snap fileSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
