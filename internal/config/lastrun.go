package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lastRunFileName = ".testr-last-run.json"

// ErrCorruptState is returned when the last-run file exists but cannot be
// decoded. Callers treat it as "no saved state".
var ErrCorruptState = errors.New("saved run configuration is corrupt")

// LastRunPath returns the location of the last-run file under root.
func LastRunPath(root string) string {
	if root == "" {
		root = "."
	}
	return filepath.Join(root, lastRunFileName)
}

// LoadLastRun reads the saved configuration. A missing file yields (nil, nil).
func LoadLastRun(root string) (*RunConfig, error) {
	path := LastRunPath(root)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read last run %s: %w", path, err)
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCorruptState, path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// SaveLastRun persists cfg so a later invocation can reuse it.
func SaveLastRun(root string, cfg RunConfig) error {
	path := LastRunPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure state dir %s: %w", filepath.Dir(path), err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	applyDefaults(&cfg)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode last run: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write last run %s: %w", path, err)
	}

	return nil
}

// ForgetLastRun removes the saved configuration and its lock file. A missing
// file is fine.
func ForgetLastRun(root string) error {
	path := LastRunPath(root)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return removeIfExists(lockPath(path))
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	err := removeIfExists(path)
	_ = lock.Unlock()
	if err != nil {
		return err
	}
	return removeIfExists(lockPath(path))
}

func lockPath(path string) string {
	return path + ".lock"
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
