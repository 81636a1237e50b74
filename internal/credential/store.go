package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of the credential store.
type File struct {
	User User `yaml:"user"`
}

type User struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"` // plaintext, only when the user agreed
}

// Store reads and replaces the credential file. Writes go through a temp
// file and a rename so a crash never leaves a half-written file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored file and whether it existed.
func (s *Store) Load() (File, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, false, nil
		}
		return File{}, false, fmt.Errorf("read credentials: %w", err)
	}
	var f File
	if len(b) == 0 {
		return f, true, nil
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, false, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	return f, true, nil
}

func (s *Store) Save(f File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
