package autoresponder

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Kind controls how a rule's response is delivered
type Kind string

const (
	KindText     Kind = "text"
	KindReaction Kind = "reaction"
)

var (
	// ErrCorrupt is returned by Load when the rule file cannot be decoded
	ErrCorrupt = errors.New("autoresponder file is corrupt")
	// ErrInvalidKind is returned for a form other than text or reaction
	ErrInvalidKind = errors.New("form must be text or reaction")
)

// ParseKind accepts "text" or "reaction" in any case
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, nil
	case KindReaction:
		return KindReaction, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidKind)
	}
}

// Store persists the full rule mapping as a single JSON document.
// Every mutation rewrites the whole file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Init creates the backing file with an empty mapping if it does not exist
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat autoresponder file: %w", err)
	}

	return s.save(Rules{})
}

// Load reads the whole mapping. A missing file yields an empty mapping.
func (s *Store) Load() (Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the whole mapping on disk
func (s *Store) Save(rules Rules) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(rules)
}

// Set adds or overwrites the rule for trigger, ignoring case. A corrupt file
// is replaced by a mapping holding only the new rule.
func (s *Store) Set(trigger, response string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load()
	if errors.Is(err, ErrCorrupt) {
		rules = Rules{}
	} else if err != nil {
		return err
	}

	rules.Set(trigger, Rule{Response: response, Type: kind})
	return s.save(rules)
}

// Remove deletes the rule for trigger, ignoring case, and reports whether
// it existed. Nothing exists in a corrupt file, so it is left untouched.
func (s *Store) Remove(trigger string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.load()
	if errors.Is(err, ErrCorrupt) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if !rules.Remove(trigger) {
		return false, nil
	}
	return true, s.save(rules)
}

func (s *Store) load() (Rules, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Rules{}, nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read autoresponder file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Rules{}, nil
	}
	rules, err := decodeRules(data)
	if err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return rules, nil
}

func (s *Store) save(rules Rules) error {
	data, err := encodeRules(rules)
	if err != nil {
		return fmt.Errorf("failed to encode autoresponders: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".autoresponders-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write autoresponders: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set autoresponder file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write autoresponders: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace autoresponder file: %w", err)
	}

	return nil
}
