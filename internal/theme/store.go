package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

type stateFile struct {
	Active string  `toml:"active"`
	Themes []Theme `toml:"themes"`
}

// Store persists user themes and the active theme name in a TOML file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns the presets followed by the saved themes.
func (s *Store) List() ([]Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return append(Presets(), st.Themes...), nil
}

// Get returns the theme called name.
func (s *Store) Get(name string) (Theme, error) {
	list, err := s.List()
	if err != nil {
		return Theme{}, err
	}
	for _, t := range list {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// ActiveName returns the stored active name, default when unset.
func (s *Store) ActiveName() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	if st.Active == "" {
		return NameDefault, nil
	}
	return st.Active, nil
}

// Active returns the active theme, falling back to default when the stored
// name no longer exists.
func (s *Store) Active() (Theme, error) {
	name, err := s.ActiveName()
	if err != nil {
		return Theme{}, err
	}
	t, err := s.Get(name)
	if errors.Is(err, ErrThemeNotFound) {
		return Presets()[0], nil
	}
	return t, err
}

// SetActive marks an existing theme as active.
func (s *Store) SetActive(name string) error {
	if _, err := s.Get(name); err != nil {
		return err
	}
	return s.update(func(st *stateFile) error {
		st.Active = name
		return nil
	})
}

// Save creates or replaces a user theme and makes it active.
func (s *Store) Save(name string, vars map[string]string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return s.update(func(st *stateFile) error {
		t := Theme{Name: name, Vars: normalizeVars(vars)}
		replaced := false
		for i := range st.Themes {
			if st.Themes[i].Name == name {
				st.Themes[i] = t
				replaced = true
			}
		}
		if !replaced {
			st.Themes = append(st.Themes, t)
		}
		st.Active = name
		return nil
	})
}

// Update overwrites an existing user theme and makes it active.
func (s *Store) Update(name string, vars map[string]string) error {
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return s.update(func(st *stateFile) error {
		for i := range st.Themes {
			if st.Themes[i].Name == name {
				st.Themes[i].Vars = normalizeVars(vars)
				st.Active = name
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	})
}

// Delete removes a user theme; the active theme becomes default.
func (s *Store) Delete(name string) error {
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return s.update(func(st *stateFile) error {
		kept := st.Themes[:0]
		found := false
		for _, t := range st.Themes {
			if t.Name == name {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
		}
		st.Themes = kept
		st.Active = NameDefault
		return nil
	})
}

// ResetPresets drops saved entries that shadow a preset name and activates
// default. Other user themes stay.
func (s *Store) ResetPresets() error {
	return s.update(func(st *stateFile) error {
		st.Active = NameDefault
		return nil
	})
}

func (s *Store) update(fn func(*stateFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&st); err != nil {
		return err
	}
	return s.write(st)
}

// load reads the file; entries using a preset name are ignored.
func (s *Store) load() (stateFile, error) {
	var st stateFile
	if _, err := toml.DecodeFile(s.path, &st); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stateFile{}, nil
		}
		return stateFile{}, fmt.Errorf("read themes: %w", err)
	}
	kept := make([]Theme, 0, len(st.Themes))
	for _, t := range st.Themes {
		if strings.TrimSpace(t.Name) == "" || t.Vars == nil || IsReserved(t.Name) {
			continue
		}
		kept = append(kept, t)
	}
	st.Themes = kept
	return st, nil
}

func (s *Store) write(st stateFile) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".themes-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := toml.NewEncoder(tmp).Encode(st); err != nil {
		tmp.Close()
		return fmt.Errorf("encode themes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
