package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed drones.yaml
var defaultTable []byte

// ErrUnknownDrone is returned by Lookup when no profile matches the identifier
var ErrUnknownDrone = errors.New("unknown drone")

var defaultStore = sync.OnceValues(func() (*Store, error) {
	return Load(bytes.NewReader(defaultTable))
})

// table is the on-disk layout of a profiles file
type table struct {
	Drones []Profile `yaml:"drones"`
}

// Store is a read-only set of drone profiles keyed by identifier
type Store struct {
	profiles map[string]Profile
	ids      []string
}

// NewStore validates the given profiles and builds a store from them
func NewStore(profiles ...Profile) (*Store, error) {
	s := Store{
		profiles: make(map[string]Profile, len(profiles)),
		ids:      make([]string, 0, len(profiles)),
	}

	for _, p := range profiles {
		if len(p.SignalTypes) == 0 {
			p.SignalTypes = slices.Clone(defaultSignalTypes)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := s.profiles[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidProfile, p.ID)
		}

		s.profiles[p.ID] = p.clone()
		s.ids = append(s.ids, p.ID)
	}
	sort.Strings(s.ids)

	return &s, nil
}

// Load decodes a YAML profiles table
func Load(r io.Reader) (*Store, error) {
	var t table

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding profiles: %w", err)
	}

	return NewStore(t.Drones...)
}

// LoadFile reads a YAML profiles table from path
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profiles file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the built-in profile table
func Default() (*Store, error) {
	return defaultStore()
}

// Lookup returns a copy of the profile registered under id
func (s *Store) Lookup(id string) (Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownDrone, id)
	}
	return p.clone(), nil
}

// IDs returns the registered identifiers in sorted order
func (s *Store) IDs() []string {
	return slices.Clone(s.ids)
}
