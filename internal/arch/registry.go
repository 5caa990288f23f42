package arch

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry maps processor mode names to modes.
type Registry struct {
	modes map[string]Mode
}

// NewRegistry returns a registry containing the given modes.
func NewRegistry(modes ...Mode) (*Registry, error) {
	r := &Registry{
		modes: map[string]Mode{},
	}
	for _, m := range modes {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a mode, mode names are case insensitive.
func (r *Registry) Register(m Mode) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validating mode: %w", err)
	}
	key := strings.ToLower(m.Name)
	if _, ok := r.modes[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMode, m.Name)
	}
	r.modes[key] = m
	return nil
}

// Lookup returns the mode with the given name.
func (r *Registry) Lookup(name string) (Mode, error) {
	m, ok := r.modes[strings.ToLower(name)]
	if !ok {
		return Mode{}, fmt.Errorf("%w '%s', supported modes: %s", ErrUnknownMode, name, strings.Join(r.Names(), ", "))
	}
	return m, nil
}

// Names returns the sorted names of all registered modes.
func (r *Registry) Names() []string {
	names := maps.Keys(r.modes)
	slices.Sort(names)
	return names
}

// Family returns the modes of an architecture family sorted by name.
func (r *Registry) Family(architectureID string) []Mode {
	var modes []Mode
	for _, name := range r.Names() {
		m := r.modes[name]
		if m.ArchitectureID == architectureID {
			modes = append(modes, m)
		}
	}
	return modes
}
