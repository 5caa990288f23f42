package ir

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Binder hands out one identifier per storage name for a lifting session.
type Binder struct {
	identifiers map[string]*Identifier
}

// NewBinder returns a new binder.
func NewBinder() *Binder {
	return &Binder{
		identifiers: map[string]*Identifier{},
	}
}

// EnsureIdentifier returns the identifier for the given name, creating it on first use.
// The type of the first request wins.
func (b *Binder) EnsureIdentifier(name string, typ DataType) *Identifier {
	if id, ok := b.identifiers[name]; ok {
		return id
	}
	id := &Identifier{Name: name, Type: typ}
	b.identifiers[name] = id
	return id
}

// Names returns the sorted names of all bound identifiers.
func (b *Binder) Names() []string {
	names := maps.Keys(b.identifiers)
	slices.Sort(names)
	return names
}
