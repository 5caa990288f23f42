// Package symbols provides code label management for the targets of lifted control transfers.
package symbols

import (
	"fmt"
	"sort"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/retrolift/internal/ir"
)

const (
	funcNaming  = "_func_%06x"
	labelNaming = "_label_%06x"
)

// Kind of a code label.
type Kind int

const (
	// Jump marks the target of a goto or branch.
	Jump Kind = iota
	// Function marks the target of a call, it takes precedence over Jump.
	Function
)

// Label names an address that control is transferred to.
type Label struct {
	Address ir.Address
	Kind    Kind
	Sources []ir.Address // addresses of the instructions referencing the label
}

// Name returns the listing name of the label.
func (l *Label) Name() string {
	if l.Kind == Function {
		return fmt.Sprintf(funcNaming, uint32(l.Address))
	}
	return fmt.Sprintf(labelNaming, uint32(l.Address))
}

// Manager collects the labels referenced by lifted clusters.
type Manager struct {
	items   map[ir.Address]*Label
	defined set.Set[ir.Address]
}

// New creates a new label manager.
func New() *Manager {
	return &Manager{
		items:   make(map[ir.Address]*Label),
		defined: set.New[ir.Address](),
	}
}

// Add records the cluster address as lifted code and adds a label for every
// constant control transfer target of its statements.
func (m *Manager) Add(cluster *ir.Cluster) {
	m.defined.Add(cluster.Address)

	for _, stmt := range cluster.Statements {
		switch s := stmt.(type) {
		case *ir.Goto:
			m.reference(cluster.Address, s.Target, Jump)
		case *ir.Branch:
			m.reference(cluster.Address, s.Target, Jump)
		case *ir.Call:
			m.reference(cluster.Address, s.Target, Function)
		}
	}
}

func (m *Manager) reference(source ir.Address, target ir.Expression, kind Kind) {
	address, ok := target.(ir.Address)
	if !ok {
		return
	}

	label, ok := m.items[address]
	if !ok {
		label = &Label{Address: address, Kind: kind}
		m.items[address] = label
	}
	if kind == Function {
		label.Kind = Function
	}
	label.Sources = append(label.Sources, source)
}

// Get returns the label at the given address.
func (m *Manager) Get(address ir.Address) (*Label, bool) {
	label, ok := m.items[address]
	return label, ok
}

// Len returns the number of labels.
func (m *Manager) Len() int {
	return len(m.items)
}

// IsDefined returns whether a lifted cluster starts at the given address.
func (m *Manager) IsDefined(address ir.Address) bool {
	return m.defined.Contains(address)
}

// Sorted returns all labels sorted by address.
func (m *Manager) Sorted() []*Label {
	labels := make([]*Label, 0, len(m.items))
	for _, label := range m.items {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].Address < labels[j].Address
	})
	return labels
}

// Unresolved returns the labels sorted by address whose target is not the
// start of a lifted instruction.
func (m *Manager) Unresolved() []*Label {
	var labels []*Label
	for _, label := range m.Sorted() {
		if !m.defined.Contains(label.Address) {
			labels = append(labels, label)
		}
	}
	return labels
}
