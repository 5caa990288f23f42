// Package host implements the services boundary of the lifting core:
// pseudo procedure management and diagnostics.
package host

import (
	"sync"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Report is a diagnostic emitted during lifting.
type Report struct {
	Severity arch.Severity
	Address  ir.Address
	Message  string
}

// Host interns pseudo procedures by name and forwards diagnostics to a logger.
// It is safe for concurrent use by multiple lifting sessions.
type Host struct {
	logger *log.Logger

	mu         sync.Mutex
	procedures map[string]*ir.PseudoProcedure
	reports    []Report
}

// New returns a new host. A nil logger disables logging of reports.
func New(logger *log.Logger) *Host {
	return &Host{
		logger:     logger,
		procedures: map[string]*ir.PseudoProcedure{},
	}
}

// PseudoProcedure returns the application of the named pseudo procedure.
// The signature of the first request of a name is kept.
func (h *Host) PseudoProcedure(name string, returnType ir.DataType, args ...ir.Expression) ir.Expression {
	h.mu.Lock()
	defer h.mu.Unlock()

	proc, ok := h.procedures[name]
	if !ok {
		argTypes := make([]ir.DataType, len(args))
		for i, arg := range args {
			argTypes[i] = arg.DataType()
		}
		proc = &ir.PseudoProcedure{
			Name:       name,
			ReturnType: returnType,
			ArgTypes:   argTypes,
		}
		h.procedures[name] = proc
	}

	return &ir.Application{
		Proc: proc,
		Args: args,
	}
}

// Report records a diagnostic and logs it.
func (h *Host) Report(severity arch.Severity, address ir.Address, message string) {
	h.mu.Lock()
	h.reports = append(h.reports, Report{Severity: severity, Address: address, Message: message})
	h.mu.Unlock()

	if h.logger == nil {
		return
	}
	addr := log.String("address", address.String())
	switch severity {
	case arch.SeverityInfo:
		h.logger.Info(message, addr)
	case arch.SeverityWarning:
		h.logger.Warn(message, addr)
	default:
		h.logger.Error(message, addr)
	}
}

// Procedures returns the pseudo procedures sorted by name.
func (h *Host) Procedures() []*ir.PseudoProcedure {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := maps.Keys(h.procedures)
	slices.Sort(names)
	procs := make([]*ir.PseudoProcedure, 0, len(names))
	for _, name := range names {
		procs = append(procs, h.procedures[name])
	}
	return procs
}

// Reports returns all recorded diagnostics in the order they were reported.
func (h *Host) Reports() []Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.reports)
}

var _ arch.Host = (*Host)(nil)
