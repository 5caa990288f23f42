// Package mocks provides mock implementations of arch interfaces for testing.
package mocks

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// Host is a recording implementation of arch.Host for testing.
type Host struct {
	procedures map[string]*ir.PseudoProcedure
	Calls      []string // names of all pseudo procedure requests in order
	Reports    []string
}

// NewHost creates a new recording Host.
func NewHost() *Host {
	return &Host{
		procedures: make(map[string]*ir.PseudoProcedure),
	}
}

func (h *Host) PseudoProcedure(name string, returnType ir.DataType, args ...ir.Expression) ir.Expression {
	h.Calls = append(h.Calls, name)
	proc, ok := h.procedures[name]
	if !ok {
		proc = &ir.PseudoProcedure{Name: name, ReturnType: returnType}
		for _, arg := range args {
			proc.ArgTypes = append(proc.ArgTypes, arg.DataType())
		}
		h.procedures[name] = proc
	}
	return &ir.Application{Proc: proc, Args: args}
}

func (h *Host) Report(severity arch.Severity, address ir.Address, message string) {
	h.Reports = append(h.Reports, fmt.Sprintf("%s %s: %s", severity, address, message))
}

// Procedure returns the recorded pseudo procedure with the given name.
func (h *Host) Procedure(name string) (*ir.PseudoProcedure, bool) {
	proc, ok := h.procedures[name]
	return proc, ok
}
