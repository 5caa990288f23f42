// Package writer implements the listing output of lifted instructions.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/symbols"
)

const hexBytesWidth = 12

// Writer writes lifted instructions and their IR statements as a listing.
type Writer struct {
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	HexBytes   bool // output the instruction bytes
	Statements bool // output the IR statements of each instruction
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// WriteHeader writes the processor mode and the image bounds as comments.
func (w Writer) WriteHeader(mode string, start, end ir.Address) error {
	if _, err := fmt.Fprintf(w.writer, "; Processor mode: %s\n", mode); err != nil {
		return fmt.Errorf("writing mode: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Image: %s - %s\n\n", start, end); err != nil {
		return fmt.Errorf("writing image bounds: %w", err)
	}
	return nil
}

// WriteInstruction writes one instruction line followed by the statements of its cluster.
func (w Writer) WriteInstruction(inst arch.Instruction, raw []byte, cluster *ir.Cluster) error {
	code := inst.String()
	if w.options.HexBytes {
		code = fmt.Sprintf("%-*s %s", hexBytesWidth, hexBytes(raw), code)
	}
	if _, err := fmt.Fprintf(w.writer, "%s  %-42s ; %s\n", inst.Location(), code, cluster.Class); err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}

	if !w.options.Statements {
		return nil
	}
	for _, stmt := range cluster.Statements {
		if _, err := fmt.Fprintf(w.writer, "    %s\n", stmt); err != nil {
			return fmt.Errorf("writing statement: %w", err)
		}
	}
	return nil
}

// WriteLabel writes the label line of a control transfer target.
func (w Writer) WriteLabel(label *symbols.Label) error {
	if _, err := fmt.Fprintf(w.writer, "%s:\n", label.Name()); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

// WriteUnresolvedLabels lists the targets that do not start a lifted instruction.
func (w Writer) WriteUnresolvedLabels(labels []*symbols.Label) error {
	if len(labels) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, "\n; Targets outside of lifted code:\n"); err != nil {
		return fmt.Errorf("writing label header: %w", err)
	}
	for _, label := range labels {
		if _, err := fmt.Fprintf(w.writer, ";   %-32s %s\n", label.Name(), label.Address); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
	}
	return nil
}

// WriteRangeSeparator writes an empty line between lifted ranges.
func (w Writer) WriteRangeSeparator() error {
	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// WriteProcedures writes the signatures of the pseudo procedures and the addresses using them.
func (w Writer) WriteProcedures(procedures []*ir.PseudoProcedure, uses map[string][]ir.Address) error {
	if len(procedures) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, "\n; Pseudo procedures:\n"); err != nil {
		return fmt.Errorf("writing procedure header: %w", err)
	}
	for _, proc := range procedures {
		addresses := make([]string, len(uses[proc.Name]))
		for i, address := range uses[proc.Name] {
			addresses[i] = address.String()
		}
		if _, err := fmt.Fprintf(w.writer, ";   %-32s %s\n", proc, strings.Join(addresses, ", ")); err != nil {
			return fmt.Errorf("writing procedure: %w", err)
		}
	}
	return nil
}

func hexBytes(data []byte) string {
	buf := &strings.Builder{}
	for i, b := range data {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%02X", b)
	}
	return buf.String()
}
