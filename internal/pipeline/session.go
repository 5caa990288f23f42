package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/options"
)

// Lifted is a decoded instruction together with its IR cluster.
type Lifted struct {
	Instruction arch.Instruction
	Cluster     *ir.Cluster
}

// Session bundles the collaborators that lift one range of an image.
// A session is not safe for concurrent use.
type Session struct {
	dis      arch.Disassembler
	rewriter arch.Rewriter
	binder   *ir.Binder
	host     arch.Host
	start    ir.Address
	end      ir.Address
}

// NewSession creates all collaborators of the mode for a range of the image.
// The zero range selects the whole image.
func NewSession(mode arch.Mode, mem *image.Memory, rng options.Range, host arch.Host) (*Session, error) {
	if mem == nil {
		return nil, fmt.Errorf("%w: image", arch.ErrNilCollaborator)
	}
	start, end := rng.Start, rng.End
	if start == 0 && end == 0 {
		start = mem.Base
	}
	if end == 0 {
		end = mem.End()
	}

	a, err := mode.CreateArchitecture()
	if err != nil {
		return nil, fmt.Errorf("creating architecture: %w", err)
	}
	if err := mode.CreateRegisters(a); err != nil {
		return nil, fmt.Errorf("creating registers: %w", err)
	}

	reader, err := mem.NewReader(start, a.ByteOrder())
	if err != nil {
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	if err := reader.SetLimit(end); err != nil {
		return nil, fmt.Errorf("limiting reader: %w", err)
	}

	dis, err := mode.CreateDisassembler(a, reader)
	if err != nil {
		return nil, fmt.Errorf("creating disassembler: %w", err)
	}
	state, err := mode.CreateProcessorState(a)
	if err != nil {
		return nil, fmt.Errorf("creating processor state: %w", err)
	}
	binder := ir.NewBinder()
	rewriter, err := mode.CreateRewriter(a, dis, state, binder, host)
	if err != nil {
		return nil, fmt.Errorf("creating rewriter: %w", err)
	}

	return &Session{
		dis:      dis,
		rewriter: rewriter,
		binder:   binder,
		host:     host,
		start:    start,
		end:      end,
	}, nil
}

// Lift decodes and rewrites instructions until the end of the range.
// Cancellation is checked between instructions, a cancelled session returns no clusters.
func (s *Session) Lift(ctx context.Context, opts options.Lifter) ([]Lifted, error) {
	var lifted []Lifted

	for opts.MaxInstructions <= 0 || len(lifted) < opts.MaxInstructions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inst, err := s.dis.DecodeNext()
		if errors.Is(err, arch.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding: %w", err)
		}

		cluster, err := s.rewriter.Rewrite(inst)
		if err != nil {
			if !opts.ContinueOnError {
				return nil, fmt.Errorf("lifting %s: %w", inst.Location(), err)
			}
			s.host.Report(arch.SeverityError, inst.Location(), err.Error())
			cluster = ir.NewInvalidCluster(inst.Location(), inst.Size())
		} else if !inst.IsValid() {
			s.host.Report(arch.SeverityWarning, inst.Location(), "invalid instruction")
		}

		lifted = append(lifted, Lifted{Instruction: inst, Cluster: cluster})
	}

	return lifted, nil
}

// Identifiers returns the names of the storages the session bound.
func (s *Session) Identifiers() []string {
	return s.binder.Names()
}
