// Package pipeline orchestrates the lifting workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/detector"
	"github.com/retroenv/retrolift/internal/host"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/loader"
	"github.com/retroenv/retrolift/internal/options"
	"github.com/retroenv/retrolift/internal/symbols"
	"github.com/retroenv/retrolift/internal/writer"
)

// Result of lifting an image.
type Result struct {
	Mode       string
	Image      *image.Memory
	Ranges     [][]Lifted
	Procedures []*ir.PseudoProcedure
	Uses       map[string][]ir.Address // addresses using each pseudo procedure
	Reports    []host.Report
	Labels     *symbols.Manager // control transfer targets of all clusters
}

// Clusters returns the clusters of all ranges in order.
func (r *Result) Clusters() []*ir.Cluster {
	var clusters []*ir.Cluster
	for _, lifted := range r.Ranges {
		for _, l := range lifted {
			clusters = append(clusters, l.Cluster)
		}
	}
	return clusters
}

// Pipeline orchestrates the complete lifting workflow.
type Pipeline struct {
	logger   *log.Logger
	registry *arch.Registry
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new lifting pipeline for the modes of the registry.
func New(logger *log.Logger, registry *arch.Registry) *Pipeline {
	return &Pipeline{
		logger:   logger,
		registry: registry,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete lifting pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, lifterOpts options.Lifter, w io.Writer) (*Result, error) {
	if lifterOpts.Mode == "" {
		lifterOpts.Mode = p.detector.Detect(opts)
	}

	format := p.detector.DetectFormat(opts)
	mem, err := p.loader.Load(opts, format)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	p.printInfo(opts, lifterOpts, format, mem)

	return p.ExecuteWithImage(ctx, mem, lifterOpts, w)
}

// ExecuteWithImage runs the lifting pipeline with a pre-loaded image.
// This is useful for testing and programmatic usage where the image is already in memory.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, mem *image.Memory, lifterOpts options.Lifter,
	w io.Writer) (*Result, error) {

	mode, err := p.registry.Lookup(lifterOpts.Mode)
	if err != nil {
		return nil, fmt.Errorf("selecting processor mode: %w", err)
	}

	h := host.New(p.logger)
	ranges, err := LiftRanges(ctx, mode, mem, h, lifterOpts)
	if err != nil {
		return nil, fmt.Errorf("lifting: %w", err)
	}

	result := &Result{
		Mode:       mode.Name,
		Image:      mem,
		Ranges:     ranges,
		Procedures: h.Procedures(),
		Reports:    h.Reports(),
	}
	clusters := result.Clusters()
	result.Uses = ir.PseudoUses(clusters)
	result.Labels = symbols.New()
	for _, cluster := range clusters {
		result.Labels.Add(cluster)
	}

	p.logger.Debug("Lifting finished",
		log.String("mode", mode.Name),
		log.Int("instructions", len(clusters)),
		log.Int("labels", result.Labels.Len()),
		log.Int("diagnostics", len(result.Reports)))

	if w == nil {
		return result, nil
	}
	if err := p.write(w, result, lifterOpts); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}
	return result, nil
}

func (p *Pipeline) write(w io.Writer, result *Result, lifterOpts options.Lifter) error {
	out := writer.New(w, writer.Options{
		HexBytes:   lifterOpts.HexBytes,
		Statements: lifterOpts.Statements,
	})

	if err := out.WriteHeader(result.Mode, result.Image.Base, result.Image.End()); err != nil {
		return err
	}
	for i, lifted := range result.Ranges {
		if i > 0 {
			if err := out.WriteRangeSeparator(); err != nil {
				return err
			}
		}
		for _, l := range lifted {
			if label, ok := result.Labels.Get(l.Instruction.Location()); ok {
				if err := out.WriteLabel(label); err != nil {
					return err
				}
			}
			raw, _ := result.Image.ReadAt(l.Instruction.Location(), l.Instruction.Size())
			if err := out.WriteInstruction(l.Instruction, raw, l.Cluster); err != nil {
				return err
			}
		}
	}
	if err := out.WriteUnresolvedLabels(result.Labels.Unresolved()); err != nil {
		return err
	}
	return out.WriteProcedures(result.Procedures, result.Uses)
}

// printInfo prints information about the image being processed.
func (p *Pipeline) printInfo(opts options.Program, lifterOpts options.Lifter, format detector.Format, mem *image.Memory) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing image",
		log.String("file", opts.Input),
		log.String("format", format.String()),
		log.String("mode", lifterOpts.Mode),
		log.String("base", mem.Base.String()),
		log.Int("size", len(mem.Data)),
	)
}
