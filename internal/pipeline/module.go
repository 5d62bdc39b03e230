// Package pipeline wires the variance computer into the data block
// exchange: a module is configured once from options, then executed against
// blocks carrying the tabulated power spectrum.
package pipeline

import (
	"fmt"
	"time"

	"github.com/cosmogrid/sigmar/internal/config"
	"github.com/cosmogrid/sigmar/internal/cosmo"
	"github.com/cosmogrid/sigmar/internal/datablock"
	"github.com/cosmogrid/sigmar/internal/monitoring"
)

// Module is a configured variance stage. Build one with Setup and run it
// with Execute; a module holds no per-block state and may be executed
// against any number of blocks.
type Module struct {
	sourceSection string
	grid          cosmo.ScaleRedshiftGrid
	computer      *cosmo.VarianceComputer
}

// Setup validates the options and builds the module: output axes from the
// (min, max, step) ranges and a computer tuned by the quadrature options.
func Setup(opts *config.Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	grid, err := cosmo.NewScaleRedshiftGrid(
		opts.GetRMin(), opts.GetRMax(), opts.GetDR(),
		opts.GetZMin(), opts.GetZMax(), opts.GetDZ(),
	)
	if err != nil {
		return nil, fmt.Errorf("build output grid: %w", err)
	}

	source := datablock.SectionMatterPowerLin
	if opts.GetMatterPower() == config.MatterPowerNonlinear {
		source = datablock.SectionMatterPowerNL
	}

	computer := cosmo.NewVarianceComputer(opts.GetCropKLim())
	computer.PanelNodes = opts.GetPanelNodes()
	computer.Workers = opts.GetWorkers()

	return &Module{
		sourceSection: source,
		grid:          grid,
		computer:      computer,
	}, nil
}

// SourceSection returns the block section the module reads its spectrum
// from.
func (m *Module) SourceSection() string { return m.sourceSection }

// Grid returns the output axes the module computes on.
func (m *Module) Grid() cosmo.ScaleRedshiftGrid { return m.grid }

// Execute reads k_h, z, and p_k from the module's source section, computes
// sigma²(R,z), and writes R, z, and sigma2 into the sigma_r section. On any
// error the block is left untouched.
func (m *Module) Execute(block *datablock.Block) error {
	if !block.HasSection(m.sourceSection) {
		return &datablock.KeyError{Section: m.sourceSection, Reason: "no such section"}
	}
	src := block.Section(m.sourceSection)

	kh, err := src.Vector(datablock.KeyKH)
	if err != nil {
		return err
	}
	zs, err := src.Vector(datablock.KeyZ)
	if err != nil {
		return err
	}
	pk, err := src.Grid(datablock.KeyPK)
	if err != nil {
		return err
	}
	if pk.Rows != len(kh) || pk.Cols != len(zs) {
		return &cosmo.InvalidGridError{
			Reason: fmt.Sprintf("p_k is %dx%d but k_h has %d and z has %d entries",
				pk.Rows, pk.Cols, len(kh), len(zs)),
		}
	}

	ps := &cosmo.PowerSpectrumGrid{K: kh, Z: zs, P: make([][]float64, len(kh))}
	for i := range kh {
		row := make([]float64, len(zs))
		for j := range zs {
			row[j] = pk.At(i, j)
		}
		ps.P[i] = row
	}

	start := time.Now()
	table, err := m.computer.Compute(ps, m.grid)
	if err != nil {
		return err
	}
	monitoring.Logf("variance: %d R x %d z cells from %s in %v",
		len(table.R), len(table.Z), m.sourceSection, time.Since(start).Round(time.Millisecond))

	out := block.Section(datablock.SectionSigmaR)
	out.PutVector(datablock.KeyR, table.R)
	out.PutVector(datablock.KeyZ, table.Z)
	sigma2 := datablock.NewGrid2D(len(table.R), len(table.Z))
	for i := range table.R {
		for j := range table.Z {
			sigma2.Set(i, j, table.Sigma2[i][j])
		}
	}
	out.PutGrid(datablock.KeySigma2, sigma2)
	return nil
}
