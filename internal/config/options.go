// Package config holds the variance stage's options schema.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Recognised matter_power values, selecting the block section the spectrum
// is read from.
const (
	MatterPowerLinear    = "linear"
	MatterPowerNonlinear = "nonlinear"
)

// Options is the JSON options schema for the variance stage. Fields are
// pointers so that partial option files inherit defaults; the Get* accessors
// supply the fallback values.
type Options struct {
	// Output redshift axis: zmin..zmax inclusive at step dz.
	ZMin *float64 `json:"zmin,omitempty"`
	ZMax *float64 `json:"zmax,omitempty"`
	DZ   *float64 `json:"dz,omitempty"`

	// Output scale axis in Mpc/h: rmin..rmax inclusive at step dr.
	RMin *float64 `json:"rmin,omitempty"`
	RMax *float64 `json:"rmax,omitempty"`
	DR   *float64 `json:"dr,omitempty"`

	// MatterPower selects the source spectrum: "linear" or "nonlinear".
	MatterPower *string `json:"matter_power,omitempty"`

	// CropKLim restricts each integral to the k range where the window
	// contributes for that scale.
	CropKLim *bool `json:"crop_klim,omitempty"`

	// PanelNodes sets the Gauss-Legendre node count per quadrature panel.
	PanelNodes *int `json:"panel_nodes,omitempty"`

	// Workers bounds concurrent integration; 0 means GOMAXPROCS.
	Workers *int `json:"workers,omitempty"`
}

// Load reads an Options file. Only .json files up to 1MB are accepted, and
// the parsed options are validated before being returned.
func Load(path string) (*Options, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("options file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat options file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("options file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	opts := &Options{}
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse options JSON: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// Validate checks range ordering, step signs, and enumerated values.
func (o *Options) Validate() error {
	if o.GetZMax() < o.GetZMin() {
		return fmt.Errorf("zmax %g below zmin %g", o.GetZMax(), o.GetZMin())
	}
	if o.GetDZ() <= 0 {
		return fmt.Errorf("dz must be positive, got %g", o.GetDZ())
	}
	if o.GetRMin() <= 0 {
		return fmt.Errorf("rmin must be positive, got %g", o.GetRMin())
	}
	if o.GetRMax() < o.GetRMin() {
		return fmt.Errorf("rmax %g below rmin %g", o.GetRMax(), o.GetRMin())
	}
	if o.GetDR() <= 0 {
		return fmt.Errorf("dr must be positive, got %g", o.GetDR())
	}
	switch mp := o.GetMatterPower(); mp {
	case MatterPowerLinear, MatterPowerNonlinear:
	default:
		return fmt.Errorf("matter_power must be %q or %q, got %q", MatterPowerLinear, MatterPowerNonlinear, mp)
	}
	if o.PanelNodes != nil && *o.PanelNodes < 2 {
		return fmt.Errorf("panel_nodes must be at least 2, got %d", *o.PanelNodes)
	}
	if o.Workers != nil && *o.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *o.Workers)
	}
	return nil
}

// GetZMin returns zmin or the default.
func (o *Options) GetZMin() float64 {
	if o.ZMin == nil {
		return 0.0
	}
	return *o.ZMin
}

// GetZMax returns zmax or the default.
func (o *Options) GetZMax() float64 {
	if o.ZMax == nil {
		return 2.0
	}
	return *o.ZMax
}

// GetDZ returns dz or the default.
func (o *Options) GetDZ() float64 {
	if o.DZ == nil {
		return 0.1
	}
	return *o.DZ
}

// GetRMin returns rmin or the default.
func (o *Options) GetRMin() float64 {
	if o.RMin == nil {
		return 1.0
	}
	return *o.RMin
}

// GetRMax returns rmax or the default.
func (o *Options) GetRMax() float64 {
	if o.RMax == nil {
		return 20.0
	}
	return *o.RMax
}

// GetDR returns dr or the default.
func (o *Options) GetDR() float64 {
	if o.DR == nil {
		return 0.5
	}
	return *o.DR
}

// GetMatterPower returns the matter_power selector or the default.
func (o *Options) GetMatterPower() string {
	if o.MatterPower == nil {
		return MatterPowerLinear
	}
	return *o.MatterPower
}

// GetCropKLim returns crop_klim or the default.
func (o *Options) GetCropKLim() bool {
	if o.CropKLim == nil {
		return false
	}
	return *o.CropKLim
}

// GetPanelNodes returns panel_nodes or the default.
func (o *Options) GetPanelNodes() int {
	if o.PanelNodes == nil {
		return 8
	}
	return *o.PanelNodes
}

// GetWorkers returns the worker bound, resolving 0 to GOMAXPROCS.
func (o *Options) GetWorkers() int {
	if o.Workers == nil || *o.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *o.Workers
}
