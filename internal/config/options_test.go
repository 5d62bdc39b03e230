package config

import (
	"os"
	"path/filepath"
	"testing"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

func TestOptions_Defaults(t *testing.T) {
	o := &Options{}

	if got := o.GetZMin(); got != 0 {
		t.Errorf("GetZMin() = %v, want 0", got)
	}
	if got := o.GetZMax(); got != 2.0 {
		t.Errorf("GetZMax() = %v, want 2", got)
	}
	if got := o.GetDZ(); got != 0.1 {
		t.Errorf("GetDZ() = %v, want 0.1", got)
	}
	if got := o.GetRMin(); got != 1.0 {
		t.Errorf("GetRMin() = %v, want 1", got)
	}
	if got := o.GetRMax(); got != 20.0 {
		t.Errorf("GetRMax() = %v, want 20", got)
	}
	if got := o.GetDR(); got != 0.5 {
		t.Errorf("GetDR() = %v, want 0.5", got)
	}
	if got := o.GetMatterPower(); got != MatterPowerLinear {
		t.Errorf("GetMatterPower() = %q, want %q", got, MatterPowerLinear)
	}
	if o.GetCropKLim() {
		t.Error("GetCropKLim() = true, want false by default")
	}
	if got := o.GetPanelNodes(); got != 8 {
		t.Errorf("GetPanelNodes() = %v, want 8", got)
	}
	if got := o.GetWorkers(); got < 1 {
		t.Errorf("GetWorkers() = %v, want at least 1", got)
	}

	if err := o.Validate(); err != nil {
		t.Errorf("default options should validate: %v", err)
	}
}

func TestOptions_ValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"inverted z range", Options{ZMin: ptrFloat64(2), ZMax: ptrFloat64(1)}},
		{"zero dz", Options{DZ: ptrFloat64(0)}},
		{"non-positive rmin", Options{RMin: ptrFloat64(0)}},
		{"inverted R range", Options{RMin: ptrFloat64(10), RMax: ptrFloat64(5)}},
		{"negative dr", Options{DR: ptrFloat64(-0.5)}},
		{"unknown matter_power", Options{MatterPower: ptrString("halofit")}},
		{"panel_nodes too small", Options{PanelNodes: ptrInt(1)}},
		{"negative workers", Options{Workers: ptrInt(-2)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.opts.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_PartialFileInheritsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	body := `{"rmin": 8.0, "rmax": 8.0, "matter_power": "nonlinear", "crop_klim": true}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	o, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := o.GetRMin(); got != 8.0 {
		t.Errorf("GetRMin() = %v, want 8", got)
	}
	if got := o.GetMatterPower(); got != MatterPowerNonlinear {
		t.Errorf("GetMatterPower() = %q, want nonlinear", got)
	}
	if !o.GetCropKLim() {
		t.Error("GetCropKLim() = false, want true")
	}
	// Unspecified fields keep defaults.
	if got := o.GetDZ(); got != 0.1 {
		t.Errorf("GetDZ() = %v, want default 0.1", got)
	}
}

func TestLoad_Rejections(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "options.yaml")); err == nil {
		t.Error("expected error for non-json extension")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"dz": -1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected validation error for dz < 0")
	}

	garbled := filepath.Join(dir, "garbled.json")
	if err := os.WriteFile(garbled, []byte(`{nope`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbled); err == nil {
		t.Error("expected parse error")
	}
}
