package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cosmogrid/sigmar/internal/cosmo"
)

func sampleTable() *cosmo.VarianceTable {
	return &cosmo.VarianceTable{
		R: []float64{4, 8, 12},
		Z: []float64{0, 1},
		Sigma2: [][]float64{
			{0.9, 0.4},
			{0.64, 0.3},
			{0.4, 0.2},
		},
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigma.png")
	if err := SavePNG(sampleTable(), path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PNG output is empty")
	}
}

func TestSavePNG_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigma.png")
	if err := SavePNG(&cosmo.VarianceTable{}, path); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestSaveHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigma.html")
	if err := SaveHTML(sampleTable(), path); err != nil {
		t.Fatalf("SaveHTML: %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	html := string(body)
	for _, want := range []string{"z = 0", "z = 1", "Smoothed density variance"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
}

func TestSaveHTML_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigma.html")
	if err := SaveHTML(&cosmo.VarianceTable{}, path); err == nil {
		t.Error("expected error for empty table")
	}
}
