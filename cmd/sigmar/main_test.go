package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cosmogrid/sigmar/internal/datablock"
)

func TestLoadGridJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	body := `{
		"k_h": [0.01, 0.1, 1.0],
		"z": [0.0, 1.0],
		"p_k": [[10, 5], [20, 10], [2, 1]]
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	block, err := loadGridJSON(path, datablock.SectionMatterPowerLin)
	if err != nil {
		t.Fatalf("loadGridJSON: %v", err)
	}

	src := block.Section(datablock.SectionMatterPowerLin)
	kh, err := src.Vector(datablock.KeyKH)
	if err != nil || len(kh) != 3 {
		t.Fatalf("k_h = %v, %v", kh, err)
	}
	pk, err := src.Grid(datablock.KeyPK)
	if err != nil {
		t.Fatalf("p_k: %v", err)
	}
	if pk.Rows != 3 || pk.Cols != 2 {
		t.Fatalf("p_k is %dx%d, want 3x2", pk.Rows, pk.Cols)
	}
	if pk.At(1, 1) != 10 {
		t.Errorf("p_k[1][1] = %v, want 10", pk.At(1, 1))
	}
}

func TestLoadGridJSON_ShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	body := `{"k_h": [0.01, 0.1], "z": [0.0], "p_k": [[1]]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadGridJSON(path, datablock.SectionMatterPowerLin); err == nil {
		t.Error("expected error for row count mismatch")
	}

	body = `{"k_h": [0.01], "z": [0.0, 1.0], "p_k": [[1]]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadGridJSON(path, datablock.SectionMatterPowerLin); err == nil {
		t.Error("expected error for column count mismatch")
	}
}

func TestTableFromBlock(t *testing.T) {
	block := datablock.NewBlock()
	out := block.Section(datablock.SectionSigmaR)
	out.PutVector(datablock.KeyR, []float64{4, 8})
	out.PutVector(datablock.KeyZ, []float64{0})
	g := datablock.NewGrid2D(2, 1)
	g.Set(0, 0, 0.9)
	g.Set(1, 0, 0.64)
	out.PutGrid(datablock.KeySigma2, g)

	table, err := tableFromBlock(block)
	if err != nil {
		t.Fatalf("tableFromBlock: %v", err)
	}
	if table.Sigma2[1][0] != 0.64 {
		t.Errorf("sigma2[1][0] = %v, want 0.64", table.Sigma2[1][0])
	}
}

func TestTableFromBlock_MissingOutput(t *testing.T) {
	if _, err := tableFromBlock(datablock.NewBlock()); err == nil {
		t.Error("expected error when sigma_r section is empty")
	}
}
