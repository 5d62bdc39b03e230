// Package datablock implements the shared key/value exchange used to pass
// computed quantities between pipeline stages. A block holds named sections;
// each section holds named scalars, 1-D vectors, and 2-D grids.
package datablock

import (
	"fmt"
	"sort"
)

// Well-known section and key names used by the variance stage.
const (
	SectionMatterPowerLin = "matter_power_lin"
	SectionMatterPowerNL  = "matter_power_nl"
	SectionSigmaR         = "sigma_r"

	KeyKH     = "k_h"
	KeyZ      = "z"
	KeyPK     = "p_k"
	KeyR      = "R"
	KeySigma2 = "sigma2"
)

// Kind identifies the value type stored under a key.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindVector
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindGrid:
		return "grid"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KeyError reports a missing section or key, or a value accessed with the
// wrong kind.
type KeyError struct {
	Section string
	Key     string
	Reason  string
}

func (e *KeyError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("section %q: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("section %q key %q: %s", e.Section, e.Key, e.Reason)
}

// Grid2D is a row-major 2-D table with explicit dimensions.
type Grid2D struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid2D allocates a zeroed rows×cols grid.
func NewGrid2D(rows, cols int) *Grid2D {
	return &Grid2D{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the element at (i, j).
func (g *Grid2D) At(i, j int) float64 { return g.Data[i*g.Cols+j] }

// Set stores v at (i, j).
func (g *Grid2D) Set(i, j int, v float64) { g.Data[i*g.Cols+j] = v }

// clone returns a deep copy of the grid.
func (g *Grid2D) clone() *Grid2D {
	return &Grid2D{Rows: g.Rows, Cols: g.Cols, Data: append([]float64(nil), g.Data...)}
}

type value struct {
	kind   Kind
	scalar float64
	vector []float64
	grid   *Grid2D
}

func (v value) clone() value {
	out := value{kind: v.kind, scalar: v.scalar}
	if v.vector != nil {
		out.vector = append([]float64(nil), v.vector...)
	}
	if v.grid != nil {
		out.grid = v.grid.clone()
	}
	return out
}

// Section is a named group of values inside a block.
type Section struct {
	name   string
	values map[string]value
}

// Block is the top-level exchange object: a set of named sections.
type Block struct {
	sections map[string]*Section
}

// NewBlock returns an empty block.
func NewBlock() *Block {
	return &Block{sections: make(map[string]*Section)}
}

// Section returns the named section, creating it if absent.
func (b *Block) Section(name string) *Section {
	s, ok := b.sections[name]
	if !ok {
		s = &Section{name: name, values: make(map[string]value)}
		b.sections[name] = s
	}
	return s
}

// HasSection reports whether the named section exists.
func (b *Block) HasSection(name string) bool {
	_, ok := b.sections[name]
	return ok
}

// Sections returns the section names in sorted order.
func (b *Block) Sections() []string {
	names := make([]string, 0, len(b.sections))
	for name := range b.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CopySection deep-copies every value of src into dst, creating dst if
// needed. Existing dst values with colliding keys are overwritten.
func (b *Block) CopySection(src, dst string) error {
	s, ok := b.sections[src]
	if !ok {
		return &KeyError{Section: src, Reason: "no such section"}
	}
	d := b.Section(dst)
	for key, v := range s.values {
		d.values[key] = v.clone()
	}
	return nil
}

// DeleteSection removes the named section and all its values.
func (b *Block) DeleteSection(name string) error {
	if _, ok := b.sections[name]; !ok {
		return &KeyError{Section: name, Reason: "no such section"}
	}
	delete(b.sections, name)
	return nil
}

// Name returns the section's name.
func (s *Section) Name() string { return s.name }

// Has reports whether the key exists in the section.
func (s *Section) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the section's key names in sorted order.
func (s *Section) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Kind returns the stored kind for key, or false if the key is absent.
func (s *Section) Kind(key string) (Kind, bool) {
	v, ok := s.values[key]
	if !ok {
		return 0, false
	}
	return v.kind, true
}

// PutScalar stores a scalar under key, replacing any existing value.
func (s *Section) PutScalar(key string, v float64) {
	s.values[key] = value{kind: KindScalar, scalar: v}
}

// Scalar returns the scalar stored under key.
func (s *Section) Scalar(key string) (float64, error) {
	v, ok := s.values[key]
	if !ok {
		return 0, &KeyError{Section: s.name, Key: key, Reason: "no such key"}
	}
	if v.kind != KindScalar {
		return 0, &KeyError{Section: s.name, Key: key, Reason: "stored value is a " + v.kind.String() + ", not a scalar"}
	}
	return v.scalar, nil
}

// PutVector stores a copy of the vector under key.
func (s *Section) PutVector(key string, v []float64) {
	s.values[key] = value{kind: KindVector, vector: append([]float64(nil), v...)}
}

// Vector returns a copy of the vector stored under key.
func (s *Section) Vector(key string) ([]float64, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, &KeyError{Section: s.name, Key: key, Reason: "no such key"}
	}
	if v.kind != KindVector {
		return nil, &KeyError{Section: s.name, Key: key, Reason: "stored value is a " + v.kind.String() + ", not a vector"}
	}
	return append([]float64(nil), v.vector...), nil
}

// PutGrid stores a copy of the grid under key.
func (s *Section) PutGrid(key string, g *Grid2D) {
	s.values[key] = value{kind: KindGrid, grid: g.clone()}
}

// Grid returns a copy of the grid stored under key.
func (s *Section) Grid(key string) (*Grid2D, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, &KeyError{Section: s.name, Key: key, Reason: "no such key"}
	}
	if v.kind != KindGrid {
		return nil, &KeyError{Section: s.name, Key: key, Reason: "stored value is a " + v.kind.String() + ", not a grid"}
	}
	return v.grid.clone(), nil
}
