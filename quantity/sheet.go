// Package quantity computes the quantities of phase items from their formulas
// and the intervals they are measured over.
package quantity

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/formula"
)

// Sheet is a set of phase items, as stored in a YAML file:
//
//	items:
//	  - id: kerb-01
//	    name: Kerb stones
//	    unit: m
//	    formula: length
//	    intervals:
//	      - {startPk: 0, endPk: 120, side: both}
//	      - {startPk: 300, endPk: 340, side: left, inputs: {length: "38.5"}}
type Sheet struct {
	Items []Item `yaml:"items" json:"items"`
}

// Item is a measurable unit of work with the formula that derives its
// quantity for one interval.
type Item struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name,omitempty" json:"name,omitempty"`
	Unit      string     `yaml:"unit,omitempty" json:"unit,omitempty"`
	Formula   string     `yaml:"formula" json:"formula"`
	Intervals []Interval `yaml:"intervals" json:"intervals"`
}

// Interval is a span of the alignment an item is measured over, with any
// extra inputs its formula refers to.
type Interval struct {
	StartPK float64        `yaml:"startPk" json:"startPk"`
	EndPK   float64        `yaml:"endPk" json:"endPk"`
	Side    formula.Side   `yaml:"side" json:"side"`
	Inputs  map[string]any `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// Geometry returns the interval's span.
func (iv *Interval) Geometry() formula.Geometry {
	return formula.Geometry{StartPK: iv.StartPK, EndPK: iv.EndPK, Side: iv.Side}
}

// Load decodes a sheet. Unknown fields are errors. An empty document is an
// empty sheet.
func Load(r io.Reader) (*Sheet, error) {
	var s Sheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decoding sheet: %w", err)
	}
	return &s, nil
}

// LoadFile decodes the sheet in the named file.
func LoadFile(name string) (*Sheet, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}
