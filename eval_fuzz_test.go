package formula_test

import (
	"math"
	"testing"

	"github.com/zephyrtronium/formula"
)

func FuzzEval(f *testing.F) {
	f.Add("x")
	f.Add("length*2")
	f.Add("1/(x-2)")
	f.Add("-(-x)*y/-3")
	f.Fuzz(func(t *testing.T, s string) {
		r, err := formula.EvalString(s, formula.Bindings{"x": 2, "y": math.MaxFloat64})
		if err != nil {
			if formula.KindOf(err) == formula.KindNone {
				t.Errorf("%q gave unclassified error %v", s, err)
			}
			if formula.KindOf(err) == formula.KindMalformedProgram {
				t.Errorf("%q parsed to a malformed program: %v", s, err)
			}
			return
		}
		if math.IsInf(r, 0) || math.IsNaN(r) {
			t.Errorf("%q evaluated to %g", s, r)
		}
	})
}
