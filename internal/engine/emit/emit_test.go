package emit

import (
	"math"
	"testing"

	"sl2c/internal/engine/lower"
	"sl2c/internal/engine/sl1"

	"github.com/stretchr/testify/assert"
)

func TestFormula(t *testing.T) {
	tree := &sl1.Apply{
		Head:     sl1.HeadUntil,
		Interval: &sl1.Interval{Lo: sl1.NumBound(0.25), Hi: sl1.NumBound(math.Inf(1))},
		Args: []sl1.Node{
			&sl1.Bool{Value: true},
			&sl1.Apply{Head: sl1.HeadGreaterEq, Args: []sl1.Node{
				&sl1.Apply{Head: sl1.HeadMul, Args: []sl1.Node{&sl1.Var{Index: 2}, &sl1.Num{Value: -3}}},
				&sl1.Sym{Name: "p"},
			}},
		},
	}
	assert.Equal(t, "(StlUntil (0.25 inf) true (>= (* x2 -3) p))", Formula(tree))
	assert.Equal(t, "x1", Formula(&sl1.Var{Index: 1}))
	assert.Equal(t, "false", Formula(&sl1.Bool{}))
	assert.Equal(t, "1000000", Formula(&sl1.Num{Value: 1e6}))
}

func TestParams(t *testing.T) {
	inf := math.Inf(1)
	bindings := []lower.Binding{
		{Name: "a", Interval: sl1.Interval{Lo: sl1.NumBound(0), Hi: sl1.NumBound(0.5)}},
		{Name: "b", Interval: sl1.Interval{Lo: sl1.NumBound(7), Hi: sl1.NumBound(inf)}},
		{Name: "c", Interval: sl1.Interval{Lo: sl1.NumBound(-inf), Hi: sl1.NumBound(3)}},
		{Name: "d", Interval: sl1.Interval{Lo: sl1.NumBound(-inf), Hi: sl1.NumBound(inf)}},
		{Name: "e", Interval: sl1.Interval{Lo: sl1.NumBound(1), Hi: sl1.SymBound("q")}},
		{Name: "f", Interval: sl1.Interval{Lo: sl1.SymBound("q"), Hi: sl1.SymBound("r")}},
	}
	assert.Equal(t, "a 0 0.5\nb 7\nc 3\nd\ne 1\nf\n", Params(bindings))
	assert.Equal(t, "", Params(nil))
}

func TestVariables(t *testing.T) {
	vars := []lower.Variable{{Index: 1, Signal: "speed"}, {Index: 2, Signal: "rpm"}}
	assert.Equal(t, "x1 speed\nx2 rpm\n", Variables(vars))
}
