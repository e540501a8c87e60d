package graphsp

import "math"

// SweepSource produces the parameter values of a variant sweep. The helpers
// below cover the common spacings; anything else can implement the
// interface directly or use Generator.
type SweepSource interface {
	SweepValues() []Value
}

// Linspace yields Count linearly spaced values from Start to End inclusive.
type Linspace struct {
	Start float64
	End   float64
	Count int
}

func (l Linspace) SweepValues() []Value {
	if l.Count <= 0 {
		return nil
	}

	step := 0.0
	if l.Count > 1 {
		step = (l.End - l.Start) / float64(l.Count-1)
	}

	out := make([]Value, l.Count)
	for i := range out {
		out[i] = Float(l.Start + step*float64(i))
	}
	return out
}

// Logspace yields Count logarithmically spaced values from Start to End
// inclusive. Non-positive bounds yield no values.
type Logspace struct {
	Start float64
	End   float64
	Count int
}

func (l Logspace) SweepValues() []Value {
	if l.Count <= 0 || l.Start <= 0 || l.End <= 0 {
		return nil
	}

	logStart := math.Log(l.Start)
	step := 0.0
	if l.Count > 1 {
		step = (math.Log(l.End) - logStart) / float64(l.Count-1)
	}

	out := make([]Value, l.Count)
	for i := range out {
		out[i] = Float(math.Exp(logStart + step*float64(i)))
	}
	return out
}

// Geomspace yields Count values in geometric progression: Start, Start*Ratio,
// Start*Ratio², and so on.
type Geomspace struct {
	Start float64
	Ratio float64
	Count int
}

func (g Geomspace) SweepValues() []Value {
	if g.Count <= 0 {
		return nil
	}

	out := make([]Value, g.Count)
	v := g.Start
	for i := range out {
		out[i] = Float(v)
		v *= g.Ratio
	}
	return out
}

// Generator yields Count values produced by a custom function of the index.
type Generator struct {
	Count int
	Fn    func(i int) Value
}

func (g Generator) SweepValues() []Value {
	if g.Count <= 0 || g.Fn == nil {
		return nil
	}

	out := make([]Value, g.Count)
	for i := range out {
		out[i] = g.Fn(i)
	}
	return out
}

// SweepFuncs turns a sweep source into the function list Variants expects:
// one NodeFunc per value, closed over that value.
func SweepFuncs(src SweepSource, build func(Value) NodeFunc) []NodeFunc {
	values := src.SweepValues()
	out := make([]NodeFunc, len(values))
	for i, v := range values {
		out[i] = build(v)
	}
	return out
}
