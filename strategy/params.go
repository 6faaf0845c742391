package strategy

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidParam = errors.New("invalid strategy parameter")

// Param declares one tunable strategy parameter. Step 0 means continuous.
type Param struct {
	Name    string  `json:"name" yaml:"name"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
	Step    float64 `json:"step" yaml:"step"`
}

// Check reports whether v is within the bounds and on the step grid.
func (p Param) Check(v float64) error {
	if v < p.Min || v > p.Max {
		return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrInvalidParam, p.Name, v, p.Min, p.Max)
	}
	if p.Step > 0 {
		steps := (v - p.Min) / p.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return fmt.Errorf("%w: %s=%v is off the %v step grid", ErrInvalidParam, p.Name, v, p.Step)
		}
	}
	return nil
}

// Grid lists every value of p from Min to Max, for optimization sweeps.
// A continuous parameter yields only its default.
func (p Param) Grid() []float64 {
	if p.Step <= 0 {
		return []float64{p.Default}
	}
	n := int(math.Floor((p.Max-p.Min)/p.Step+1e-9)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Min+float64(i)*p.Step)
	}
	return out
}

// Parametrized is implemented by strategies that declare tunable
// parameters.
type Parametrized interface {
	Params() []Param
}

// Params returns the parameters s declares, or nil.
func Params(s Strategy) []Param {
	if p, ok := s.(Parametrized); ok {
		return p.Params()
	}
	return nil
}

// Values are resolved parameter values keyed by name.
type Values map[string]float64

func (v Values) Float(name string) float64 { return v[name] }
func (v Values) Int(name string) int       { return int(math.Round(v[name])) }

// ResolveParams fills in defaults for missing values and checks every value
// against its declaration. Unknown names are rejected.
func ResolveParams(decl []Param, given map[string]float64) (Values, error) {
	known := make(map[string]Param, len(decl))
	out := make(Values, len(decl))
	for _, p := range decl {
		known[p.Name] = p
		out[p.Name] = p.Default
	}

	names := make([]string, 0, len(given))
	for name := range given {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParam, name)
		}
		if err := p.Check(given[name]); err != nil {
			return nil, err
		}
		out[name] = given[name]
	}
	return out, nil
}
