package sysdyn

import "fmt"

// Kind classifies a model variable.
type Kind int

const (
	// Stock accumulates; it is updated only by the integrator.
	Stock Kind = iota
	// Flow is a rate recomputed each step from its influences.
	Flow
	// Auxiliary is an intermediate computed variable.
	Auxiliary
	// Constant never mutates after construction.
	Constant
)

func (k Kind) String() string {
	switch k {
	case Stock:
		return "stock"
	case Flow:
		return "flow"
	case Auxiliary:
		return "auxiliary"
	case Constant:
		return "constant"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Mode selects the transform applied to an influence source value.
type Mode int

const (
	// ModeLinear contributes weight * v.
	ModeLinear Mode = iota
	// ModeLogistic contributes weight * sigmoid(steepness*(v - midpoint)).
	ModeLogistic
	// ModeSaturation contributes weight * v/(1+|v|), sign-preserving
	// diminishing returns.
	ModeSaturation
	// ModeThreshold contributes weight * v when v >= threshold, else 0.
	ModeThreshold
	// ModeExponential contributes weight * v*|v|, sign-preserving
	// super-linear response.
	ModeExponential
)

func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeLogistic:
		return "logistic"
	case ModeSaturation:
		return "saturation"
	case ModeThreshold:
		return "threshold"
	case ModeExponential:
		return "exponential"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// InfluenceSpec declares a weighted, mode-transformed, optionally
// delayed dependency on another variable. Delay is measured in whole
// steps; delay > 0 is the only legal way to close a feedback cycle.
type InfluenceSpec struct {
	Source string
	Weight float64
	Mode   Mode
	Delay  int

	// Threshold gates ModeThreshold edges. It must be set for that mode;
	// leaving it nil is a construction error.
	Threshold *float64

	// Steepness and Midpoint shape ModeLogistic edges. Zero Steepness
	// means the default of 1.
	Steepness float64
	Midpoint  float64
}

// VariableSpec declares one model variable. Inflows and Outflows apply
// to stocks only; Influences apply to flows and auxiliaries only.
type VariableSpec struct {
	Name           string
	Kind           Kind
	Initial        float64
	AcceptNegative bool
	Min, Max       *float64
	Inflows        []string
	Outflows       []string
	Influences     []InfluenceSpec
}

// AddInfluence appends an influence edge and returns the variable for
// chaining.
func (v *VariableSpec) AddInfluence(inf InfluenceSpec) *VariableSpec {
	v.Influences = append(v.Influences, inf)
	return v
}

// AddInflow registers a flow variable that adds to this stock.
func (v *VariableSpec) AddInflow(name string) *VariableSpec {
	v.Inflows = append(v.Inflows, name)
	return v
}

// AddOutflow registers a flow variable that drains this stock.
func (v *VariableSpec) AddOutflow(name string) *VariableSpec {
	v.Outflows = append(v.Outflows, name)
	return v
}

// NonNegative clamps the variable at zero after each update.
func (v *VariableSpec) NonNegative() *VariableSpec {
	v.AcceptNegative = false
	return v
}

// Bounds clamps the variable into [min, max] after each update.
func (v *VariableSpec) Bounds(min, max float64) *VariableSpec {
	v.Min, v.Max = &min, &max
	return v
}

// ModelSpec is the immutable build recipe for a model: an insertion-
// ordered set of variable declarations. Compiling a spec never mutates
// it, so one spec can safely seed many independent runs.
type ModelSpec struct {
	vars []*VariableSpec
}

func NewModelSpec() *ModelSpec {
	return &ModelSpec{}
}

func (s *ModelSpec) add(name string, kind Kind, initial float64) *VariableSpec {
	v := &VariableSpec{
		Name:           name,
		Kind:           kind,
		Initial:        initial,
		AcceptNegative: true,
	}
	s.vars = append(s.vars, v)
	return v
}

// Stock declares an accumulation variable.
func (s *ModelSpec) Stock(name string, initial float64) *VariableSpec {
	return s.add(name, Stock, initial)
}

// Flow declares a rate variable.
func (s *ModelSpec) Flow(name string, initial float64) *VariableSpec {
	return s.add(name, Flow, initial)
}

// Auxiliary declares an intermediate computed variable.
func (s *ModelSpec) Auxiliary(name string, initial float64) *VariableSpec {
	return s.add(name, Auxiliary, initial)
}

// Constant declares a fixed value.
func (s *ModelSpec) Constant(name string, value float64) *VariableSpec {
	return s.add(name, Constant, value)
}

// Variables returns the declarations in insertion order.
func (s *ModelSpec) Variables() []*VariableSpec {
	return s.vars
}

// Lookup returns the declaration for name, or nil.
func (s *ModelSpec) Lookup(name string) *VariableSpec {
	for _, v := range s.vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// SetInitial overrides a variable's initial value in place.
func (s *ModelSpec) SetInitial(name string, value float64) error {
	v := s.Lookup(name)
	if v == nil {
		return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	v.Initial = value
	return nil
}

// Clone deep-copies the spec. Clones share no structure with the
// original, which is what keeps sweep samples isolated from each other.
func (s *ModelSpec) Clone() *ModelSpec {
	c := &ModelSpec{vars: make([]*VariableSpec, len(s.vars))}
	for i, v := range s.vars {
		cv := *v
		cv.Inflows = append([]string(nil), v.Inflows...)
		cv.Outflows = append([]string(nil), v.Outflows...)
		cv.Influences = make([]InfluenceSpec, len(v.Influences))
		for j, inf := range v.Influences {
			if inf.Threshold != nil {
				t := *inf.Threshold
				inf.Threshold = &t
			}
			cv.Influences[j] = inf
		}
		if v.Min != nil {
			m := *v.Min
			cv.Min = &m
		}
		if v.Max != nil {
			m := *v.Max
			cv.Max = &m
		}
		c.vars[i] = &cv
	}
	return c
}

// Ptr returns a pointer to v, for optional spec fields such as
// [InfluenceSpec.Threshold].
func Ptr(v float64) *float64 { return &v }

// Config holds the run parameters for one simulation.
type Config struct {
	Dt        float64
	TimeSteps int
	Method    string // "euler" or "rk4"

	// StopAtEquilibrium ends Run early once no non-constant variable has
	// moved more than EquilibriumTol over the last EquilibriumWindow
	// steps. Off by default, so Run always takes exactly TimeSteps steps.
	StopAtEquilibrium bool
	EquilibriumTol    float64
	EquilibriumWindow int
}

const (
	DefaultDt        = 1.0
	DefaultTimeSteps = 50
	DefaultMethod    = "euler"

	defaultEquilibriumTol    = 1e-6
	defaultEquilibriumWindow = 10
)

func DefaultConfig() Config {
	return Config{
		Dt:        DefaultDt,
		TimeSteps: DefaultTimeSteps,
		Method:    DefaultMethod,
	}
}
