package sysdyn

import (
	"fmt"
	"math"

	"github.com/san-kum/sysdyn/internal/integrators"
)

// Simulation advances a compiled model through discrete time steps and
// records every variable's trajectory. After each completed step every
// recorded series has length CurrentStep()+1 (step 0 is the initial
// value) and elapsed time is CurrentStep()*Dt.
type Simulation struct {
	model   *Model
	cfg     Config
	stepper integrators.Stepper
	current int
	times   []float64
	series  [][]float64 // indexed by arena handle
}

// New validates cfg, compiles spec, and returns a simulation positioned
// at step 0. An empty Method defaults to "euler".
func New(spec *ModelSpec, cfg Config) (*Simulation, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTimeStep, cfg.Dt)
	}
	if cfg.TimeSteps <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStepCount, cfg.TimeSteps)
	}
	if cfg.Method == "" {
		cfg.Method = DefaultMethod
	}
	stepper, err := integrators.New(cfg.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, cfg.Method)
	}
	if cfg.StopAtEquilibrium {
		if cfg.EquilibriumTol <= 0 {
			cfg.EquilibriumTol = defaultEquilibriumTol
		}
		if cfg.EquilibriumWindow <= 0 {
			cfg.EquilibriumWindow = defaultEquilibriumWindow
		}
	}

	m, err := Compile(spec)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		model:   m,
		cfg:     cfg,
		stepper: stepper,
		times:   make([]float64, 0, cfg.TimeSteps+1),
		series:  make([][]float64, len(m.vars)),
	}
	s.times = append(s.times, 0)
	for h := range m.vars {
		s.series[h] = make([]float64, 0, cfg.TimeSteps+1)
		s.series[h] = append(s.series[h], m.vals[h])
	}
	return s, nil
}

// Step executes one simulation step: evaluate flows and auxiliaries in
// dependency order, integrate stocks from the just-computed net flows,
// push the settled values into the delay lines, then record. Calling
// Step past TimeSteps keeps accumulating history.
func (s *Simulation) Step() {
	m := s.model
	copy(m.prev, m.vals)

	m.evalInto(m.vals)

	if len(m.stocks) > 0 {
		x := make(integrators.State, len(m.stocks))
		for i, h := range m.stocks {
			x[i] = m.vals[h]
		}
		t := float64(s.current) * s.cfg.Dt
		next := s.stepper.Step(netFlowSystem{m}, x, t, s.cfg.Dt)
		for i, h := range m.stocks {
			m.vals[h] = m.vars[h].clamp(next[i])
		}
	}

	m.pushDelays()

	s.current++
	s.times = append(s.times, float64(s.current)*s.cfg.Dt)
	for h := range m.vars {
		s.series[h] = append(s.series[h], m.vals[h])
	}
}

// Run executes exactly TimeSteps steps, or fewer when the opt-in
// equilibrium stop fires.
func (s *Simulation) Run() {
	for i := 0; i < s.cfg.TimeSteps; i++ {
		s.Step()
		if s.cfg.StopAtEquilibrium && s.atEquilibrium() {
			return
		}
	}
}

// atEquilibrium reports whether no non-constant variable has moved more
// than the tolerance between consecutive samples over the trailing
// window.
func (s *Simulation) atEquilibrium() bool {
	w := s.cfg.EquilibriumWindow
	if s.current < w {
		return false
	}
	for h := range s.model.vars {
		if s.model.vars[h].kind == Constant {
			continue
		}
		hist := s.series[h]
		for i := len(hist) - w; i < len(hist); i++ {
			if math.Abs(hist[i]-hist[i-1]) > s.cfg.EquilibriumTol {
				return false
			}
		}
	}
	return true
}

// Results returns a copy of every non-constant variable's recorded
// series, keyed by name.
func (s *Simulation) Results() map[string][]float64 {
	out := make(map[string][]float64)
	for h := range s.model.vars {
		if s.model.vars[h].kind == Constant {
			continue
		}
		out[s.model.vars[h].name] = append([]float64(nil), s.series[h]...)
	}
	return out
}

// Series returns a copy of one variable's recorded series, constants
// included.
func (s *Simulation) Series(name string) ([]float64, error) {
	h, ok := s.model.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return append([]float64(nil), s.series[h]...), nil
}

// TimeSeries returns the elapsed-time sequence [0, dt, 2dt, ...]
// matching the recorded series.
func (s *Simulation) TimeSeries() []float64 {
	return append([]float64(nil), s.times...)
}

// PhaseSpace returns the paired trajectories of two variables.
func (s *Simulation) PhaseSpace(a, b string) ([]float64, []float64, error) {
	sa, err := s.Series(a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := s.Series(b)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

// Value returns a variable's current value.
func (s *Simulation) Value(name string) (float64, error) {
	h, ok := s.model.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return s.model.vals[h], nil
}

// RateOfChange returns (value - previous value) / dt for a variable.
func (s *Simulation) RateOfChange(name string) (float64, error) {
	h, ok := s.model.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return (s.model.vals[h] - s.model.prev[h]) / s.cfg.Dt, nil
}

// CurrentStep returns the number of completed steps.
func (s *Simulation) CurrentStep() int {
	return s.current
}

// Config returns the run parameters the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Names returns every variable name in declaration order.
func (s *Simulation) Names() []string {
	return s.model.Names()
}
