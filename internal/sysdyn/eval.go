package sysdyn

import (
	"math"

	"github.com/san-kum/sysdyn/internal/integrators"
)

// contribution computes one influence edge's term. Delayed edges read
// from their ring buffer, which is only pushed once per completed step,
// so every integrator stage within a step observes the same history.
func (m *Model) contribution(inf *influence, vals []float64) float64 {
	var v float64
	if inf.line != nil {
		v = inf.line.read()
	} else {
		v = vals[inf.source]
	}

	switch inf.mode {
	case ModeLinear:
		return inf.weight * v
	case ModeLogistic:
		return inf.weight * sigmoid(inf.steep*(v-inf.mid))
	case ModeSaturation:
		return inf.weight * v / (1 + math.Abs(v))
	case ModeThreshold:
		if v >= inf.threshold {
			return inf.weight * v
		}
		return 0
	case ModeExponential:
		return inf.weight * v * math.Abs(v)
	default:
		return 0
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// evalInto recomputes every flow and auxiliary, in topological order,
// against the values in vals. A variable with no influences keeps its
// last value; there is no implicit baseline.
func (m *Model) evalInto(vals []float64) {
	for _, h := range m.order {
		v := &m.vars[h]
		if len(v.influences) == 0 {
			continue
		}
		sum := 0.0
		for i := range v.influences {
			sum += m.contribution(&v.influences[i], vals)
		}
		vals[h] = v.clamp(sum)
	}
}

// pushDelays appends the step's settled values to every delay line.
func (m *Model) pushDelays() {
	for i := range m.vars {
		for j := range m.vars[i].influences {
			inf := &m.vars[i].influences[j]
			if inf.line != nil {
				inf.line.push(m.vals[inf.source])
			}
		}
	}
}

// netFlowSystem adapts a model to the integrator interface. Derive
// installs the candidate stock vector into a scratch copy of the
// current values, re-evaluates the full flow/auxiliary graph against
// it, and reads off each stock's net flow. This is what makes RK4's
// intermediate stages numerically faithful for nonlinear and delayed
// flows.
type netFlowSystem struct {
	m *Model
}

func (n netFlowSystem) Derive(x integrators.State, t float64) integrators.State {
	m := n.m
	copy(m.scratch, m.vals)
	for i, h := range m.stocks {
		m.scratch[h] = x[i]
	}
	m.evalInto(m.scratch)

	out := make(integrators.State, len(m.stocks))
	for i, h := range m.stocks {
		st := &m.vars[h]
		rate := 0.0
		for _, f := range st.inflows {
			rate += m.scratch[f]
		}
		for _, f := range st.outflows {
			rate -= m.scratch[f]
		}
		out[i] = rate
	}
	return out
}
