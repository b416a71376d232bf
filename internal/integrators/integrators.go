// Package integrators provides the numerical steppers used to advance
// stock variables: forward Euler and classic fourth-order Runge-Kutta.
package integrators

import "fmt"

// State is the stock vector being integrated.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// System exposes the net-flow rate dX/dt = f(X, t). Implementations
// re-evaluate whatever dependency graph sits behind the flows, so each
// RK4 stage observes rates consistent with its candidate state.
type System interface {
	Derive(x State, t float64) State
}

// Stepper advances a state vector by one time step.
type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// Names lists the available stepper names.
func Names() []string {
	return []string{"euler", "rk4"}
}
