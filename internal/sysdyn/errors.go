package sysdyn

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors. All of these surface at model-build time; once a
// run starts it completes without raising.
var (
	// ErrThresholdRequired indicates a THRESHOLD influence without a threshold.
	ErrThresholdRequired = errors.New("sysdyn: threshold influence requires a threshold")

	// ErrUnknownIntegrator indicates an unrecognized integration method name.
	ErrUnknownIntegrator = errors.New("sysdyn: unknown integration method")

	// ErrUnknownVariable indicates a reference to a variable name that is not in the model.
	ErrUnknownVariable = errors.New("sysdyn: unknown variable")

	// ErrDuplicateVariable indicates two variables declared under the same name.
	ErrDuplicateVariable = errors.New("sysdyn: duplicate variable")

	// ErrInvalidTimeStep indicates a non-positive dt.
	ErrInvalidTimeStep = errors.New("sysdyn: dt must be positive")

	// ErrInvalidStepCount indicates a non-positive number of time steps.
	ErrInvalidStepCount = errors.New("sysdyn: time steps must be positive")

	// ErrInvalidSweepRange indicates a sensitivity sweep with steps < 1 or low > high.
	ErrInvalidSweepRange = errors.New("sysdyn: invalid sweep range")

	// ErrInvalidWiring indicates flows attached to a non-stock, influences on
	// a stock or constant, or a negative delay.
	ErrInvalidWiring = errors.New("sysdyn: invalid variable wiring")
)

// CycleError reports a dependency cycle closed entirely by zero-delay
// edges. Cycles are legal only when at least one edge carries delay > 0.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sysdyn: zero-delay dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}
