package sysdyn

import (
	"fmt"
	"sync"
)

// SweepResult holds one full simulation per sampled initial value.
// Samples preserves sweep order; Runs maps each sampled value to that
// run's Results(), with the swept variable's series always present even
// when it is a constant.
type SweepResult struct {
	Variable string
	Samples  []float64
	Runs     map[float64]map[string][]float64
}

// Sensitivity sweeps one variable's initial value across samples
// linearly spaced points in [low, high] and runs a full simulation per
// point. A degenerate range (low == high) collapses to one sample, so
// Samples never holds duplicates. Each sample compiles its own model
// from a deep-copied spec, so no variable, delay line, or result slice
// is shared between runs. Samples are independent and execute
// concurrently.
func Sensitivity(spec *ModelSpec, cfg Config, name string, low, high float64, samples int) (*SweepResult, error) {
	if samples < 1 || low > high {
		return nil, fmt.Errorf("%w: [%g, %g] over %d samples", ErrInvalidSweepRange, low, high, samples)
	}
	if spec.Lookup(name) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	if low == high {
		samples = 1
	}

	points := make([]float64, samples)
	for i := range points {
		switch {
		case samples == 1:
			points[i] = low
		case i == samples-1:
			// Pin the endpoint so the last key is exactly high.
			points[i] = high
		default:
			points[i] = low + float64(i)*(high-low)/float64(samples-1)
		}
	}

	runs := make([]map[string][]float64, samples)
	errs := make([]error, samples)

	var wg sync.WaitGroup
	for i, val := range points {
		wg.Add(1)
		go func(idx int, v float64) {
			defer wg.Done()

			c := spec.Clone()
			if err := c.SetInitial(name, v); err != nil {
				errs[idx] = err
				return
			}
			sim, err := New(c, cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			sim.Run()

			res := sim.Results()
			if _, ok := res[name]; !ok {
				// Results excludes constants; a swept constant still
				// belongs in its own run.
				series, err := sim.Series(name)
				if err != nil {
					errs[idx] = err
					return
				}
				res[name] = series
			}
			runs[idx] = res
		}(i, val)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := &SweepResult{
		Variable: name,
		Samples:  points,
		Runs:     make(map[float64]map[string][]float64, samples),
	}
	for i, v := range points {
		out.Runs[v] = runs[i]
	}
	return out, nil
}
