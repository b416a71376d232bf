package sysdyn

import "fmt"

type influence struct {
	source    int
	weight    float64
	mode      Mode
	threshold float64
	steep     float64
	mid       float64
	line      *delayLine // nil when the edge is undelayed
}

type variable struct {
	name       string
	kind       Kind
	initial    float64
	acceptNeg  bool
	min, max   *float64
	inflows    []int
	outflows   []int
	influences []influence
}

// clamp applies the variable's post-update bounds.
func (v *variable) clamp(x float64) float64 {
	if !v.acceptNeg && x < 0 {
		x = 0
	}
	if v.min != nil && x < *v.min {
		x = *v.min
	}
	if v.max != nil && x > *v.max {
		x = *v.max
	}
	return x
}

// Model is a compiled, runnable instance of a [ModelSpec]: a variable
// arena addressed by handle, a fixed topological evaluation order for
// flows and auxiliaries, and one seeded delay line per delayed edge.
// Edges hold handles into the arena rather than owning references, so
// feedback loops (legal across a delayed edge) never form ownership
// cycles.
type Model struct {
	vars   []variable
	index  map[string]int
	order  []int // flow/aux handles in evaluation order
	stocks []int // stock handles in declaration order

	vals    []float64
	prev    []float64
	scratch []float64
}

// Compile validates a spec and builds a runnable model. All structural
// errors (unknown names, duplicate names, missing thresholds, illegal
// wiring, zero-delay cycles) surface here; a compiled model never fails
// mid-run.
func Compile(spec *ModelSpec) (*Model, error) {
	decls := spec.Variables()
	m := &Model{
		vars:  make([]variable, len(decls)),
		index: make(map[string]int, len(decls)),
	}

	for i, d := range decls {
		if _, ok := m.index[d.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariable, d.Name)
		}
		m.index[d.Name] = i
	}

	for i, d := range decls {
		v := &m.vars[i]
		v.name = d.Name
		v.kind = d.Kind
		v.initial = d.Initial
		v.acceptNeg = d.AcceptNegative
		v.min, v.max = d.Min, d.Max

		switch d.Kind {
		case Stock:
			if len(d.Influences) > 0 {
				return nil, fmt.Errorf("%w: stock %q carries influences; attach them to a flow", ErrInvalidWiring, d.Name)
			}
			m.stocks = append(m.stocks, i)
		case Constant:
			if len(d.Influences) > 0 || len(d.Inflows) > 0 || len(d.Outflows) > 0 {
				return nil, fmt.Errorf("%w: constant %q cannot depend on anything", ErrInvalidWiring, d.Name)
			}
		default:
			if len(d.Inflows) > 0 || len(d.Outflows) > 0 {
				return nil, fmt.Errorf("%w: %s %q cannot have inflows or outflows", ErrInvalidWiring, d.Kind, d.Name)
			}
		}

		var err error
		if v.inflows, err = m.resolve(d.Name, d.Inflows); err != nil {
			return nil, err
		}
		if v.outflows, err = m.resolve(d.Name, d.Outflows); err != nil {
			return nil, err
		}

		v.influences = make([]influence, len(d.Influences))
		for j, inf := range d.Influences {
			src, ok := m.index[inf.Source]
			if !ok {
				return nil, fmt.Errorf("%w: %q (influence on %q)", ErrUnknownVariable, inf.Source, d.Name)
			}
			if inf.Delay < 0 {
				return nil, fmt.Errorf("%w: negative delay on %q <- %q", ErrInvalidWiring, d.Name, inf.Source)
			}
			if inf.Mode == ModeThreshold && inf.Threshold == nil {
				return nil, fmt.Errorf("%w: %q <- %q", ErrThresholdRequired, d.Name, inf.Source)
			}
			c := influence{
				source: src,
				weight: inf.Weight,
				mode:   inf.Mode,
				steep:  inf.Steepness,
				mid:    inf.Midpoint,
			}
			if c.steep == 0 {
				c.steep = 1
			}
			if inf.Threshold != nil {
				c.threshold = *inf.Threshold
			}
			if inf.Delay > 0 {
				c.line = newDelayLine(inf.Delay, m.vars[src].initial)
			}
			v.influences[j] = c
		}
	}

	if err := m.sortEvalOrder(); err != nil {
		return nil, err
	}

	m.vals = make([]float64, len(m.vars))
	m.prev = make([]float64, len(m.vars))
	m.scratch = make([]float64, len(m.vars))
	for i := range m.vars {
		m.vals[i] = m.vars[i].initial
		m.prev[i] = m.vars[i].initial
	}
	return m, nil
}

func (m *Model) resolve(owner string, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]int, len(names))
	for i, n := range names {
		h, ok := m.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q (flow of %q)", ErrUnknownVariable, n, owner)
		}
		out[i] = h
	}
	return out, nil
}

// sortEvalOrder runs Kahn's algorithm over the flow/auxiliary subgraph
// induced by zero-delay edges. Stocks and constants are always ready:
// stocks carry last step's integrated value and constants never change.
// Anything left over sits on a zero-delay cycle.
func (m *Model) sortEvalOrder() error {
	evaluated := func(h int) bool {
		k := m.vars[h].kind
		return k == Flow || k == Auxiliary
	}

	indeg := make([]int, len(m.vars))
	for h := range m.vars {
		if !evaluated(h) {
			continue
		}
		for _, inf := range m.vars[h].influences {
			if inf.line == nil && evaluated(inf.source) {
				indeg[h]++
			}
		}
	}

	m.order = m.order[:0]
	done := make([]bool, len(m.vars))
	for {
		progressed := false
		for h := range m.vars {
			if !evaluated(h) || done[h] || indeg[h] != 0 {
				continue
			}
			done[h] = true
			m.order = append(m.order, h)
			progressed = true
			for t := range m.vars {
				if !evaluated(t) || done[t] {
					continue
				}
				for _, inf := range m.vars[t].influences {
					if inf.line == nil && inf.source == h {
						indeg[t]--
					}
				}
			}
		}
		if !progressed {
			break
		}
	}

	for h := range m.vars {
		if evaluated(h) && !done[h] {
			return &CycleError{Cycle: m.traceCycle(h, done)}
		}
	}
	return nil
}

// traceCycle walks zero-delay edges backwards from a stuck node until a
// node repeats, and returns that loop in forward order for the error
// message.
func (m *Model) traceCycle(start int, done []bool) []string {
	pos := map[int]int{}
	var path []int
	cur := start
	for {
		if at, seen := pos[cur]; seen {
			loop := path[at:]
			names := make([]string, 0, len(loop)+1)
			for i := len(loop) - 1; i >= 0; i-- {
				names = append(names, m.vars[loop[i]].name)
			}
			names = append(names, names[0])
			return names
		}
		pos[cur] = len(path)
		path = append(path, cur)
		next := cur
		for _, inf := range m.vars[cur].influences {
			k := m.vars[inf.source].kind
			if inf.line == nil && (k == Flow || k == Auxiliary) && !done[inf.source] {
				next = inf.source
				break
			}
		}
		cur = next
	}
}

// Handle returns the arena index for name.
func (m *Model) Handle(name string) (int, bool) {
	h, ok := m.index[name]
	return h, ok
}

// Value returns the current value of the variable at handle h.
func (m *Model) Value(h int) float64 {
	return m.vals[h]
}

// Names returns every variable name in declaration order.
func (m *Model) Names() []string {
	out := make([]string, len(m.vars))
	for i := range m.vars {
		out[i] = m.vars[i].name
	}
	return out
}
