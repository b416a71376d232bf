package sysdyn

// delayLine is the bounded history behind one delay>0 influence edge.
// It is a fixed ring seeded with the source's initial value, so reads
// before delay steps have elapsed return the seed rather than
// undefined state. A value pushed at the end of step s is read back
// exactly delay steps later.
type delayLine struct {
	buf  []float64
	head int
}

func newDelayLine(delay int, seed float64) *delayLine {
	buf := make([]float64, delay)
	for i := range buf {
		buf[i] = seed
	}
	return &delayLine{buf: buf}
}

// read returns the oldest buffered value.
func (d *delayLine) read() float64 {
	return d.buf[d.head]
}

// push overwrites the oldest value and advances the ring.
func (d *delayLine) push(v float64) {
	d.buf[d.head] = v
	d.head = (d.head + 1) % len(d.buf)
}
