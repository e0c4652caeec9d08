package sensor

// Limit bounds the number of samples an Emitter run produces.
//
// The zero value is unbounded. A bounded limit carries its own flag
// rather than overloading a zero count, so "no samples requested" and
// "run forever" stay distinguishable.
type Limit struct {
	n       uint64
	bounded bool
}

// Unbounded returns a limit that never stops the run on its own.
func Unbounded() Limit {
	return Limit{}
}

// LimitOf returns a limit that stops the run after n samples.
func LimitOf(n uint64) Limit {
	return Limit{n: n, bounded: true}
}

// Reached reports whether emitting sample index i would exceed the limit.
func (l Limit) Reached(i uint64) bool {
	return l.bounded && i >= l.n
}

// IsBounded reports whether the limit stops the run at all.
func (l Limit) IsBounded() bool {
	return l.bounded
}
