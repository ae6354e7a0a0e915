package config

import (
	"math"
	"sync/atomic"
)

// atomicFloat64 stores a float64 inside an atomic.Uint64 using
// math.Float64bits/Float64frombits, the standard-library equivalent of
// the teacher's hand-rolled unsafe.Pointer bit-cast
// (pkg/framework/param/parameter.go's float64bits/float64frombits) —
// kept on the standard library here since math.Float64bits is exactly
// this conversion with no unsafe pointer arithmetic required.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}
