package table

import "math"

func uint32sFromFloat32(f float32) uint32 { return math.Float32bits(f) }
func uint64sFromFloat64(f float64) uint64 { return math.Float64bits(f) }
