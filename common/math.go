package common

// Epsilon is the tolerance used by the geometric predicates of the mesh and
// the path optimizer.
const Epsilon float32 = 1e-5

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
