package sim

// fixed is a signed 17.14 fixed-point number, the format the feedback
// scheduler uses for recent CPU and load average
type fixed int32

const fracBits = 14

const fixedOne fixed = 1 << fracBits

func toFixed(n int) fixed {
	return fixed(n) << fracBits
}

// trunc converts to an integer, rounding toward zero
func (x fixed) trunc() int {
	return int(x / fixedOne)
}

func (x fixed) mul(y fixed) fixed {
	return fixed(int64(x) * int64(y) >> fracBits)
}

func (x fixed) div(y fixed) fixed {
	return fixed(int64(x) << fracBits / int64(y))
}

func (x fixed) float() float64 {
	return float64(x) / float64(fixedOne)
}
