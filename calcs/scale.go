package calcs

// Translate linearly re-maps val from [inMin, inMax] to [outMin, outMax] using
// integer arithmetic. The result truncates toward zero and is not clamped, so
// values outside the input range map outside the output range.
func Translate(val, inMin, inMax, outMin, outMax int) int {
	return (val-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
