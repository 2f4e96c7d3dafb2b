package tempo

import "math"

// snapPasses bounds the fixed-point iteration in Snap. A value settles on an integer, half or step multiple within
// two passes; the extra ones absorb floating point noise.
const snapPasses = 4

// Snap quantizes bpm toward musically round values.
// Integers are tried first, rounding up from RoundUpThreshold, and win when strictly closer than tolerance.
// Half-BPM values come next under the stricter HalfStepFactor*tolerance, then multiples of step within tolerance.
// Anything else is returned unchanged, as are non-finite values and non-positive or non-finite steps.
// The result is a fixed point: Snap(Snap(x)) == Snap(x).
func Snap(bpm, step, tolerance float64, tuning Tuning) float64 {
	tuning = tuning.withDefaults()

	snapped := bpm

	for range snapPasses {
		next := snapOnce(snapped, step, tolerance, tuning)
		if next == snapped {
			break
		}

		snapped = next
	}

	return snapped
}

// SnapGlobal snaps the headline BPM with the widened global tolerance.
func SnapGlobal(bpm, step, tolerance float64, tuning Tuning) float64 {
	tuning = tuning.withDefaults()

	return Snap(bpm, step, math.Max(tolerance, tuning.GlobalSnapTolerance), tuning)
}

func snapOnce(bpm, step, tolerance float64, tuning Tuning) float64 {
	if !isFinite(bpm) || !isFinite(step) || step <= 0 {
		return bpm
	}

	floor := math.Floor(bpm)

	integer := floor
	if bpm-floor >= tuning.RoundUpThreshold {
		integer = floor + 1
	}

	if math.Abs(bpm-integer) < tolerance {
		return integer
	}

	half := math.RoundToEven(bpm*2) / 2
	if math.Abs(bpm-half) <= tolerance*tuning.HalfStepFactor {
		return half
	}

	stepped := math.RoundToEven(bpm/step) * step
	if math.Abs(bpm-stepped) <= tolerance {
		return stepped
	}

	return bpm
}
