package gesture

import "gonum.org/v1/gonum/floats"

// MotionEnergy returns the total movement of a sequence: the sum of the
// absolute angular velocities over every frame.
func MotionEnergy(seq MotionSequence) float64 {
	var total float64
	for i := range seq {
		total += floats.Norm(seq[i].Component(Velocity), 1)
	}
	return total
}
