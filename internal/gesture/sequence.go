package gesture

import "github.com/ayusman/abhinaya/internal/landmark"

// MotionSequence is the chronological list of feature vectors that survived
// normalization. It may be shorter than the frame stream it came from.
type MotionSequence []FeatureVector

// BuildSequence normalizes and extracts every frame of rec. Frames without a
// usable pose or with a degenerate body scale are skipped; velocity is taken
// against the previous kept frame.
func BuildSequence(rec landmark.Recording, cal *Calibration) MotionSequence {
	seq := make(MotionSequence, 0, len(rec.Frames))

	var prev *[numAngles]float64
	for i := range rec.Frames {
		frame := &rec.Frames[i]

		body, ok := rec.Skeleton.Select(frame.Pose)
		if !ok {
			continue
		}
		normalized, ok := Normalize(body, cal.MinScale)
		if !ok {
			continue
		}

		v := Extract(normalized, frame.RightHand, frame.LeftHand, frame.Face, prev, cal)
		seq = append(seq, v)

		angles := v.ArmAngles()
		prev = &angles
	}

	return seq
}
