package gesture

import (
	"slices"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Mirror returns the left/right swapped variant of rec: every pose and hand
// x-coordinate is reflected as 1-x, the four left/right joint pairs of the
// skeleton trade places and the two hands are swapped wholesale. Face points
// and timestamps are copied unchanged. rec itself is not modified.
func Mirror(rec landmark.Recording) landmark.Recording {
	out := landmark.Recording{Skeleton: rec.Skeleton}
	if rec.Frames == nil {
		return out
	}

	pairs := rec.Skeleton.MirrorPairs()
	out.Frames = make([]landmark.Frame, len(rec.Frames))
	for i, f := range rec.Frames {
		pose := reflect(f.Pose)
		for _, p := range pairs {
			if p[0] < len(pose) && p[1] < len(pose) {
				pose[p[0]], pose[p[1]] = pose[p[1]], pose[p[0]]
			}
		}

		out.Frames[i] = landmark.Frame{
			Pose:      pose,
			RightHand: reflect(f.LeftHand),
			LeftHand:  reflect(f.RightHand),
			Face:      slices.Clone(f.Face),
			Timestamp: f.Timestamp,
		}
	}
	return out
}

func reflect(points []landmark.Point) []landmark.Point {
	if points == nil {
		return nil
	}
	out := make([]landmark.Point, len(points))
	for i, p := range points {
		out[i] = landmark.Point{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
