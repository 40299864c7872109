package gesture

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// dyadicPoints returns n points whose coordinates are multiples of 1/64, so
// that 1-(1-x) == x holds exactly.
func dyadicPoints(r *rand.Rand, n int) []landmark.Point {
	pts := make([]landmark.Point, n)
	for i := range pts {
		pts[i] = landmark.Point{
			X: float64(r.IntN(65)) / 64,
			Y: float64(r.IntN(65)) / 64,
			Z: float64(r.IntN(9)) / 64,
		}
	}
	return pts
}

func TestMirror_Involution(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 14))

	rec := landmark.Recording{Skeleton: landmark.LiveSkeleton}
	for i := 0; i < 6; i++ {
		f := landmark.Frame{
			Pose:      dyadicPoints(r, 33),
			RightHand: dyadicPoints(r, 21),
			Timestamp: float64(i) * 0.125,
		}
		if i%2 == 0 {
			f.LeftHand = dyadicPoints(r, 21)
		}
		if i == 3 {
			f.Face = dyadicPoints(r, landmark.NumFacePoints)
		}
		rec.Frames = append(rec.Frames, f)
	}

	twice := Mirror(Mirror(rec))
	if diff := cmp.Diff(rec.Frames, twice.Frames); diff != "" {
		t.Errorf("Mirror(Mirror(r)) mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, rec.Skeleton, twice.Skeleton)
}

func TestMirror_InvolutionArbitraryCoordinates(t *testing.T) {
	rec := sweepRecording(landmark.CompactSkeleton, 8)

	twice := Mirror(Mirror(rec))
	opt := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(rec.Frames, twice.Frames, opt); diff != "" {
		t.Errorf("Mirror(Mirror(r)) mismatch (-want +got):\n%s", diff)
	}
}

func TestMirror_SwapsSidesAndReflects(t *testing.T) {
	s := landmark.LiveSkeleton
	body := bodyWithRightArm(0.5)
	right := []landmark.Point{{X: 0.25, Y: 0.5}}
	face := []landmark.Point{{X: 0.125, Y: 0.375}}

	rec := landmark.Recording{Skeleton: s, Frames: []landmark.Frame{
		{Pose: poseFor(s, body), RightHand: right, Face: face, Timestamp: 2},
	}}
	m := Mirror(rec)
	require.Len(t, m.Frames, 1)
	f := m.Frames[0]

	for _, pair := range s.MirrorPairs() {
		l, rr := pair[0], pair[1]
		assert.Equal(t, 1-rec.Frames[0].Pose[rr].X, f.Pose[l].X, "pose %d takes reflected %d", l, rr)
		assert.Equal(t, rec.Frames[0].Pose[rr].Y, f.Pose[l].Y)
		assert.Equal(t, 1-rec.Frames[0].Pose[l].X, f.Pose[rr].X, "pose %d takes reflected %d", rr, l)
	}
	// Joints outside the pairs are reflected in place.
	assert.Equal(t, 0.5, f.Pose[0].X)

	assert.Nil(t, f.RightHand, "absent left hand becomes absent right hand")
	assert.Equal(t, []landmark.Point{{X: 0.75, Y: 0.5}}, f.LeftHand)
	assert.Equal(t, face, f.Face, "face is untouched")
	assert.Equal(t, 2.0, f.Timestamp)

	// The input is not modified.
	assert.Equal(t, 0.25, rec.Frames[0].RightHand[0].X)
	assert.Equal(t, body[landmark.LeftShoulder], rec.Frames[0].Pose[11])
}

func TestMirror_Empty(t *testing.T) {
	m := Mirror(landmark.Recording{Skeleton: landmark.LiveSkeleton})
	assert.Nil(t, m.Frames)
	assert.Equal(t, landmark.LiveSkeleton, m.Skeleton)
}
