package gesture

import (
	"math"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Presence is a bitmask of the components a frame actually captured.
type Presence uint8

// Has reports whether component c is flagged present.
func (p Presence) Has(c Component) bool {
	return p&(1<<uint(c)) != 0
}

func (p Presence) with(c Component) Presence {
	return p | 1<<uint(c)
}

// FeatureVector is the fixed 60-slot summary of one frame. Absent modalities
// keep their slots zeroed so the length never changes.
type FeatureVector struct {
	Values  [FeatureLen]float64
	Present Presence
}

// Component returns the slots of component c.
func (v *FeatureVector) Component(c Component) []float64 {
	start, end := c.span()
	return v.Values[start:end]
}

// ArmAngles returns the four arm-segment angles of the vector.
func (v *FeatureVector) ArmAngles() [numAngles]float64 {
	var a [numAngles]float64
	copy(a[:], v.Values[angleOffset:positionOffset])
	return a
}

// Normalize moves the upper-body subset into a shoulder-centred frame scaled
// by the mean of shoulder width and torso height. It returns false when the
// scale is below minScale and the frame must be dropped.
func Normalize(body [landmark.NumBodySubset]landmark.Point, minScale float64) ([landmark.NumBodySubset]landmark.Point, bool) {
	ls, rs := body[landmark.LeftShoulder], body[landmark.RightShoulder]
	lh, rh := body[landmark.LeftHip], body[landmark.RightHip]

	origin := midpoint(ls, rs)
	hipCenter := midpoint(lh, rh)
	shoulderWidth := distance2D(ls, rs)
	torsoHeight := distance2D(origin, hipCenter)

	scale := (shoulderWidth + torsoHeight) / 2
	if scale < minScale {
		return body, false
	}

	var out [landmark.NumBodySubset]landmark.Point
	for i, p := range body {
		out[i] = landmark.Point{
			X: (p.X - origin.X) / scale,
			Y: (p.Y - origin.Y) / scale,
		}
	}
	return out, true
}

// Extract builds the feature vector of one normalized frame. prev holds the
// previous kept frame's arm angles, or nil for the first frame.
func Extract(body [landmark.NumBodySubset]landmark.Point, right, left, face []landmark.Point, prev *[numAngles]float64, cal *Calibration) FeatureVector {
	var v FeatureVector

	// Arm angles: right upper arm, right forearm, left upper arm, left forearm.
	segments := [numAngles][2]int{
		{landmark.RightShoulder, landmark.RightElbow},
		{landmark.RightElbow, landmark.RightWrist},
		{landmark.LeftShoulder, landmark.LeftElbow},
		{landmark.LeftElbow, landmark.LeftWrist},
	}
	for i, seg := range segments {
		a, b := body[seg[0]], body[seg[1]]
		v.Values[angleOffset+i] = math.Atan2(b.Y-a.Y, b.X-a.X)
	}
	v.Present = v.Present.with(Angles)

	for i, p := range body {
		v.Values[positionOffset+2*i] = p.X
		v.Values[positionOffset+2*i+1] = p.Y
	}
	v.Present = v.Present.with(Positions)

	if prev != nil {
		for i := 0; i < numAngles; i++ {
			v.Values[velocityOffset+i] = wrapAngle(v.Values[angleOffset+i] - prev[i])
		}
		v.Present = v.Present.with(Velocity)
	}

	if landmark.HasHand(right) {
		fingerAngles(right, cal, v.Values[rightFingerOffset:leftFingerOffset])
		v.Present = v.Present.with(RightFingers)
	}
	if landmark.HasHand(left) {
		fingerAngles(left, cal, v.Values[leftFingerOffset:faceOffset])
		v.Present = v.Present.with(LeftFingers)
	}

	if faceFeatures(face, cal, v.Values[faceOffset:FeatureLen]) {
		v.Present = v.Present.with(Face)
	}

	return v
}

// fingerAngles writes the 15 joint angles of a 21-point hand into dst.
func fingerAngles(hand []landmark.Point, cal *Calibration, dst []float64) {
	for i, t := range cal.FingerTriplets {
		dst[i] = vertexAngle(hand[t[0]], hand[t[1]], hand[t[2]], cal.DegenerateSegment)
	}
}

// faceFeatures writes the six face ratios into dst. It returns false, leaving
// dst zeroed, when the mesh is missing or the face height is degenerate.
func faceFeatures(face []landmark.Point, cal *Calibration, dst []float64) bool {
	if !landmark.HasFace(face) {
		return false
	}
	idx := cal.Face

	height := math.Abs(face[idx.Chin].Y - face[idx.Forehead].Y)
	if height <= cal.MinFaceHeight {
		return false
	}

	rightEyeCenter := (face[idx.RightEyeUpper].Y + face[idx.RightEyeLower].Y) / 2
	leftEyeCenter := (face[idx.LeftEyeUpper].Y + face[idx.LeftEyeLower].Y) / 2

	dst[0] = (rightEyeCenter - face[idx.RightBrow].Y) / height
	dst[1] = (leftEyeCenter - face[idx.LeftBrow].Y) / height
	dst[2] = math.Abs(face[idx.RightEyeLower].Y-face[idx.RightEyeUpper].Y) / height
	dst[3] = math.Abs(face[idx.LeftEyeLower].Y-face[idx.LeftEyeUpper].Y) / height
	dst[4] = (face[idx.LowerLip].Y - face[idx.UpperLip].Y) / height
	dst[5] = math.Abs(face[idx.MouthRight].X-face[idx.MouthLeft].X) / height
	return true
}

// vertexAngle returns the angle at b between b->a and b->c in radians,
// measured in the camera plane like every other feature. Depth is ignored
// because stored references carry none. A near-zero segment yields pi.
func vertexAngle(a, b, c landmark.Point, eps float64) float64 {
	bax, bay := a.X-b.X, a.Y-b.Y
	bcx, bcy := c.X-b.X, c.Y-b.Y

	na := math.Hypot(bax, bay)
	nc := math.Hypot(bcx, bcy)
	if na < eps || nc < eps {
		return math.Pi
	}

	cos := (bax*bcx + bay*bcy) / (na * nc)
	return math.Acos(clamp(cos, -1, 1))
}

// wrapAngle maps an angular difference into (-pi, pi].
func wrapAngle(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	if d == -math.Pi {
		d = math.Pi
	}
	return d
}

func midpoint(a, b landmark.Point) landmark.Point {
	return landmark.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func distance2D(a, b landmark.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
