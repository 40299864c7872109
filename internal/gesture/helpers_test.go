package gesture

import (
	"math"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Neutral upper body used across the tests: shoulders 0.2 apart, hips 0.3 below.
var (
	leftShoulder  = landmark.Point{X: 0.6, Y: 0.4}
	rightShoulder = landmark.Point{X: 0.4, Y: 0.4}
	leftHip       = landmark.Point{X: 0.58, Y: 0.7}
	rightHip      = landmark.Point{X: 0.42, Y: 0.7}
	leftElbow     = landmark.Point{X: 0.62, Y: 0.55}
	leftWrist     = landmark.Point{X: 0.63, Y: 0.68}
)

// bodyWithRightArm returns the neutral body with the right arm pointing
// along theta.
func bodyWithRightArm(theta float64) [landmark.NumBodySubset]landmark.Point {
	dx, dy := 0.15*math.Cos(theta), 0.15*math.Sin(theta)
	elbow := landmark.Point{X: rightShoulder.X + dx, Y: rightShoulder.Y + dy}
	wrist := landmark.Point{X: elbow.X + dx, Y: elbow.Y + dy}

	var body [landmark.NumBodySubset]landmark.Point
	body[landmark.LeftShoulder] = leftShoulder
	body[landmark.RightShoulder] = rightShoulder
	body[landmark.LeftElbow] = leftElbow
	body[landmark.RightElbow] = elbow
	body[landmark.LeftWrist] = leftWrist
	body[landmark.RightWrist] = wrist
	body[landmark.LeftHip] = leftHip
	body[landmark.RightHip] = rightHip
	return body
}

// poseFor spreads a semantic body over a pose array of the given skeleton.
// Unused joints are placed at the image centre.
func poseFor(s landmark.Skeleton, body [landmark.NumBodySubset]landmark.Point) []landmark.Point {
	pose := make([]landmark.Point, s.Joints())
	for i := range pose {
		pose[i] = landmark.Point{X: 0.5, Y: 0.5}
	}
	for k, p := range body {
		pose[s.Index(k)] = p
	}
	return pose
}

// openHand returns a 21-point hand with every finger extended from the wrist.
func openHand(wristX, wristY float64) []landmark.Point {
	hand := make([]landmark.Point, landmark.NumHandPoints)
	hand[landmark.Wrist] = landmark.Point{X: wristX, Y: wristY}
	for f := 0; f < 5; f++ {
		dx := 0.01 * float64(f-2)
		for k := 1; k <= 4; k++ {
			hand[1+4*f+k-1] = landmark.Point{X: wristX + dx*float64(k), Y: wristY - 0.02*float64(k)}
		}
	}
	return hand
}

// sweepRecording builds frames whose right arm sweeps linearly from 0 to
// pi/2 with both hands visible.
func sweepRecording(s landmark.Skeleton, frames int) landmark.Recording {
	rec := landmark.Recording{Skeleton: s}
	for i := 0; i < frames; i++ {
		theta := float64(i) / float64(frames-1) * math.Pi / 2
		body := bodyWithRightArm(theta)
		rec.Frames = append(rec.Frames, landmark.Frame{
			Pose:      poseFor(s, body),
			RightHand: openHand(body[landmark.RightWrist].X, body[landmark.RightWrist].Y),
			LeftHand:  openHand(leftWrist.X, leftWrist.Y),
			Timestamp: float64(i) / 30,
		})
	}
	return rec
}

// stillRecording builds frames that all hold the right arm at theta.
func stillRecording(s landmark.Skeleton, frames int, theta float64) landmark.Recording {
	rec := landmark.Recording{Skeleton: s}
	body := bodyWithRightArm(theta)
	for i := 0; i < frames; i++ {
		rec.Frames = append(rec.Frames, landmark.Frame{
			Pose:      poseFor(s, body),
			RightHand: openHand(body[landmark.RightWrist].X, body[landmark.RightWrist].Y),
			LeftHand:  openHand(leftWrist.X, leftWrist.Y),
			Timestamp: float64(i) / 30,
		})
	}
	return rec
}

// fixedPicker always picks the same index, clamped to the range.
type fixedPicker int

func (p fixedPicker) IntN(n int) int {
	return min(int(p), n-1)
}
