// Package landmark defines the per-frame body, hand and face landmark types
// shared by the detector, the capture layer and the scoring engine.
package landmark

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist         = 0
	ThumbCMC      = 1
	ThumbMCP      = 2
	ThumbIP       = 3
	ThumbTip      = 4
	IndexMCP      = 5
	IndexPIP      = 6
	IndexDIP      = 7
	IndexTip      = 8
	MiddleMCP     = 9
	MiddlePIP     = 10
	MiddleDIP     = 11
	MiddleTip     = 12
	RingMCP       = 13
	RingPIP       = 14
	RingDIP       = 15
	RingTip       = 16
	PinkyMCP      = 17
	PinkyPIP      = 18
	PinkyDIP      = 19
	PinkyTip      = 20
	NumHandPoints = 21
	NumFacePoints = 478
	NumBodySubset = 8
)

// Point is a single landmark in normalized camera space. X and Y are in
// [0,1]; Z is optional depth and ignored by the 2D features.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Frame holds every modality captured at one instant. Any modality may be
// absent (nil slice).
type Frame struct {
	Pose      []Point `json:"pose,omitempty"`
	RightHand []Point `json:"rightHand,omitempty"`
	LeftHand  []Point `json:"leftHand,omitempty"`
	Face      []Point `json:"face,omitempty"`
	Timestamp float64 `json:"t"` // seconds
}

// HasHand reports whether hand carries a full 21-point set.
func HasHand(hand []Point) bool {
	return len(hand) >= NumHandPoints
}

// HasFace reports whether face carries a full face mesh.
func HasFace(face []Point) bool {
	return len(face) >= NumFacePoints
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	return Frame{
		Pose:      clonePoints(f.Pose),
		RightHand: clonePoints(f.RightHand),
		LeftHand:  clonePoints(f.LeftHand),
		Face:      clonePoints(f.Face),
		Timestamp: f.Timestamp,
	}
}

func clonePoints(p []Point) []Point {
	if p == nil {
		return nil
	}
	out := make([]Point, len(p))
	copy(out, p)
	return out
}

// Recording is a frozen, chronologically ordered frame stream together with
// the skeleton format its pose arrays follow. Scoring only ever reads it.
type Recording struct {
	Skeleton Skeleton
	Frames   []Frame
}

// Len returns the number of frames in the recording.
func (r Recording) Len() int {
	return len(r.Frames)
}

// Duration returns the time span covered by the recording in seconds.
func (r Recording) Duration() float64 {
	if len(r.Frames) < 2 {
		return 0
	}
	return r.Frames[len(r.Frames)-1].Timestamp - r.Frames[0].Timestamp
}
