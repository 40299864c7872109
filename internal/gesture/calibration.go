package gesture

// Feature vector layout.
const (
	FeatureLen = 60

	angleOffset       = 0
	positionOffset    = 4
	velocityOffset    = 20
	rightFingerOffset = 24
	leftFingerOffset  = 39
	faceOffset        = 54

	numAngles       = 4
	numFingerAngles = 15
	numFaceFeatures = 6
)

// Component identifies one block of the feature vector.
type Component int

const (
	Angles Component = iota
	Positions
	Velocity
	RightFingers
	LeftFingers
	Face
	numComponents
)

var componentNames = [numComponents]string{
	"angles", "positions", "velocity", "right_fingers", "left_fingers", "face",
}

func (c Component) String() string {
	if c < 0 || c >= numComponents {
		return "unknown"
	}
	return componentNames[c]
}

// span returns the [start, end) slot range of the component.
func (c Component) span() (int, int) {
	switch c {
	case Angles:
		return angleOffset, positionOffset
	case Positions:
		return positionOffset, velocityOffset
	case Velocity:
		return velocityOffset, rightFingerOffset
	case RightFingers:
		return rightFingerOffset, leftFingerOffset
	case LeftFingers:
		return leftFingerOffset, faceOffset
	case Face:
		return faceOffset, FeatureLen
	}
	return 0, 0
}

// PresencePolicy decides when a component takes part in the distance.
type PresencePolicy int

const (
	// ZeroSentinel excludes a component when both operands hold only zeros.
	ZeroSentinel PresencePolicy = iota
	// ExplicitPresence excludes a component only when neither operand
	// flags the modality as captured.
	ExplicitPresence
)

// FaceLandmarks holds the face-mesh indices the face ratios are read from.
type FaceLandmarks struct {
	Forehead      int
	Chin          int
	RightBrow     int
	LeftBrow      int
	RightEyeUpper int
	RightEyeLower int
	LeftEyeUpper  int
	LeftEyeLower  int
	UpperLip      int
	LowerLip      int
	MouthRight    int
	MouthLeft     int
}

// MotionCap caps the score at Ceiling when the live/reference motion ratio
// is below Below.
type MotionCap struct {
	Below   float64
	Ceiling int
}

// Tier is one feedback bucket covering scores in [Min, Max].
type Tier struct {
	Name    string
	Min     int
	Max     int
	Phrases []string
}

// Calibration is the fixed tuning of the scoring engine. The values were set
// empirically and should be revisited against recorded user attempts.
type Calibration struct {
	Weights [numComponents]float64

	// Sigma is the width of the Gaussian mapping distance to a 0-100 score.
	Sigma float64

	MinScale          float64
	MinFaceHeight     float64
	DegenerateSegment float64

	FingerTriplets [numFingerAngles][3]int
	Face           FaceLandmarks

	MinAlignFrames     int
	MinTrackableFrames int

	MotionEpsilon  float64
	MotionCaps     [2]MotionCap // ascending by Below
	LowMotionRatio float64

	Presence PresencePolicy

	Tiers            [4]Tier // ascending by Min
	TrackingPhrase   string
	LowMotionPhrases []string
}

// DefaultCalibration returns a fresh copy of the production calibration.
func DefaultCalibration() Calibration {
	return Calibration{
		Weights: [numComponents]float64{
			Angles:       3.0,
			Positions:    1.5,
			Velocity:     1.0,
			RightFingers: 3.0,
			LeftFingers:  3.0,
			Face:         0.5,
		},
		Sigma:             0.35,
		MinScale:          0.01,
		MinFaceHeight:     0.001,
		DegenerateSegment: 1e-9,
		// Thumb, index, middle, ring, pinky; proximal to distal.
		FingerTriplets: [numFingerAngles][3]int{
			{0, 1, 2}, {1, 2, 3}, {2, 3, 4},
			{0, 5, 6}, {5, 6, 7}, {6, 7, 8},
			{0, 9, 10}, {9, 10, 11}, {10, 11, 12},
			{0, 13, 14}, {13, 14, 15}, {14, 15, 16},
			{0, 17, 18}, {17, 18, 19}, {18, 19, 20},
		},
		Face: FaceLandmarks{
			Forehead:      10,
			Chin:          152,
			RightBrow:     105,
			LeftBrow:      334,
			RightEyeUpper: 159,
			RightEyeLower: 145,
			LeftEyeUpper:  386,
			LeftEyeLower:  374,
			UpperLip:      13,
			LowerLip:      14,
			MouthRight:    61,
			MouthLeft:     291,
		},
		MinAlignFrames:     2,
		MinTrackableFrames: 3,
		MotionEpsilon:      1e-6,
		MotionCaps: [2]MotionCap{
			{Below: 0.15, Ceiling: 15},
			{Below: 0.35, Ceiling: 45},
		},
		LowMotionRatio: 0.5,
		Presence:       ZeroSentinel,
		Tiers: [4]Tier{
			{Name: "keep_practicing", Min: 0, Max: 39, Phrases: []string{
				"Watch the demonstration once more and try again.",
				"Focus on matching the arm path first.",
				"Slow down and copy each part of the movement.",
			}},
			{Name: "getting_there", Min: 40, Max: 64, Phrases: []string{
				"You're getting there. Check your hand shape.",
				"Close! Try to follow the timing of the demonstration.",
			}},
			{Name: "good", Min: 65, Max: 84, Phrases: []string{
				"Good job! A little more precision and it's perfect.",
				"Nice work, the movement is clearly recognizable.",
			}},
			{Name: "excellent", Min: 85, Max: 100, Phrases: []string{
				"Excellent! That matches the demonstration.",
				"Perfect form. Well done!",
			}},
		},
		TrackingPhrase: "We couldn't see you clearly. Make sure your upper body and hands are in frame.",
		LowMotionPhrases: []string{
			"Try moving more. The gesture needs the full motion.",
			"Make the movement bigger, like in the demonstration.",
		},
	}
}

// ceilingFor returns the score ceiling for a motion ratio, if any band applies.
func (c *Calibration) ceilingFor(ratio float64) (int, bool) {
	for _, band := range c.MotionCaps {
		if ratio < band.Below {
			return band.Ceiling, true
		}
	}
	return 0, false
}
