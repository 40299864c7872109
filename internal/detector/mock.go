package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a configured list of frames, one per Detect call, repeating
// the last one once the list is exhausted.
type MockDetector struct {
	mu     sync.Mutex
	frames []landmark.Frame
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the frames that will be returned by Detect and rewinds.
func (m *MockDetector) SetFrames(frames []landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next pre-configured frame or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return landmark.Frame{}, m.err
	}
	if len(m.frames) == 0 {
		return landmark.Frame{}, nil
	}

	f := m.frames[min(m.next, len(m.frames)-1)]
	m.next++
	return f.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ArmRaiseFrame returns a preset live frame of a performer facing the camera
// with the right arm held at theta radians from horizontal (image
// coordinates, so positive angles point down) and both hands open.
func ArmRaiseFrame(theta float64) landmark.Frame {
	pose := make([]landmark.Point, landmark.LiveSkeleton.Joints())
	for i := range pose {
		pose[i] = landmark.Point{X: 0.5, Y: 0.5}
	}

	set := func(joint int, p landmark.Point) {
		pose[landmark.LiveSkeleton.Index(joint)] = p
	}
	rightShoulder := landmark.Point{X: 0.4, Y: 0.4}
	dx, dy := 0.15*math.Cos(theta), 0.15*math.Sin(theta)
	rightWrist := landmark.Point{X: rightShoulder.X + 2*dx, Y: rightShoulder.Y + 2*dy}

	set(landmark.LeftShoulder, landmark.Point{X: 0.6, Y: 0.4})
	set(landmark.RightShoulder, rightShoulder)
	set(landmark.LeftElbow, landmark.Point{X: 0.62, Y: 0.55})
	set(landmark.RightElbow, landmark.Point{X: rightShoulder.X + dx, Y: rightShoulder.Y + dy})
	set(landmark.LeftWrist, landmark.Point{X: 0.63, Y: 0.68})
	set(landmark.RightWrist, rightWrist)
	set(landmark.LeftHip, landmark.Point{X: 0.58, Y: 0.7})
	set(landmark.RightHip, landmark.Point{X: 0.42, Y: 0.7})

	return landmark.Frame{
		Pose:      pose,
		RightHand: OpenPalmLandmarks(rightWrist),
		LeftHand:  OpenPalmLandmarks(landmark.Point{X: 0.63, Y: 0.68}),
	}
}

// ArmSweep returns n frames raising the right arm from horizontal to
// straight down, stamped at the given frame rate.
func ArmSweep(n int, fps float64) []landmark.Frame {
	frames := make([]landmark.Frame, n)
	for i := range frames {
		theta := 0.0
		if n > 1 {
			theta = float64(i) / float64(n-1) * math.Pi / 2
		}
		frames[i] = ArmRaiseFrame(theta)
		frames[i].Timestamp = float64(i) / fps
	}
	return frames
}

// OpenPalmLandmarks returns a preset 21-point hand with all fingers extended
// upward from the given wrist position.
func OpenPalmLandmarks(wrist landmark.Point) []landmark.Point {
	hand := make([]landmark.Point, landmark.NumHandPoints)
	hand[landmark.Wrist] = wrist

	// Per finger: base x offset from the wrist, thumb first.
	spread := [5]float64{0.05, 0.05, 0.0, -0.05, -0.10}
	for f, dx := range spread {
		for k := 1; k <= 4; k++ {
			hand[4*f+k] = landmark.Point{
				X: wrist.X + dx,
				Y: wrist.Y - 0.03*float64(k),
			}
		}
	}
	return hand
}
