package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back blank frames of a fixed size for testing. Paired
// with a mock detector, the frame content does not matter; only the number
// of frames read does.
type MockCamera struct {
	limit   int // 0 means unlimited
	width   int
	height  int
	read    int
	fps     int
	mu      sync.Mutex
	running bool
}

// NewMockCamera creates a mock camera that yields limit frames before
// ErrEndOfStream, or frames forever when limit is 0.
func NewMockCamera(limit int) *MockCamera {
	return &MockCamera{
		limit:  limit,
		width:  DefaultWidth,
		height: DefaultHeight,
		fps:    DefaultFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.read = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if c.limit > 0 && c.read >= c.limit {
		return nil, ErrEndOfStream
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, errors.New("no frames available")
	}

	frame := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	c.read++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// FramesRead returns how many frames were read since the last Open.
func (c *MockCamera) FramesRead() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read
}
