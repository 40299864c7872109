package capture

import (
	"errors"
	"sync"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// ErrRecorderFrozen is returned when appending to a recorder that was frozen.
var ErrRecorderFrozen = errors.New("recorder is frozen")

// Recorder accumulates landmark frames while an attempt is performed. It is
// safe for concurrent use. Once frozen it rejects further frames, so the
// recording handed to the scorer can no longer change.
type Recorder struct {
	mu       sync.Mutex
	skeleton landmark.Skeleton
	frames   []landmark.Frame
	frozen   bool
	maxLen   int
}

// NewRecorder creates a recorder for frames in the given skeleton format.
// maxFrames bounds the recording length; 0 means unbounded.
func NewRecorder(skeleton landmark.Skeleton, maxFrames int) *Recorder {
	return &Recorder{
		skeleton: skeleton,
		maxLen:   maxFrames,
	}
}

// Append adds a frame. Frames must arrive in timestamp order; a frame older
// than the last one is dropped and reported as not added. When the recorder
// is full the oldest frame is discarded.
func (r *Recorder) Append(f landmark.Frame) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return false, ErrRecorderFrozen
	}
	if n := len(r.frames); n > 0 && f.Timestamp < r.frames[n-1].Timestamp {
		return false, nil
	}

	r.frames = append(r.frames, f.Clone())
	if r.maxLen > 0 && len(r.frames) > r.maxLen {
		r.frames = r.frames[len(r.frames)-r.maxLen:]
	}
	return true, nil
}

// Len returns the number of frames recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Frozen reports whether Freeze was called.
func (r *Recorder) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Freeze stops recording and returns the recording. Later calls return the
// same frames.
func (r *Recorder) Freeze() landmark.Recording {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
	return landmark.Recording{Skeleton: r.skeleton, Frames: r.frames}
}
