// Package detector turns camera frames into body, hand and face landmarks.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks found in it.
	// Modalities that were not detected are left nil. The returned frame
	// carries no timestamp; callers stamp it with the capture time.
	Detect(frame *gocv.Mat) (landmark.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// ModelComplexity selects the pose model (0, 1 or 2; default: 1).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Face enables the face mesh, which is slower and optional for scoring.
	Face bool

	// IdleTimeout stops the detection service after this long without frames.
	IdleTimeout time.Duration

	// ScriptPath overrides the location of the detection service script.
	ScriptPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		Face:            false,
		IdleTimeout:     30 * time.Second,
	}
}
