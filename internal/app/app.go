// Package app wires the camera, detector, scorer and store into practice
// sessions against stored references.
package app

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while waiting for the performer to move.
	IdleFPS = 5
	// MaxPracticeFrames bounds a single recorded attempt.
	MaxPracticeFrames = reference.MaxFrames
)

// ErrStoreRequired is returned by operations that persist attempts when the
// app was created without a store.
var ErrStoreRequired = errors.New("app has no store")

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store
	// CameraSource is a device ID ("0") or a video file path.
	CameraSource string
	FPS          int
	// StartOnMotion delays recording until the onset detector fires.
	StartOnMotion bool
	MotionThresh  float64
	Detector      detector.Config
}

// DefaultConfig returns a configuration using the first camera.
func DefaultConfig() Config {
	return Config{
		CameraSource: "0",
		FPS:          capture.DefaultFPS,
		MotionThresh: 1.0, // 1% pixel change
		Detector:     detector.DefaultConfig(),
	}
}

// Outcome is a scored and persisted attempt.
type Outcome struct {
	AttemptID   string
	ReferenceID string
	Result      gesture.Result
	Feedback    gesture.Feedback
}

// App runs practice sessions and scores recordings against references.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	scorer   *gesture.Scorer
	mu       sync.RWMutex
	busy     bool
}

// New creates a new App instance with the given configuration.
func New(config Config, opts ...gesture.Option) *App {
	if config.CameraSource == "" {
		config.CameraSource = "0"
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0
	}

	a := &App{
		config: config,
		camera: capture.NewSource(config.CameraSource),
		scorer: gesture.NewScorer(opts...),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe holistic detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Scorer returns the scorer used for every comparison.
func (a *App) Scorer() *gesture.Scorer {
	return a.scorer
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// LoadReference reads a stored reference and decodes its recording.
func (a *App) LoadReference(referenceID string) (landmark.Recording, error) {
	if a.config.Store == nil {
		return landmark.Recording{}, ErrStoreRequired
	}
	ref, err := a.config.Store.References().GetByID(referenceID)
	if err != nil {
		return landmark.Recording{}, fmt.Errorf("reference %s: %w", referenceID, err)
	}
	doc, err := reference.Parse(ref.Document)
	if err != nil {
		return landmark.Recording{}, fmt.Errorf("reference %s: %w", referenceID, err)
	}
	return doc.Recording()
}

// Evaluate scores a live recording against a stored reference and persists
// the attempt.
func (a *App) Evaluate(referenceID string, live landmark.Recording) (*Outcome, error) {
	ref, err := a.LoadReference(referenceID)
	if err != nil {
		return nil, err
	}

	res, fb := a.scorer.Compare(ref, live)
	out := &Outcome{
		AttemptID:   uuid.New().String(),
		ReferenceID: referenceID,
		Result:      res,
		Feedback:    fb,
	}

	attempt := &store.Attempt{
		ID:          out.AttemptID,
		ReferenceID: referenceID,
		Score:       res.Score,
		Mirrored:    res.Mirrored,
		LowMotion:   res.LowMotion,
		Tier:        fb.Tier,
		AvgDistance: FiniteOrNil(res.AvgDistance),
		LiveFrames:  res.LiveFrames,
	}
	if err := a.config.Store.Attempts().Create(attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	log.Printf("Attempt %s on %s: score %d (%s)", out.AttemptID, referenceID, res.Score, fb.Tier)
	return out, nil
}

// FiniteOrNil returns a pointer to v, or nil when v is infinite or NaN.
func FiniteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Close releases the camera and the detector.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	return errors.Join(errs...)
}
