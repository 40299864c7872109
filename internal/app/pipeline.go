package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/landmark"
)

// ErrBusy is returned when a practice session is already running.
var ErrBusy = errors.New("a practice session is already running")

// Practice records the performer for up to duration, scores the recording
// against the stored reference and persists the attempt. The reference is
// loaded first so a bad ID fails before the camera opens.
func (a *App) Practice(ctx context.Context, referenceID string, duration time.Duration) (*Outcome, error) {
	if _, err := a.LoadReference(referenceID); err != nil {
		return nil, err
	}

	live, err := a.Record(ctx, duration)
	if err != nil {
		return nil, err
	}
	return a.Evaluate(referenceID, live)
}

// Record captures a live recording of up to duration. It stops early when
// ctx is cancelled or a video source runs out of frames, and returns what
// was captured so far in both cases.
func (a *App) Record(ctx context.Context, duration time.Duration) (landmark.Recording, error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return landmark.Recording{}, ErrBusy
	}
	a.busy = true
	camera, det := a.camera, a.detector
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	if err := camera.Open(); err != nil {
		return landmark.Recording{}, fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	if a.config.StartOnMotion {
		if err := a.waitForOnset(ctx, camera); err != nil {
			return landmark.Recording{}, err
		}
	}

	rec := capture.NewRecorder(landmark.LiveSkeleton, MaxPracticeFrames)
	if err := a.runPipeline(ctx, camera, det, rec, duration); err != nil {
		return landmark.Recording{}, err
	}

	live := rec.Freeze()
	log.Printf("Recorded %d frames over %.2fs", live.Len(), live.Duration())
	return live, nil
}

// waitForOnset polls the camera at IdleFPS until the performer starts
// moving.
func (a *App) waitForOnset(ctx context.Context, camera capture.Camera) error {
	onset := capture.NewOnsetDetector(a.config.MotionThresh)
	defer onset.Close()

	camera.SetFPS(IdleFPS)
	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	log.Println("Waiting for motion")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame, err := camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				return err
			}
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}
			moved, _ := onset.Observe(frame)
			frame.Close()
			if moved {
				log.Println("Motion detected, recording")
				return nil
			}
		}
	}
}

// runPipeline is the capture loop. Every tick reads a frame, runs landmark
// detection and appends the result stamped with the time since recording
// started. Frames that fail to read or detect are skipped.
func (a *App) runPipeline(ctx context.Context, camera capture.Camera, det detector.Detector, rec *capture.Recorder, duration time.Duration) error {
	fps := a.config.FPS
	camera.SetFPS(fps)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			frame, err := camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				return nil
			}
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			f, err := det.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}
			f.Timestamp = time.Since(start).Seconds()

			if _, err := rec.Append(f); err != nil {
				return err
			}
		}
	}
}
