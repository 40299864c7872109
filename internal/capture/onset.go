package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters for onset detection.
const (
	// blurSize is the Gaussian kernel size applied before differencing.
	blurSize = 21
	// diffThreshold is the per-pixel grey level change counted as motion.
	diffThreshold = 25
)

// OnsetDetector waits for the performer to start moving. It compares each
// frame with the previous one and latches once the share of changed pixels
// exceeds the threshold, so a practice session can begin recording at the
// first movement instead of at an arbitrary moment.
type OnsetDetector struct {
	threshold   float64 // percent of pixels
	prevGray    gocv.Mat
	initialized bool
	triggered   bool
	mu          sync.Mutex
}

// NewOnsetDetector creates an OnsetDetector. threshold is the percentage of
// pixels that must change between two frames, e.g. 1.0 for 1%.
func NewOnsetDetector(threshold float64) *OnsetDetector {
	return &OnsetDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Observe feeds one frame and reports whether movement has started, along
// with the change measured for this frame. Once triggered it keeps
// returning true until Reset.
func (o *OnsetDetector) Observe(frame *gocv.Mat) (bool, float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if frame == nil || frame.Empty() {
		return o.triggered, 0
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	grayBlur(frame, &blurred)

	if !o.initialized {
		blurred.CopyTo(&o.prevGray)
		o.initialized = true
		return o.triggered, 0
	}

	change := changedPercent(blurred, o.prevGray)
	blurred.CopyTo(&o.prevGray)

	if change > o.threshold {
		o.triggered = true
	}
	return o.triggered, change
}

// Triggered reports whether movement has been observed.
func (o *OnsetDetector) Triggered() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.triggered
}

// Reset clears the baseline frame and the latch.
func (o *OnsetDetector) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clear()
}

// Close releases the baseline frame.
func (o *OnsetDetector) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clear()
}

func (o *OnsetDetector) clear() {
	if !o.prevGray.Empty() {
		o.prevGray.Close()
		o.prevGray = gocv.NewMat()
	}
	o.initialized = false
	o.triggered = false
}

// grayBlur converts frame to greyscale and blurs it into dst.
func grayBlur(frame *gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, dst, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)
}

// changedPercent returns the percentage of pixels whose grey level differs
// by more than diffThreshold between a and b.
func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	total := thresh.Rows() * thresh.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(thresh)) / float64(total) * 100.0
}
