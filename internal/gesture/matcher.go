// Package gesture scores a performed gesture against a demonstrated one.
//
// Both recordings are reduced to sequences of fixed-length feature vectors,
// aligned with dynamic time warping, and the better of the original and
// mirrored live orientations is kept. A motion floor caps the score when the
// performer barely moved.
package gesture

import (
	"math"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Result is the outcome of one comparison.
type Result struct {
	Score           int     // final score, 0-100
	Path            []int   // per aligned pair scores of the winning orientation
	AvgDistance     float64 // mean raw path distance; +Inf when nothing was aligned
	ReferenceFrames int
	LiveFrames      int
	Mirrored        bool // the mirrored live orientation won
	LowMotion       bool
	Capped          bool    // a motion ceiling applied
	MotionRatio     float64 // live/reference motion energy; 1 when the reference is still
	Insufficient    bool    // too few trackable frames, no alignment was run
}

// Scorer compares live recordings against references. It holds only
// immutable calibration and is safe for concurrent use.
type Scorer struct {
	cal    Calibration
	picker Picker
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithPicker sets the source used to choose among same-tier phrases.
func WithPicker(p Picker) Option {
	return func(s *Scorer) {
		if p != nil {
			s.picker = p
		}
	}
}

// WithPresencePolicy sets how absent modalities are detected by the distance.
func WithPresencePolicy(p PresencePolicy) Option {
	return func(s *Scorer) {
		s.cal.Presence = p
	}
}

// NewScorer creates a Scorer using the default calibration.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		cal:    DefaultCalibration(),
		picker: globalPicker{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare scores live against ref and returns the result with its feedback.
func (s *Scorer) Compare(ref, live landmark.Recording) (Result, Feedback) {
	res := s.Score(ref, live)
	return res, FeedbackFor(res, &s.cal, s.picker)
}

// Feedback returns the feedback for a result produced by this scorer.
func (s *Scorer) Feedback(res Result) Feedback {
	return FeedbackFor(res, &s.cal, s.picker)
}

// Score runs the comparison without choosing feedback phrases.
func (s *Scorer) Score(ref, live landmark.Recording) Result {
	cal := &s.cal

	refSeq := BuildSequence(ref, cal)
	liveSeq := BuildSequence(live, cal)
	mirroredSeq := BuildSequence(Mirror(live), cal)

	res := Result{
		ReferenceFrames: len(refSeq),
		LiveFrames:      max(len(liveSeq), len(mirroredSeq)),
		AvgDistance:     math.Inf(1),
		MotionRatio:     1,
	}
	if len(refSeq) < cal.MinAlignFrames || res.LiveFrames < cal.MinTrackableFrames {
		res.Insufficient = true
		return res
	}

	best, bestSeq := s.align(liveSeq, refSeq), liveSeq
	if mirrored := s.align(mirroredSeq, refSeq); mirrored.Score > best.Score {
		best, bestSeq = mirrored, mirroredSeq
		res.Mirrored = true
	}

	res.Score = best.Score
	res.Path = best.Scores
	res.AvgDistance = best.AvgDistance
	res.LiveFrames = len(bestSeq)

	refMotion := MotionEnergy(refSeq)
	if refMotion >= cal.MotionEpsilon {
		ratio := MotionEnergy(bestSeq) / refMotion
		res.MotionRatio = ratio
		if ceiling, ok := cal.ceilingFor(ratio); ok {
			res.Score = min(res.Score, ceiling)
			res.Capped = true
		}
		res.LowMotion = ratio < cal.LowMotionRatio
	}

	return res
}

// align returns the alignment of live against ref, or a zero-score
// placeholder when either side is too short.
func (s *Scorer) align(live, ref MotionSequence) *Alignment {
	a, err := Align(live, ref, &s.cal)
	if err != nil {
		return &Alignment{AvgDistance: math.Inf(1)}
	}
	return a
}
