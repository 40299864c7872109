package gesture

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Feedback reasons that override the numeric tier.
const (
	ReasonTracking  = "tracking"
	ReasonLowMotion = "low_motion"
)

// Feedback is the coaching message for one attempt. Tier is always the tier of
// the numeric score; Reason is set when an override chose the phrases.
// Phrases is never empty.
type Feedback struct {
	Tier    string
	Reason  string
	Phrases []string
}

// Picker chooses an index in [0, n). Implementations must be safe for
// concurrent use.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int {
	return rand.IntN(n)
}

type seededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPicker returns a deterministic Picker for reproducible phrase
// selection.
func NewSeededPicker(seed uint64) Picker {
	return &seededPicker{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (p *seededPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// TierFor returns the tier covering score. Scores outside [0,100] fall into
// the nearest tier.
func TierFor(score int, cal *Calibration) Tier {
	for _, t := range cal.Tiers {
		if score <= t.Max {
			return t
		}
	}
	return cal.Tiers[len(cal.Tiers)-1]
}

// FeedbackFor maps a result to its feedback. Poor tracking takes precedence
// over low motion, which takes precedence over the score tier.
func FeedbackFor(res Result, cal *Calibration, picker Picker) Feedback {
	tier := TierFor(res.Score, cal)
	fb := Feedback{Tier: tier.Name}

	switch {
	case res.Insufficient || res.LiveFrames < cal.MinTrackableFrames:
		fb.Reason = ReasonTracking
		fb.Phrases = []string{cal.TrackingPhrase}
	case res.LowMotion:
		fb.Reason = ReasonLowMotion
		fb.Phrases = slices.Clone(cal.LowMotionPhrases)
	default:
		fb.Phrases = []string{tier.Phrases[picker.IntN(len(tier.Phrases))]}
	}

	return fb
}
