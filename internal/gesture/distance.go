package gesture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distance returns the weighted mean of per-component RMS differences
// between a and b. Components excluded by the calibration's presence policy
// do not count towards the mean; when every component is excluded the
// distance is 0.
func Distance(a, b *FeatureVector, cal *Calibration) float64 {
	var rms, weights [numComponents]float64
	k := 0

	for c := Component(0); c < numComponents; c++ {
		if !included(c, a, b, cal.Presence) {
			continue
		}
		x, y := a.Component(c), b.Component(c)
		rms[k] = floats.Distance(x, y, 2) / math.Sqrt(float64(len(x)))
		weights[k] = cal.Weights[c]
		k++
	}

	if k == 0 {
		return 0
	}
	return stat.Mean(rms[:k], weights[:k])
}

// included reports whether component c of the pair takes part in the distance.
func included(c Component, a, b *FeatureVector, policy PresencePolicy) bool {
	if policy == ExplicitPresence {
		return a.Present.Has(c) || b.Present.Has(c)
	}
	return !allZero(a.Component(c)) || !allZero(b.Component(c))
}

func allZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}
