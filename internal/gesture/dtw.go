package gesture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrSequenceTooShort is returned by Align when either sequence has fewer
// frames than the calibration's alignment minimum.
var ErrSequenceTooShort = errors.New("sequence too short to align")

// Cell is one step of a warping path: live frame I aligned with reference frame J.
type Cell struct {
	I int
	J int
}

// Alignment is the outcome of aligning a live sequence against a reference.
type Alignment struct {
	Path        []Cell    // chronological, (0,0) to (n-1,m-1)
	Scores      []int     // per-cell similarity, 0-100
	Distances   []float64 // per-cell raw distance
	Score       int       // rounded mean of Scores
	AvgDistance float64   // mean of Distances
	TotalCost   float64   // cumulative cost at (n-1,m-1)
}

// Align computes the dynamic time warping alignment of live against ref.
func Align(live, ref MotionSequence, cal *Calibration) (*Alignment, error) {
	n, m := len(live), len(ref)
	minFrames := max(cal.MinAlignFrames, 1)
	if n < minFrames || m < minFrames {
		return nil, fmt.Errorf("%w: live=%d reference=%d", ErrSequenceTooShort, n, m)
	}

	dist := make([][]float64, n)
	cost := make([][]float64, n)
	for i := range n {
		dist[i] = make([]float64, m)
		cost[i] = make([]float64, m)
		for j := range m {
			dist[i][j] = Distance(&live[i], &ref[j], cal)
		}
	}

	// Borders are running sums; the interior takes the cheapest predecessor.
	cost[0][0] = dist[0][0]
	for i := 1; i < n; i++ {
		cost[i][0] = cost[i-1][0] + dist[i][0]
	}
	for j := 1; j < m; j++ {
		cost[0][j] = cost[0][j-1] + dist[0][j]
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			cost[i][j] = dist[i][j] + min3(cost[i-1][j-1], cost[i-1][j], cost[i][j-1])
		}
	}

	path := backtrace(cost)

	a := &Alignment{
		Path:      path,
		Scores:    make([]int, len(path)),
		Distances: make([]float64, len(path)),
		TotalCost: cost[n-1][m-1],
	}
	var sum int
	for k, c := range path {
		d := dist[c.I][c.J]
		a.Distances[k] = d
		a.Scores[k] = gaussianScore(d, cal.Sigma)
		sum += a.Scores[k]
	}
	a.Score = int(math.Round(float64(sum) / float64(len(path))))
	a.AvgDistance = stat.Mean(a.Distances, nil)

	return a, nil
}

// backtrace walks the cumulative cost matrix from the last cell to (0,0).
// Ties prefer the diagonal, then up (i-1), then left (j-1).
func backtrace(cost [][]float64) []Cell {
	i, j := len(cost)-1, len(cost[0])-1
	path := []Cell{{I: i, J: j}}

	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := cost[i-1][j-1], cost[i-1][j], cost[i][j-1]
			switch {
			case diag <= up && diag <= left:
				i--
				j--
			case up <= left:
				i--
			default:
				j--
			}
		}
		path = append(path, Cell{I: i, J: j})
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// gaussianScore maps a raw distance to an integer similarity in [0,100].
func gaussianScore(d, sigma float64) int {
	s := 100 * math.Exp(-(d*d)/(2*sigma*sigma))
	return int(math.Round(clamp(s, 0, 100)))
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
