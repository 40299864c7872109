// Package api provides HTTP API handlers for references and scored attempts.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/abhinaya/internal/app"
	"github.com/ayusman/abhinaya/internal/landmark"
)

// maxBodyBytes bounds uploaded documents. A minute of holistic landmarks at
// 30 fps with a face mesh is roughly 40 MB of JSON.
const maxBodyBytes = 64 << 20

// Evaluator scores a live recording against a stored reference and
// persists the attempt. *app.App implements it.
type Evaluator interface {
	Evaluate(referenceID string, live landmark.Recording) (*app.Outcome, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// ResultResponse is the wire form of a scored attempt.
type ResultResponse struct {
	AttemptID       string   `json:"attempt_id"`
	ReferenceID     string   `json:"reference_id"`
	Score           int      `json:"score"`
	Tier            string   `json:"tier"`
	Reason          string   `json:"reason,omitempty"`
	Phrases         []string `json:"phrases"`
	Mirrored        bool     `json:"mirrored"`
	LowMotion       bool     `json:"low_motion"`
	Capped          bool     `json:"capped"`
	Insufficient    bool     `json:"insufficient"`
	MotionRatio     float64  `json:"motion_ratio"`
	AvgDistance     *float64 `json:"avg_distance"` // null when nothing was aligned
	ReferenceFrames int      `json:"reference_frames"`
	LiveFrames      int      `json:"live_frames"`
	Path            []int    `json:"path,omitempty"`
}

// NewResultResponse converts an outcome to its wire form.
func NewResultResponse(out *app.Outcome) ResultResponse {
	res := out.Result
	return ResultResponse{
		AttemptID:       out.AttemptID,
		ReferenceID:     out.ReferenceID,
		Score:           res.Score,
		Tier:            out.Feedback.Tier,
		Reason:          out.Feedback.Reason,
		Phrases:         out.Feedback.Phrases,
		Mirrored:        res.Mirrored,
		LowMotion:       res.LowMotion,
		Capped:          res.Capped,
		Insufficient:    res.Insufficient,
		MotionRatio:     res.MotionRatio,
		AvgDistance:     app.FiniteOrNil(res.AvgDistance),
		ReferenceFrames: res.ReferenceFrames,
		LiveFrames:      res.LiveFrames,
		Path:            res.Path,
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
