package detector

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// ErrServiceFailed is returned when the detection service reports an error
// for a frame.
var ErrServiceFailed = errors.New("detection service failed")

// jsonResponse is one line written by the detection service.
type jsonResponse struct {
	Pose      []jsonPoint `json:"pose"`
	RightHand []jsonPoint `json:"right_hand"`
	LeftHand  []jsonPoint `json:"left_hand"`
	Face      []jsonPoint `json:"face"`
	Error     string      `json:"error,omitempty"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// parseResponse decodes a service line into a frame. Modalities with the
// wrong number of points are dropped rather than rejected.
func parseResponse(line []byte) (landmark.Frame, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return landmark.Frame{}, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return landmark.Frame{}, fmt.Errorf("%w: %s", ErrServiceFailed, resp.Error)
	}

	return landmark.Frame{
		Pose:      toPoints(resp.Pose, landmark.LiveSkeleton.Joints()),
		RightHand: toPoints(resp.RightHand, landmark.NumHandPoints),
		LeftHand:  toPoints(resp.LeftHand, landmark.NumHandPoints),
		Face:      toPoints(resp.Face, landmark.NumFacePoints),
	}, nil
}

func toPoints(in []jsonPoint, want int) []landmark.Point {
	if len(in) < want {
		return nil
	}
	out := make([]landmark.Point, want)
	for i := range out {
		out[i] = landmark.Point{X: in[i].X, Y: in[i].Y, Z: in[i].Z}
	}
	return out
}
