// Package reference reads and writes the JSON document format used to
// persist and exchange recordings.
package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// ErrInvalidDocument is returned when a document is structurally unusable.
var ErrInvalidDocument = errors.New("invalid reference document")

// MaxFrames bounds the frames of one document. Alignment cost grows with the
// product of the two lengths, so every recording that reaches the scorer is
// held to this limit: two minutes at 30 fps.
const MaxFrames = 3600

// Document is the persisted form of a recording. Points are encoded as
// [x, y] or [x, y, z] arrays to keep extracted references compact.
type Document struct {
	FPS         float64     `json:"fps"`
	Duration    float64     `json:"duration"`
	PoseIndices []int       `json:"poseIndices"`
	Frames      []FrameData `json:"frames"`
}

// FrameData is one frame of a Document. Hands and face are omitted when
// they were not captured.
type FrameData struct {
	T         float64     `json:"t"`
	Pose      [][]float64 `json:"pose"`
	RightHand [][]float64 `json:"rightHand,omitempty"`
	LeftHand  [][]float64 `json:"leftHand,omitempty"`
	Face      [][]float64 `json:"face,omitempty"`
}

// Decode reads and validates a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Parse is Decode for an in-memory document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal encodes the document as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Encode writes the document as JSON to w.
func (d *Document) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(d)
}

// Validate checks that the document has between 1 and MaxFrames frames, a
// pose index table that covers the upper-body joints, pose arrays matching
// that table, and timestamps in non-decreasing order. A frame may carry no
// pose at all when the performer was not tracked.
func (d *Document) Validate() error {
	if len(d.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidDocument)
	}
	if len(d.Frames) > MaxFrames {
		return fmt.Errorf("%w: %d frames exceeds the limit of %d", ErrInvalidDocument, len(d.Frames), MaxFrames)
	}
	if d.FPS < 0 || math.IsNaN(d.FPS) || math.IsInf(d.FPS, 0) {
		return fmt.Errorf("%w: fps %v", ErrInvalidDocument, d.FPS)
	}
	if _, err := d.skeleton(); err != nil {
		return err
	}

	prev := math.Inf(-1)
	for i, f := range d.Frames {
		if math.IsNaN(f.T) || f.T < prev {
			return fmt.Errorf("%w: frame %d out of order", ErrInvalidDocument, i)
		}
		prev = f.T
		if len(f.Pose) > 0 && len(f.Pose) != len(d.PoseIndices) {
			return fmt.Errorf("%w: frame %d has %d pose points, expected %d",
				ErrInvalidDocument, i, len(f.Pose), len(d.PoseIndices))
		}
		for _, pts := range [][][]float64{f.Pose, f.RightHand, f.LeftHand, f.Face} {
			if err := checkPoints(pts); err != nil {
				return fmt.Errorf("%w: frame %d: %v", ErrInvalidDocument, i, err)
			}
		}
	}
	return nil
}

func checkPoints(pts [][]float64) error {
	for j, p := range pts {
		if len(p) < 2 || len(p) > 3 {
			return fmt.Errorf("point %d has %d coordinates", j, len(p))
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d is not finite", j)
			}
		}
	}
	return nil
}

func (d *Document) skeleton() (landmark.Skeleton, error) {
	s, err := landmark.SkeletonFromPoseIndices("document", d.PoseIndices)
	if err != nil {
		return landmark.Skeleton{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return s, nil
}

// Recording converts the document into a recording whose skeleton follows
// the document's pose index table.
func (d *Document) Recording() (landmark.Recording, error) {
	s, err := d.skeleton()
	if err != nil {
		return landmark.Recording{}, err
	}

	frames := make([]landmark.Frame, len(d.Frames))
	for i, f := range d.Frames {
		frames[i] = landmark.Frame{
			Pose:      toPoints(f.Pose),
			RightHand: toPoints(f.RightHand),
			LeftHand:  toPoints(f.LeftHand),
			Face:      toPoints(f.Face),
			Timestamp: f.T,
		}
	}
	return landmark.Recording{Skeleton: s, Frames: frames}, nil
}

// FromRecording encodes a recording as a document. fps is recorded as
// given; pass 0 to derive it from the frame timestamps.
func FromRecording(rec landmark.Recording, fps float64) *Document {
	doc := &Document{
		FPS:         fps,
		Duration:    rec.Duration(),
		PoseIndices: rec.Skeleton.PoseIndices(),
		Frames:      make([]FrameData, len(rec.Frames)),
	}
	if fps == 0 && doc.Duration > 0 {
		doc.FPS = float64(len(rec.Frames)-1) / doc.Duration
	}

	for i, f := range rec.Frames {
		doc.Frames[i] = FrameData{
			T:         f.Timestamp,
			Pose:      fromPoints(f.Pose),
			RightHand: fromPoints(f.RightHand),
			LeftHand:  fromPoints(f.LeftHand),
			Face:      fromPoints(f.Face),
		}
	}
	return doc
}

func toPoints(in [][]float64) []landmark.Point {
	if len(in) == 0 {
		return nil
	}
	out := make([]landmark.Point, len(in))
	for i, p := range in {
		out[i] = landmark.Point{X: p[0], Y: p[1]}
		if len(p) > 2 {
			out[i].Z = p[2]
		}
	}
	return out
}

func fromPoints(in []landmark.Point) [][]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([][]float64, len(in))
	for i, p := range in {
		if p.Z == 0 {
			out[i] = []float64{p.X, p.Y}
		} else {
			out[i] = []float64{p.X, p.Y, p.Z}
		}
	}
	return out
}
