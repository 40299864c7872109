package landmark

import (
	"errors"
	"fmt"
	"slices"
)

// Semantic upper-body joints, in the fixed order every skeleton format maps to.
const (
	LeftShoulder = iota
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
)

// MediaPipe Pose indices of the semantic joints.
var poseLandmarkerSubset = [NumBodySubset]int{11, 12, 13, 14, 15, 16, 23, 24}

// CompactPoseIndices is the pose index table of the compact reference
// format: nose, shoulders, elbows, wrists, hips, knees, ankles.
var CompactPoseIndices = []int{0, 11, 12, 13, 14, 15, 16, 23, 24, 25, 26, 27, 28}

// ErrMissingJoint is returned when a pose index table lacks one of the
// semantic upper-body joints.
var ErrMissingJoint = errors.New("pose index table is missing a required joint")

// Skeleton describes how a pose array of one format maps onto the semantic
// 8-joint upper-body subset. Values are immutable once constructed.
type Skeleton struct {
	name        string
	joints      int
	subset      [NumBodySubset]int
	poseIndices []int // nil for the full MediaPipe layout
}

// LiveSkeleton is the 33-joint MediaPipe Pose format produced by the live detector.
var LiveSkeleton = Skeleton{
	name:   "mediapipe-pose",
	joints: 33,
	subset: poseLandmarkerSubset,
}

// CompactSkeleton is the 13-joint format used by extracted reference documents.
var CompactSkeleton = mustSkeleton("compact", CompactPoseIndices)

// SkeletonFromPoseIndices derives a skeleton from a table listing, for each
// slot of a compact pose array, the MediaPipe Pose index it carries.
func SkeletonFromPoseIndices(name string, poseIndices []int) (Skeleton, error) {
	s := Skeleton{name: name, joints: len(poseIndices), poseIndices: slices.Clone(poseIndices)}
	for k, want := range poseLandmarkerSubset {
		slot := -1
		for i, idx := range poseIndices {
			if idx == want {
				slot = i
				break
			}
		}
		if slot < 0 {
			return Skeleton{}, fmt.Errorf("%w: pose landmark %d", ErrMissingJoint, want)
		}
		s.subset[k] = slot
	}
	return s, nil
}

func mustSkeleton(name string, poseIndices []int) Skeleton {
	s, err := SkeletonFromPoseIndices(name, poseIndices)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the format name.
func (s Skeleton) Name() string {
	return s.name
}

// Joints returns the pose array length of the format.
func (s Skeleton) Joints() int {
	return s.joints
}

// Index returns the pose array slot holding the given semantic joint.
func (s Skeleton) Index(joint int) int {
	return s.subset[joint]
}

// PoseIndices returns, for each pose array slot, the MediaPipe Pose index
// it carries.
func (s Skeleton) PoseIndices() []int {
	if s.poseIndices != nil {
		return slices.Clone(s.poseIndices)
	}
	out := make([]int, s.joints)
	for i := range out {
		out[i] = i
	}
	return out
}

// IsZero reports whether s is the zero Skeleton.
func (s Skeleton) IsZero() bool {
	return s.joints == 0
}

// Select extracts the semantic upper-body subset from a pose array.
// It returns false when the pose is too short for this format.
func (s Skeleton) Select(pose []Point) ([NumBodySubset]Point, bool) {
	var out [NumBodySubset]Point
	for k, idx := range s.subset {
		if idx >= len(pose) {
			return out, false
		}
		out[k] = pose[idx]
	}
	return out, true
}

// MirrorPairs returns the pose slots of the left/right joint pairs
// (shoulder, elbow, wrist, hip).
func (s Skeleton) MirrorPairs() [4][2]int {
	return [4][2]int{
		{s.subset[LeftShoulder], s.subset[RightShoulder]},
		{s.subset[LeftElbow], s.subset[RightElbow]},
		{s.subset[LeftWrist], s.subset[RightWrist]},
		{s.subset[LeftHip], s.subset[RightHip]},
	}
}
