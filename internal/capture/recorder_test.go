package capture

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/landmark"
)

func frameAt(t float64) landmark.Frame {
	return landmark.Frame{Pose: []landmark.Point{{X: t, Y: 0.5}}, Timestamp: t}
}

func TestRecorder_AppendAndFreeze(t *testing.T) {
	r := NewRecorder(landmark.LiveSkeleton, 0)

	for _, ts := range []float64{0, 0.1, 0.2} {
		added, err := r.Append(frameAt(ts))
		require.NoError(t, err)
		assert.True(t, added)
	}

	// Out-of-order frames are dropped.
	added, err := r.Append(frameAt(0.15))
	require.NoError(t, err)
	assert.False(t, added)

	rec := r.Freeze()
	assert.True(t, r.Frozen())
	assert.Equal(t, landmark.LiveSkeleton, rec.Skeleton)
	require.Len(t, rec.Frames, 3)
	assert.InDelta(t, 0.2, rec.Duration(), 1e-12)

	_, err = r.Append(frameAt(0.3))
	assert.True(t, errors.Is(err, ErrRecorderFrozen))
	assert.Len(t, r.Freeze().Frames, 3)
}

func TestRecorder_CopiesFrames(t *testing.T) {
	r := NewRecorder(landmark.LiveSkeleton, 0)

	f := frameAt(1)
	_, err := r.Append(f)
	require.NoError(t, err)
	f.Pose[0].X = 99

	assert.Equal(t, 1.0, r.Freeze().Frames[0].Pose[0].X)
}

func TestRecorder_MaxFrames(t *testing.T) {
	r := NewRecorder(landmark.CompactSkeleton, 3)

	for i := 0; i < 5; i++ {
		_, err := r.Append(frameAt(float64(i)))
		require.NoError(t, err)
	}

	rec := r.Freeze()
	require.Len(t, rec.Frames, 3)
	assert.Equal(t, 2.0, rec.Frames[0].Timestamp)
	assert.Equal(t, 4.0, rec.Frames[2].Timestamp)
}

func TestRecorder_ConcurrentAppend(t *testing.T) {
	r := NewRecorder(landmark.LiveSkeleton, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	next := 0.0
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				// Timestamps are handed out in order, so every append is accepted.
				mu.Lock()
				ts := next
				next++
				_, err := r.Append(frameAt(ts))
				mu.Unlock()
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
}
