package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/app"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newTestHandler(t *testing.T) (*ReferenceHandler, *store.Store) {
	t.Helper()

	s := newTestStore(t)
	a := app.New(app.Config{Store: s}, gesture.WithPicker(gesture.NewSeededPicker(7)))
	t.Cleanup(func() { a.Close() })
	return NewReferenceHandler(s, a), s
}

// sweepDocument encodes n frames of the right arm sweeping down.
func sweepDocument(t *testing.T, n int) json.RawMessage {
	t.Helper()

	rec := landmark.Recording{Skeleton: landmark.LiveSkeleton, Frames: detector.ArmSweep(n, 15)}
	data, err := reference.FromRecording(rec, 15).Marshal()
	require.NoError(t, err)
	return data
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func importSweep(t *testing.T, h http.Handler, name string) referenceResponse {
	t.Helper()

	rec := do(h, http.MethodPost, "/api/references", createReferenceRequest{
		Name:     name,
		Document: sweepDocument(t, 30),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created referenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	return created
}

func TestReferenceHandler_Create(t *testing.T) {
	h, _ := newTestHandler(t)

	created := importSweep(t, h, "alarippu")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alarippu", created.Name)
	assert.Equal(t, 30, created.Frames)
	assert.Equal(t, 15.0, created.FPS)
	assert.Empty(t, created.Document)

	t.Run("duplicate name", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/references", createReferenceRequest{
			Name:     "alarippu",
			Document: sweepDocument(t, 5),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/references", createReferenceRequest{Document: sweepDocument(t, 5)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid document", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/references", createReferenceRequest{
			Name:     "empty",
			Document: json.RawMessage(`{"fps":30,"poseIndices":[0],"frames":[]}`),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/references", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReferenceHandler_ListGetUpdateDelete(t *testing.T) {
	h, _ := newTestHandler(t)
	created := importSweep(t, h, "jatiswaram")

	rec := do(h, http.MethodGet, "/api/references", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var listed listReferencesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed.References, 1)
	assert.Equal(t, created.ID, listed.References[0].ID)
	assert.Empty(t, listed.References[0].Document)

	rec = do(h, http.MethodGet, "/api/references/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got referenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	doc, err := reference.Parse(got.Document)
	require.NoError(t, err)
	assert.Len(t, doc.Frames, 30)

	rec = do(h, http.MethodPut, "/api/references/"+created.ID, updateReferenceRequest{Name: "tillana"})
	require.Equal(t, http.StatusOK, rec.Code)
	var renamed referenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&renamed))
	assert.Equal(t, "tillana", renamed.Name)

	rec = do(h, http.MethodDelete, "/api/references/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/api/references/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceHandler_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/references/missing", nil},
		{http.MethodPut, "/api/references/missing", updateReferenceRequest{Name: "x"}},
		{http.MethodDelete, "/api/references/missing", nil},
		{http.MethodGet, "/api/references/missing/attempts", nil},
		{http.MethodGet, "/api/references/missing/unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestReferenceHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPatch, "/api/references", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/api/references/abc", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodDelete, "/api/references/abc/attempts", nil).Code)
}

func TestAttemptHandler_ScoreAndList(t *testing.T) {
	h, s := newTestHandler(t)
	created := importSweep(t, h, "alarippu")
	path := "/api/references/" + created.ID + "/attempts"

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(sweepDocument(t, 30)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result ResultResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, "excellent", result.Tier)
	assert.NotEmpty(t, result.Phrases)
	require.NotNil(t, result.AvgDistance)
	assert.Equal(t, 30, result.LiveFrames)

	// Two frames cannot be tracked; avg_distance is encoded as null.
	req = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(sweepDocument(t, 2)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Contains(t, raw, "avg_distance")
	assert.Nil(t, raw["avg_distance"])
	assert.Equal(t, true, raw["insufficient"])
	assert.Equal(t, gesture.ReasonTracking, raw["reason"])

	rec = do(h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed listAttemptsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	assert.Len(t, listed.Attempts, 2)
	require.NotNil(t, listed.Best)
	assert.Equal(t, result.AttemptID, listed.Best.ID)

	stored, err := s.Attempts().ListByReference(created.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAttemptHandler_Errors(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("unknown reference", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/references/missing/attempts", bytes.NewReader(sweepDocument(t, 10)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid document", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/references/missing/attempts", bytes.NewBufferString(`{"frames":[]}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("scoring disabled", func(t *testing.T) {
		h := NewReferenceHandler(newTestStore(t), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/references/any/attempts", bytes.NewReader(sweepDocument(t, 10)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// oversizedDocument has one frame more than a recording may hold. The frames
// are untracked so the body stays small.
func oversizedDocument(t *testing.T) json.RawMessage {
	t.Helper()

	doc := reference.Document{FPS: 30, PoseIndices: landmark.CompactPoseIndices}
	for i := 0; i <= reference.MaxFrames; i++ {
		doc.Frames = append(doc.Frames, reference.FrameData{T: float64(i) / 30})
	}
	data, err := doc.Marshal()
	require.NoError(t, err)
	return data
}

func TestHandlers_RejectOversizedDocuments(t *testing.T) {
	h, s := newTestHandler(t)
	created := importSweep(t, h, "alarippu")
	doc := oversizedDocument(t)

	t.Run("reference import", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/references", createReferenceRequest{Name: "too long", Document: doc})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		_, err := s.References().GetByName("too long")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("attempt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/references/"+created.ID+"/attempts", bytes.NewReader(doc))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		attempts, err := s.Attempts().ListByReference(created.ID)
		require.NoError(t, err)
		assert.Empty(t, attempts)
	})
}
