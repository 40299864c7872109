package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/store"
)

// AttemptHandler lists and scores attempts against one reference.
type AttemptHandler struct {
	store *store.Store
	eval  Evaluator
}

// NewAttemptHandler creates an AttemptHandler. Scoring is disabled when
// eval is nil.
func NewAttemptHandler(s *store.Store, eval Evaluator) *AttemptHandler {
	return &AttemptHandler{store: s, eval: eval}
}

type attemptResponse struct {
	ID          string   `json:"id"`
	Score       int      `json:"score"`
	Tier        string   `json:"tier"`
	Mirrored    bool     `json:"mirrored"`
	LowMotion   bool     `json:"low_motion"`
	AvgDistance *float64 `json:"avg_distance"`
	LiveFrames  int      `json:"live_frames"`
	CreatedAt   string   `json:"created_at"`
}

type listAttemptsResponse struct {
	Attempts []attemptResponse `json:"attempts"`
	Best     *attemptResponse  `json:"best"`
}

func toAttemptResponse(a *store.Attempt) attemptResponse {
	return attemptResponse{
		ID:          a.ID,
		Score:       a.Score,
		Tier:        a.Tier,
		Mirrored:    a.Mirrored,
		LowMotion:   a.LowMotion,
		AvgDistance: a.AvgDistance,
		LiveFrames:  a.LiveFrames,
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

// serve handles /api/references/{id}/attempts.
func (h *AttemptHandler) serve(w http.ResponseWriter, r *http.Request, referenceID string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, referenceID)
	case http.MethodPost:
		h.create(w, r, referenceID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET and reports the best attempt alongside the history.
func (h *AttemptHandler) list(w http.ResponseWriter, r *http.Request, referenceID string) {
	if _, err := h.store.References().GetByID(referenceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reference")
		return
	}

	attempts, err := h.store.Attempts().ListByReference(referenceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attempts")
		return
	}

	response := listAttemptsResponse{
		Attempts: make([]attemptResponse, 0, len(attempts)),
	}
	for _, a := range attempts {
		response.Attempts = append(response.Attempts, toAttemptResponse(a))
	}
	if best, err := h.store.Attempts().Best(referenceID); err == nil {
		b := toAttemptResponse(best)
		response.Best = &b
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST with a live recording document and responds with the
// scored result.
func (h *AttemptHandler) create(w http.ResponseWriter, r *http.Request, referenceID string) {
	if h.eval == nil {
		writeError(w, http.StatusServiceUnavailable, "Scoring is not configured")
		return
	}

	doc, err := reference.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	live, err := doc.Recording()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.eval.Evaluate(referenceID, live)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to score attempt")
		return
	}

	writeJSON(w, http.StatusCreated, NewResultResponse(out))
}
