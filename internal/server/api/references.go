package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/store"
)

// ReferenceHandler handles HTTP requests for reference resources.
type ReferenceHandler struct {
	store    *store.Store
	attempts *AttemptHandler
}

// NewReferenceHandler creates a ReferenceHandler. Attempt routes under a
// reference are served only when eval is non-nil.
func NewReferenceHandler(s *store.Store, eval Evaluator) *ReferenceHandler {
	return &ReferenceHandler{
		store:    s,
		attempts: NewAttemptHandler(s, eval),
	}
}

// ServeHTTP routes requests to the appropriate method.
// Expected paths: /api/references, /api/references/{id} and
// /api/references/{id}/attempts.
func (h *ReferenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/references")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
	case "attempts":
		h.attempts.serve(w, r, id)
		return
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createReferenceRequest struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

type updateReferenceRequest struct {
	Name string `json:"name"`
}

type referenceResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	FPS       float64         `json:"fps"`
	Duration  float64         `json:"duration"`
	Frames    int             `json:"frames"`
	Document  json.RawMessage `json:"document,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type listReferencesResponse struct {
	References []referenceResponse `json:"references"`
}

func toReferenceResponse(ref *store.Reference) referenceResponse {
	return referenceResponse{
		ID:        ref.ID,
		Name:      ref.Name,
		FPS:       ref.FPS,
		Duration:  ref.Duration,
		Frames:    ref.Frames,
		Document:  ref.Document,
		CreatedAt: formatTime(ref.CreatedAt),
		UpdatedAt: formatTime(ref.UpdatedAt),
	}
}

// list handles GET /api/references.
func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request) {
	refs, err := h.store.References().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list references")
		return
	}

	response := listReferencesResponse{
		References: make([]referenceResponse, 0, len(refs)),
	}
	for _, ref := range refs {
		response.References = append(response.References, toReferenceResponse(ref))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/references/{id} and includes the document.
func (h *ReferenceHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	ref, err := h.store.References().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reference")
		return
	}

	writeJSON(w, http.StatusOK, toReferenceResponse(ref))
}

// create handles POST /api/references and imports a reference document.
func (h *ReferenceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createReferenceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	doc, err := reference.Parse(req.Document)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := Import(h.store, req.Name, doc)
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			writeError(w, http.StatusConflict, "Name already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create reference")
		return
	}

	log.Printf("Imported reference %s (%s, %d frames)", ref.Name, ref.ID, ref.Frames)
	ref.Document = nil
	writeJSON(w, http.StatusCreated, toReferenceResponse(ref))
}

// Import stores a validated document as a new reference.
func Import(s *store.Store, name string, doc *reference.Document) (*store.Reference, error) {
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	ref := &store.Reference{
		ID:       uuid.New().String(),
		Name:     name,
		FPS:      doc.FPS,
		Duration: doc.Duration,
		Frames:   len(doc.Frames),
		Document: data,
	}
	if err := s.References().Create(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// update handles PUT /api/references/{id}, which renames a reference.
func (h *ReferenceHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ref, err := h.store.References().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get reference")
		return
	}

	ref.Name = req.Name
	if err := h.store.References().Update(ref); err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			writeError(w, http.StatusConflict, "Name already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update reference")
		return
	}

	ref.Document = nil
	writeJSON(w, http.StatusOK, toReferenceResponse(ref))
}

// delete handles DELETE /api/references/{id} and its attempts.
func (h *ReferenceHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.References().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete reference")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
