package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNameTaken is returned when a reference name is already in use.
	ErrNameTaken = errors.New("name already in use")
)

// Reference is a stored reference recording. Document holds the encoded
// reference document and is only loaded by the single-row getters.
type Reference struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	FPS       float64         `json:"fps"`
	Duration  float64         `json:"duration"`
	Frames    int             `json:"frames"`
	Document  json.RawMessage `json:"document,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ReferenceRepository provides CRUD operations for references.
type ReferenceRepository struct {
	db *sql.DB
}

// References returns the reference repository for this store.
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{db: s.db}
}

// Create inserts a new reference into the database.
func (r *ReferenceRepository) Create(ref *Reference) error {
	now := time.Now()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO "references" (id, name, fps, duration, frames, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.Name, ref.FPS, ref.Duration, ref.Frames, string(ref.Document), ref.CreatedAt, ref.UpdatedAt,
	)
	return translate(err)
}

// GetByID retrieves a reference, including its document, by ID.
func (r *ReferenceRepository) GetByID(id string) (*Reference, error) {
	return r.get(`WHERE id = ?`, id)
}

// GetByName retrieves a reference, including its document, by name.
func (r *ReferenceRepository) GetByName(name string) (*Reference, error) {
	return r.get(`WHERE name = ?`, name)
}

func (r *ReferenceRepository) get(where string, arg any) (*Reference, error) {
	ref := &Reference{}
	var doc string

	err := r.db.QueryRow(
		`SELECT id, name, fps, duration, frames, document, created_at, updated_at
		 FROM "references" `+where,
		arg,
	).Scan(&ref.ID, &ref.Name, &ref.FPS, &ref.Duration, &ref.Frames, &doc, &ref.CreatedAt, &ref.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ref.Document = json.RawMessage(doc)
	return ref, nil
}

// List retrieves all references without their documents, newest first.
func (r *ReferenceRepository) List() ([]*Reference, error) {
	rows, err := r.db.Query(
		`SELECT id, name, fps, duration, frames, created_at, updated_at
		 FROM "references" ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*Reference
	for rows.Next() {
		ref := &Reference{}
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.FPS, &ref.Duration, &ref.Frames, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}

// Update updates the name of an existing reference. The recording itself
// is immutable once imported.
func (r *ReferenceRepository) Update(ref *Reference) error {
	ref.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE "references" SET name = ?, updated_at = ? WHERE id = ?`,
		ref.Name, ref.UpdatedAt, ref.ID,
	)
	if err != nil {
		return translate(err)
	}

	return expectRow(result)
}

// Delete removes a reference and its attempts by ID.
func (r *ReferenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM "references" WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return expectRow(result)
}

func expectRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// translate maps driver constraint errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrNameTaken
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrNotFound
	}
	return err
}
