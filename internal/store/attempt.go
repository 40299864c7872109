package store

import (
	"database/sql"
	"errors"
	"time"
)

// Attempt is one scored performance against a reference.
type Attempt struct {
	ID          string    `json:"id"`
	ReferenceID string    `json:"reference_id"`
	Score       int       `json:"score"`
	Mirrored    bool      `json:"mirrored"`
	LowMotion   bool      `json:"low_motion"`
	Tier        string    `json:"tier"`
	AvgDistance *float64  `json:"avg_distance"` // nil when nothing aligned
	LiveFrames  int       `json:"live_frames"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttemptRepository stores scored attempts.
type AttemptRepository struct {
	db *sql.DB
}

// Attempts returns the attempt repository for this store.
func (s *Store) Attempts() *AttemptRepository {
	return &AttemptRepository{db: s.db}
}

// Create inserts an attempt. It returns ErrNotFound when the reference
// does not exist.
func (r *AttemptRepository) Create(a *Attempt) error {
	a.CreatedAt = time.Now()

	var avg sql.NullFloat64
	if a.AvgDistance != nil {
		avg = sql.NullFloat64{Float64: *a.AvgDistance, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO attempts (id, reference_id, score, mirrored, low_motion, tier, avg_distance, live_frames, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ReferenceID, a.Score, a.Mirrored, a.LowMotion, a.Tier, avg, a.LiveFrames, a.CreatedAt,
	)
	return translate(err)
}

const attemptColumns = `id, reference_id, score, mirrored, low_motion, tier, avg_distance, live_frames, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*Attempt, error) {
	a := &Attempt{}
	var avg sql.NullFloat64
	if err := row.Scan(&a.ID, &a.ReferenceID, &a.Score, &a.Mirrored, &a.LowMotion, &a.Tier, &avg, &a.LiveFrames, &a.CreatedAt); err != nil {
		return nil, err
	}
	if avg.Valid {
		a.AvgDistance = &avg.Float64
	}
	return a, nil
}

// ListByReference retrieves the attempts for a reference, newest first.
func (r *AttemptRepository) ListByReference(referenceID string) ([]*Attempt, error) {
	rows, err := r.db.Query(
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE reference_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		referenceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}

// Best returns the highest scoring attempt for a reference, the earliest
// one on ties.
func (r *AttemptRepository) Best(referenceID string) (*Attempt, error) {
	a, err := scanAttempt(r.db.QueryRow(
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE reference_id = ?
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT 1`,
		referenceID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
