package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]Record, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const recordColumns = `id, doctor_id, patient_name, symptoms, diagnosis, treatment_outcome, visit_date, created_at`

func (r *postgresRepo) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO medical_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.DoctorID, rec.PatientName, rec.Symptoms, rec.Diagnosis, rec.TreatmentOutcome, rec.VisitDate, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM medical_records WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListByDoctor returns the doctor's records, most recent visit first.
func (r *postgresRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM medical_records
		WHERE doctor_id = $1
		ORDER BY visit_date DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, doctorID, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.DoctorID,
		&rec.PatientName,
		&rec.Symptoms,
		&rec.Diagnosis,
		&rec.TreatmentOutcome,
		&rec.VisitDate,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
