// internal/assessment/repository.go
package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clinovia-inference/internal/common/database"
	apperrors "clinovia-inference/internal/common/errors"
)

// Repository persists assessment records. Create assigns the identifier and
// timestamp; records are never updated afterwards.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*Record, error)
}

// PostgresRepository stores records in the assessments table.
type PostgresRepository struct {
	client *database.PostgresClient
}

func NewPostgresRepository(client *database.PostgresClient) *PostgresRepository {
	return &PostgresRepository{client: client}
}

const insertAssessmentQuery = `
	INSERT INTO assessments (
		id, specialty, assessment_type, clinician_id, patient_id,
		input_data, result, algorithm_version, status, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *PostgresRepository) Create(ctx context.Context, record *Record) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()

	inputJSON, err := json.Marshal(record.InputData)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(
			fmt.Errorf("failed to serialize input data: %w", err))
	}
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(
			fmt.Errorf("failed to serialize result: %w", err))
	}

	_, err = r.client.Exec(ctx, insertAssessmentQuery,
		record.ID, record.Specialty, record.AssessmentType, record.ClinicianID,
		record.PatientID, inputJSON, resultJSON, record.AlgorithmVersion,
		record.Status, record.CreatedAt)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectAssessmentQuery = `
	SELECT id, specialty, assessment_type, clinician_id, patient_id,
	       input_data, result, algorithm_version, status, created_at
	FROM assessments`

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := r.client.QueryRow(ctx, selectAssessmentQuery+" WHERE id = $1", id)

	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewRecordNotFoundError(id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment %s: %w", id, err)
	}
	return record, nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*Record, error) {
	rows, err := r.client.Query(ctx,
		selectAssessmentQuery+" WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2",
		patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments for patient: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var (
		record     Record
		inputJSON  []byte
		resultJSON []byte
	)
	err := scan(&record.ID, &record.Specialty, &record.AssessmentType,
		&record.ClinicianID, &record.PatientID, &inputJSON, &resultJSON,
		&record.AlgorithmVersion, &record.Status, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(inputJSON, &record.InputData); err != nil {
		return nil, fmt.Errorf("corrupt input_data: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return nil, fmt.Errorf("corrupt result: %w", err)
	}
	return &record, nil
}
