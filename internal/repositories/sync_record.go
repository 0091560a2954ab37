package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// SyncRecordRepository implements [models.Repository] for [models.SyncRecord] persistence.
type SyncRecordRepository struct {
	db *sql.DB
}

// NewSyncRecordRepository creates a new [SyncRecordRepository] with the given database connection
func NewSyncRecordRepository(db *sql.DB) *SyncRecordRepository {
	return &SyncRecordRepository{db: db}
}

var syncRecordColumns = fmt.Sprintf(`id, sequence, %s, %s, %s, %s,
	%s, %s, %s, %s,
	created_at, updated_at, deleted_at`,
	models.SyncSchema.BatchID, models.SyncSchema.Status, models.SyncSchema.SubmittedAt, models.SyncSchema.CompletedAt,
	models.SyncSchema.TotalOperations, models.SyncSchema.FinishedOperations, models.SyncSchema.ErroredOperations,
	models.SyncSchema.MarketingList)

// Create inserts a sync record with generated ID and sequence.
//
// Records written by a push are always linked to the list they came from.
func (r *SyncRecordRepository) Create(rec *models.SyncRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if !rec.HasMarketingList() {
		return fmt.Errorf("%w: sync record requires a marketing list", shared.ErrValidation)
	}

	sequence, err := NextSequence(r.db, models.SyncSchema.Table)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	rec.SetID(shared.GenerateID())
	rec.SetSequence(sequence)

	schema := models.SyncSchema
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, sequence, %s, %s, %s, %s,
			%s, %s, %s, %s,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, schema.Table, schema.BatchID, schema.Status, schema.SubmittedAt, schema.CompletedAt,
		schema.TotalOperations, schema.FinishedOperations, schema.ErroredOperations, schema.MarketingList)

	_, err = r.db.Exec(query,
		rec.ID(), sequence, nullable(rec.BatchID), nullable(rec.Status),
		nullableTime(rec.SubmittedAt), nullableTime(rec.CompletedAt),
		rec.TotalOperations, rec.FinishedOperations, rec.ErroredOperations, nullable(rec.MarketingListID),
		rec.CreatedAt(), rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync record: %w", err)
	}

	return nil
}

// Get retrieves a sync record by ID, excluding soft-deleted records
func (r *SyncRecordRepository) Get(id string) (*models.SyncRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND deleted_at IS NULL", syncRecordColumns, models.SyncSchema.Table)

	rec, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: sync record %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync record: %w", err)
	}
	return rec, nil
}

// Update writes the batch state of an existing sync record in place
func (r *SyncRecordRepository) Update(rec *models.SyncRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	now := time.Now().UTC()
	rec.SetUpdatedAt(now)

	schema := models.SyncSchema
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = ?, %s = ?, %s = ?, %s = ?,
			%s = ?, %s = ?, %s = ?,
			%s = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, schema.Table, schema.BatchID, schema.Status, schema.SubmittedAt, schema.CompletedAt,
		schema.TotalOperations, schema.FinishedOperations, schema.ErroredOperations, schema.MarketingList)

	result, err := r.db.Exec(query,
		nullable(rec.BatchID), nullable(rec.Status),
		nullableTime(rec.SubmittedAt), nullableTime(rec.CompletedAt),
		rec.TotalOperations, rec.FinishedOperations, rec.ErroredOperations,
		nullable(rec.MarketingListID), now, rec.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync record: %w", err)
	}

	return expectOneRow(result, "sync record", rec.ID())
}

// Delete soft-deletes a sync record by ID
func (r *SyncRecordRepository) Delete(id string) error {
	return softDelete(r.db, models.SyncSchema.Table, "sync record", id)
}

// List retrieves sync records newest first.
//
// Supported criteria: "marketing_list_id" (string) and "status" (string).
func (r *SyncRecordRepository) List(criteria map[string]any) ([]*models.SyncRecord, error) {
	schema := models.SyncSchema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE deleted_at IS NULL", syncRecordColumns, schema.Table)
	args := []any{}

	if listID, ok := criteria[schema.MarketingList.String()].(string); ok && listID != "" {
		query += fmt.Sprintf(" AND %s = ?", schema.MarketingList)
		args = append(args, listID)
	}

	if status, ok := criteria[schema.Status.String()].(string); ok && status != "" {
		query += fmt.Sprintf(" AND %s = ?", schema.Status)
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync records: %w", err)
	}
	defer rows.Close()

	var records []*models.SyncRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (r *SyncRecordRepository) scan(row scanner) (*models.SyncRecord, error) {
	var (
		id                       string
		sequence                 int
		batchID, status, listID  sql.NullString
		submittedAt, completedAt sql.NullTime
		total, finished, errored int
		createdAt, updatedAt     time.Time
		deletedAt                sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &batchID, &status, &submittedAt, &completedAt,
		&total, &finished, &errored, &listID,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := models.NewSyncRecord(sequence, listID.String)
	rec.SetID(id)
	rec.BatchID = batchID.String
	rec.Status = status.String
	rec.SubmittedAt = timePtr(submittedAt)
	rec.CompletedAt = timePtr(completedAt)
	rec.TotalOperations = total
	rec.FinishedOperations = finished
	rec.ErroredOperations = errored
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	rec.SetDeletedAt(timePtr(deletedAt))
	return rec, nil
}
