package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// MarketingListRepository implements [models.Repository] for [models.MarketingList] persistence.
type MarketingListRepository struct {
	db *sql.DB
}

// NewMarketingListRepository creates a new [MarketingListRepository] with the given database connection
func NewMarketingListRepository(db *sql.DB) *MarketingListRepository {
	return &MarketingListRepository{db: db}
}

var marketingListColumns = fmt.Sprintf("%s, sequence, %s, %s, %s, created_at, updated_at, deleted_at",
	models.ListSchema.ID, models.ListSchema.Name, models.ListSchema.ExternalListID, models.ListSchema.CreatedFromCode)

// Create inserts a new marketing list with generated ID and sequence
func (r *MarketingListRepository) Create(list *models.MarketingList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	sequence, err := NextSequence(r.db, models.ListSchema.Table)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	list.SetID(shared.GenerateID())
	list.SetSequence(sequence)

	schema := models.ListSchema
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, sequence, %s, %s, %s, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, schema.Table, schema.ID, schema.Name, schema.ExternalListID, schema.CreatedFromCode)

	_, err = r.db.Exec(query,
		list.ID(), sequence, list.Name, nullable(list.ExternalListID), int(list.CreatedFromCode),
		list.CreatedAt(), list.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert marketing list: %w", err)
	}

	return nil
}

// Get retrieves a marketing list by ID, excluding soft-deleted lists
func (r *MarketingListRepository) Get(id string) (*models.MarketingList, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND deleted_at IS NULL",
		marketingListColumns, models.ListSchema.Table, models.ListSchema.ID)

	list, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: marketing list %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query marketing list: %w", err)
	}
	return list, nil
}

// Update modifies the name, external list id and source type of a marketing list
func (r *MarketingListRepository) Update(list *models.MarketingList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	now := time.Now().UTC()
	list.SetUpdatedAt(now)

	schema := models.ListSchema
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = ?, %s = ?, %s = ?, updated_at = ?
		WHERE %s = ? AND deleted_at IS NULL
	`, schema.Table, schema.Name, schema.ExternalListID, schema.CreatedFromCode, schema.ID)

	result, err := r.db.Exec(query, list.Name, nullable(list.ExternalListID), int(list.CreatedFromCode), now, list.ID())
	if err != nil {
		return fmt.Errorf("failed to update marketing list: %w", err)
	}

	return expectOneRow(result, "marketing list", list.ID())
}

// Delete soft-deletes a marketing list by ID
func (r *MarketingListRepository) Delete(id string) error {
	return softDelete(r.db, models.ListSchema.Table, "marketing list", id)
}

// List retrieves marketing lists, optionally filtered by created_from_code, newest first
func (r *MarketingListRepository) List(criteria map[string]any) ([]*models.MarketingList, error) {
	schema := models.ListSchema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE deleted_at IS NULL", marketingListColumns, schema.Table)
	args := []any{}

	if code, ok := criteria[schema.CreatedFromCode.String()].(models.MemberTypeCode); ok && code != 0 {
		query += fmt.Sprintf(" AND %s = ?", schema.CreatedFromCode)
		args = append(args, int(code))
	}

	query += " ORDER BY created_at DESC, sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query marketing lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.MarketingList
	for rows.Next() {
		list, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan marketing list: %w", err)
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *MarketingListRepository) scan(row scanner) (*models.MarketingList, error) {
	var (
		id             string
		sequence       int
		name           string
		externalListID sql.NullString
		code           int
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &externalListID, &code, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	list := models.NewMarketingList(sequence, name, externalListID.String, models.MemberTypeCode(code))
	list.SetID(id)
	list.SetCreatedAt(createdAt)
	list.SetUpdatedAt(updatedAt)
	list.SetDeletedAt(timePtr(deletedAt))
	return list, nil
}
