package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// PersonRepository persists contacts and leads and their list memberships.
//
// The table is chosen per call from the person's [models.MemberType].
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a new [PersonRepository] with the given database connection
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func schemaFor(kind models.MemberType) (models.MemberSchema, error) {
	schema, ok := kind.Schema()
	if !ok {
		return models.MemberSchema{}, fmt.Errorf("%w: no member table for type %q", shared.ErrInvalidInput, kind)
	}
	return schema, nil
}

// Create inserts a contact or lead with generated ID and sequence
func (r *PersonRepository) Create(person *models.Person) error {
	if err := person.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	schema, err := schemaFor(person.Kind)
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, schema.Table)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	person.SetID(shared.GenerateID())
	person.SetSequence(sequence)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, sequence, %s, %s, %s, %s, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, schema.Table, schema.FirstName, schema.LastName, schema.EmailAddress, schema.CreatedAt)

	_, err = r.db.Exec(query,
		person.ID(), sequence,
		nullable(person.FirstName), nullable(person.LastName), nullable(person.EmailAddress),
		person.CreatedAt(), person.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", schema.LogicalName, err)
	}

	return nil
}

// Get retrieves a contact or lead by ID, excluding soft-deleted rows
func (r *PersonRepository) Get(kind models.MemberType, id string) (*models.Person, error) {
	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, %s, %s, %s, %s, updated_at, deleted_at
		FROM %s WHERE id = ? AND deleted_at IS NULL
	`, schema.FirstName, schema.LastName, schema.EmailAddress, schema.CreatedAt, schema.Table)

	var (
		sequence             int
		first, last, email   sql.NullString
		createdAt, updatedAt time.Time
		deletedAt            sql.NullTime
	)

	err = r.db.QueryRow(query, id).Scan(&id, &sequence, &first, &last, &email, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, schema.LogicalName, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", schema.LogicalName, err)
	}

	person := &models.Person{Kind: kind, FirstName: first.String, LastName: last.String, EmailAddress: email.String}
	person.SetID(id)
	person.SetSequence(sequence)
	person.SetCreatedAt(createdAt)
	person.SetUpdatedAt(updatedAt)
	person.SetDeletedAt(timePtr(deletedAt))
	return person, nil
}

// AddToList records the person as a member of the marketing list.
// Adding the same person twice is a no-op.
func (r *PersonRepository) AddToList(listID string, person *models.Person) error {
	if person.ID() == "" {
		return fmt.Errorf("%w: person must be saved before joining a list", shared.ErrInvalidInput)
	}

	s := models.ListMemberSchema
	query := fmt.Sprintf(
		`INSERT OR IGNORE INTO %s (%s, %s, %s, created_at) VALUES (?, ?, ?, ?)`,
		s.Table, s.ListID, s.EntityID, s.EntityType,
	)

	if _, err := r.db.Exec(query, listID, person.ID(), string(person.Kind), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to add %s to list: %w", person.Kind, err)
	}
	return nil
}

// ListByMarketingList returns the members of kind on the list that have an email address,
// newest first.
func (r *PersonRepository) ListByMarketingList(listID string, kind models.MemberType) ([]models.Member, error) {
	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}

	lm := models.ListMemberSchema
	query := fmt.Sprintf(`
		SELECT p.%[1]s, p.%[2]s, p.%[3]s, p.%[4]s
		FROM %[5]s p
		JOIN %[6]s lm ON lm.%[7]s = p.%[1]s AND lm.%[8]s = ?
		WHERE lm.%[9]s = ?
			AND p.%[4]s IS NOT NULL AND p.%[4]s != ''
			AND p.deleted_at IS NULL
		ORDER BY p.%[10]s DESC, p.sequence DESC
	`,
		schema.ID, schema.FirstName, schema.LastName, schema.EmailAddress,
		schema.Table, lm.Table, lm.EntityID, lm.EntityType, lm.ListID, schema.CreatedAt,
	)

	rows, err := r.db.Query(query, string(kind), listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var (
			m           models.Member
			first, last sql.NullString
		)
		if err := rows.Scan(&m.ID, &first, &last, &m.EmailAddress); err != nil {
			return nil, fmt.Errorf("failed to scan list member: %w", err)
		}
		m.FirstName, m.LastName = first.String, last.String
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return members, nil
}
