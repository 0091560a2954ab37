package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// ConfigurationRepository stores Mailchimp configuration records and resolves the active one.
type ConfigurationRepository struct {
	db *sql.DB
}

// NewConfigurationRepository creates a new [ConfigurationRepository] with the given database connection
func NewConfigurationRepository(db *sql.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

func configurationColumns() string {
	s := models.ConfigurationSchema
	return fmt.Sprintf("id, sequence, %s, %s, %s, %s, %s, updated_at", s.Username, s.Password, s.APIKey, s.URL, s.CreatedAt)
}

// Create inserts a configuration record. Empty fields are stored as NULL.
func (r *ConfigurationRepository) Create(cfg *models.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	sequence, err := NextSequence(r.db, models.ConfigurationSchema.Table)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	cfg.SetID(shared.GenerateID())
	cfg.SetSequence(sequence)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		models.ConfigurationSchema.Table, configurationColumns())

	_, err = r.db.Exec(query,
		cfg.ID(), sequence,
		nullable(cfg.Username), nullable(cfg.Password), nullable(cfg.APIKey), nullable(cfg.URL),
		cfg.CreatedAt(), cfg.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert configuration: %w", err)
	}

	return nil
}

// Latest returns the most recently created configuration.
//
// With requireComplete set, rows missing any of [models.RequiredConfigurationColumns] are skipped.
// Returns an error wrapping [shared.ErrRecordNotFound] when nothing matches.
func (r *ConfigurationRepository) Latest(requireComplete bool) (*models.Configuration, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE deleted_at IS NULL`, configurationColumns(), models.ConfigurationSchema.Table)

	if requireComplete {
		conditions := make([]string, 0, len(models.RequiredConfigurationColumns))
		for _, col := range models.RequiredConfigurationColumns {
			conditions = append(conditions, col.String()+" IS NOT NULL")
		}
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY %s DESC, sequence DESC LIMIT 1", models.ConfigurationSchema.CreatedAt)

	cfg, err := r.scan(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active configuration", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query configuration: %w", err)
	}
	return cfg, nil
}

// List returns all configuration records, newest first
func (r *ConfigurationRepository) List() ([]*models.Configuration, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE deleted_at IS NULL ORDER BY %s DESC, sequence DESC`,
		configurationColumns(), models.ConfigurationSchema.Table, models.ConfigurationSchema.CreatedAt)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query configurations: %w", err)
	}
	defer rows.Close()

	var configs []*models.Configuration
	for rows.Next() {
		cfg, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return configs, nil
}

// Delete soft-deletes a configuration record by ID
func (r *ConfigurationRepository) Delete(id string) error {
	return softDelete(r.db, models.ConfigurationSchema.Table, "configuration", id)
}

func (r *ConfigurationRepository) scan(row scanner) (*models.Configuration, error) {
	var (
		id                              string
		sequence                        int
		username, password, apiKey, url sql.NullString
		createdAt, updatedAt            time.Time
	)

	if err := row.Scan(&id, &sequence, &username, &password, &apiKey, &url, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	cfg := models.NewConfiguration(sequence, username.String, password.String, apiKey.String, url.String)
	cfg.SetID(id)
	cfg.SetCreatedAt(createdAt)
	cfg.SetUpdatedAt(updatedAt)
	return cfg, nil
}
