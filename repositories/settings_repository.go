package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stafflink/portal_backend/models"
)

// SettingsRepository reads feature flags from the settings table.
type SettingsRepository interface {
	IsFlagEnabled(ctx context.Context, name string) (bool, error)
}

// PostgresSettingsRepository implements SettingsRepository over an *sql.DB.
type PostgresSettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository constructs a settings repository bound to the given DB.
func NewSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// IsFlagEnabled reports whether the named flag is present and truthy. A
// missing row is simply "off", not an error.
func (r *PostgresSettingsRepository) IsFlagEnabled(ctx context.Context, name string) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1;`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return value == "true" || value == "1" || value == "on", nil
}
