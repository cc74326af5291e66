package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const companionAppKey = "companion_app_id"

type SettingsRepo struct {
	db *sqlx.DB
}

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) CompanionAppID(ctx context.Context) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		`SELECT value FROM app_settings WHERE key = $1`, companionAppKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepo) SetCompanionAppID(ctx context.Context, appID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		companionAppKey, appID)
	return err
}
