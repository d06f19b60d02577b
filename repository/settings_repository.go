package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog/database"
	"catalog/models"
)

// SettingsRepository stores the singleton ad settings row in SQLite
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the saved settings, or empty settings when none were saved
func (r *SettingsRepository) Get(ctx context.Context) (*models.AdSettings, error) {
	var s models.AdSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT popunder_code, social_bar_code, banner_ad_code, native_banner_code FROM settings WHERE id = 1`,
	).Scan(&s.PopunderCode, &s.SocialBarCode, &s.BannerAdCode, &s.NativeBannerCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.AdSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Upsert creates or overwrites the settings row
func (r *SettingsRepository) Upsert(ctx context.Context, s *models.AdSettings) error {
	query := `
		INSERT INTO settings (id, popunder_code, social_bar_code, banner_ad_code, native_banner_code)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			popunder_code = excluded.popunder_code,
			social_bar_code = excluded.social_bar_code,
			banner_ad_code = excluded.banner_ad_code,
			native_banner_code = excluded.native_banner_code
	`
	if _, err := r.db.ExecContext(ctx, query, s.PopunderCode, s.SocialBarCode, s.BannerAdCode, s.NativeBannerCode); err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
