package repository

import (
	"context"
	"time"

	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/pkg/pgconv"
)

const getSetting = `SELECT value FROM settings WHERE key = $1`

const upsertSetting = `INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

type SettingRepository struct {
	db db.DBTX
}

func NewSettingRepository(db db.DBTX) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Find(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := r.db.QueryRow(ctx, getSetting, key).Scan(&value); err != nil {
		if pgconv.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, infra.WrapRepoErr("failed to read setting", err)
	}
	return value, true, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string, now time.Time) error {
	if _, err := r.db.Exec(ctx, upsertSetting, key, value, pgconv.TimeToPgtype(now)); err != nil {
		return infra.WrapRepoErr("failed to upsert setting", err)
	}
	return nil
}
