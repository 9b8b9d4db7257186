package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"coupon-marketplace/internal/domain/setting"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/shared"
)

type SettingCommands interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SettingsService serves both the typed read side used by the engine and the
// admin write side. Reads never fail: a missing key, an unparsable value or a
// store error yields the caller's default.
type SettingsService struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewSettingsService(uow shared.UnitOfWork, clk clock.Clock) *SettingsService {
	return &SettingsService{uow: uow, clock: clk}
}

func (s *SettingsService) lookup(ctx context.Context, key string) (string, bool) {
	var (
		value string
		found bool
	)
	err := s.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		value, found, err = tx.Settings().Find(ctx, key)
		return err
	})
	if err != nil {
		slog.Warn("failed to read setting, using default", "key", key, "error", err.Error())
		return "", false
	}
	return value, found
}

func (s *SettingsService) GetInt(ctx context.Context, key string, def int) int {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("setting is not an integer, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *SettingsService) GetBool(ctx context.Context, key string, def bool) bool {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("setting is not a boolean, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *SettingsService) GetString(ctx context.Context, key string, def string) string {
	raw, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return raw
}

// Get returns the stored raw value. Unlike the typed readers it reports a
// missing key and store failures.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if err := setting.ValidateKey(key); err != nil {
		return "", err
	}
	var (
		value string
		found bool
	)
	err := s.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		value, found, err = tx.Settings().Find(ctx, key)
		return err
	})
	if err != nil {
		return "", errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !found {
		return "", setting.ErrKeyNotFound
	}
	return value, nil
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := setting.ValidateKey(key); err != nil {
		return err
	}
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Settings().Upsert(ctx, key, value, s.clock.Now())
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
