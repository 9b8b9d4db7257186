package shared

import (
	"context"
	"log/slog"
	"time"

	"coupon-marketplace/internal/domain/setting"
)

// HoldDuration reads reservation.hold_minutes. Non-positive values fall back
// to the default.
func HoldDuration(ctx context.Context, settings SettingsReader) time.Duration {
	minutes := positiveOrDefault(ctx, settings, setting.KeyReservationHoldMinutes, setting.DefaultReservationHoldMinutes)
	return time.Duration(minutes) * time.Minute
}

// EditWindow reads offer.edit_window_hours with the same fallback rule.
func EditWindow(ctx context.Context, settings SettingsReader) time.Duration {
	hours := positiveOrDefault(ctx, settings, setting.KeyOfferEditWindowHours, setting.DefaultOfferEditWindowHours)
	return time.Duration(hours) * time.Hour
}

func positiveOrDefault(ctx context.Context, settings SettingsReader, key string, def int) int {
	v := settings.GetInt(ctx, key, def)
	if v <= 0 {
		slog.Warn("non-positive setting configured, using default", "key", key, "value", v, "default", def)
		return def
	}
	return v
}
