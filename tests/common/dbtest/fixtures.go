//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/setting"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// CreateActiveOffer inserts an Active offer valid around now with units Available coupons.
func CreateActiveOffer(t *testing.T, db DBLike, merchantID uuid.UUID, units int, now time.Time) uuid.UUID {
	t.Helper()

	offerID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO offers (id, merchant_id, title, description, original_price, discounted_price,
		                    total_units, available_units, valid_from, valid_to, status, created_at, updated_at)
		VALUES ($1, $2, 'Fixture offer', '', 20.00, 12.50, $3, $3, $4, $5, 'active', $6, $6)`,
		offerID, merchantID, units, now.Add(-time.Hour), now.Add(24*time.Hour), now)
	require.NoError(t, err)

	for range units {
		code, err := coupon.GenerateCode()
		require.NoError(t, err)
		_, err = db.Exec(ctx, `
			INSERT INTO coupons (id, offer_id, code, status, created_at, updated_at)
			VALUES ($1, $2, $3, 'available', $4, $4)`,
			uuid.New(), offerID, code.String(), now)
		require.NoError(t, err)
	}

	return offerID
}

func CountCouponsByStatus(t *testing.T, db DBLike, offerID uuid.UUID, status coupon.Status) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM coupons WHERE offer_id = $1 AND status = $2", offerID, status.String()).Scan(&n)
	require.NoError(t, err)
	return n
}

func AvailableUnits(t *testing.T, db DBLike, offerID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT available_units FROM offers WHERE id = $1", offerID).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES
		    ($1, $2),
		    ($3, $4)
		ON CONFLICT (key) DO NOTHING;
	`,
		setting.KeyReservationHoldMinutes, fmt.Sprint(setting.DefaultReservationHoldMinutes),
		setting.KeyOfferEditWindowHours, fmt.Sprint(setting.DefaultOfferEditWindowHours),
	)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT tablename
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, "public."+pq.QuoteIdentifier(t))
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
