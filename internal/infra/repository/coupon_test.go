//go:build unit

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	rows, _ := mockArgs.Get(0).(pgx.Rows)
	return rows, mockArgs.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Row)
}

func (m *mockDBTX) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	mockArgs := m.Called(ctx, table, columns, src)
	return mockArgs.Get(0).(int64), mockArgs.Error(1)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func reservedUnit(t *testing.T) *coupon.Coupon {
	t.Helper()
	code, err := coupon.GenerateCode()
	require.NoError(t, err)
	c := coupon.NewCoupon(uuid.New(), code, time.Now())
	require.NoError(t, c.Reserve(uuid.New(), time.Now()))
	return c
}

func TestCouponRepository_SaveTransition(t *testing.T) {
	tests := []struct {
		name     string
		tag      pgconn.CommandTag
		execErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success", tag: pgconn.NewCommandTag("UPDATE 1")},
		{name: "row moved on", tag: pgconn.NewCommandTag("UPDATE 0"), wantKind: infra.KindConflict},
		{name: "database failure", execErr: errors.New("connection reset"), wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := reservedUnit(t)
			db := new(mockDBTX)
			db.On("Exec", mock.Anything, saveCouponTransition, mock.Anything).Return(tt.tag, tt.execErr)

			err := NewCouponRepository(db).SaveTransition(context.Background(), unit, coupon.StatusAvailable)

			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, infra.IsKind(err, tt.wantKind), "got %v", err)
			}
			db.AssertExpectations(t)
		})
	}
}

func TestCouponRepository_SaveTransitionArgs(t *testing.T) {
	unit := reservedUnit(t)
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, saveCouponTransition, mock.MatchedBy(func(args []any) bool {
		return len(args) == 11 &&
			args[0] == unit.ID() &&
			args[1] == "available" &&
			args[2] == unit.Version() &&
			args[3] == "reserved"
	})).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	require.NoError(t, NewCouponRepository(db).SaveTransition(context.Background(), unit, coupon.StatusAvailable))
	db.AssertExpectations(t)
}

func TestCouponRepository_FindByID(t *testing.T) {
	tests := []struct {
		name     string
		scanErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "missing row", scanErr: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "query failure", scanErr: errors.New("timeout"), wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			db := new(mockDBTX)
			db.On("QueryRow", mock.Anything, getCouponByID, []any{id}).Return(errRow{err: tt.scanErr})

			got, err := NewCouponRepository(db).FindByID(context.Background(), id)

			assert.Nil(t, got)
			assert.True(t, infra.IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestCouponRepository_CreateBatch(t *testing.T) {
	t.Run("empty batch does not touch the database", func(t *testing.T) {
		db := new(mockDBTX)
		require.NoError(t, NewCouponRepository(db).CreateBatch(context.Background(), nil))
		db.AssertNotCalled(t, "CopyFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate code is classified", func(t *testing.T) {
		units, err := coupon.NewBatch(uuid.New(), 3, time.Now())
		require.NoError(t, err)

		db := new(mockDBTX)
		db.On("CopyFrom", mock.Anything, pgx.Identifier{"coupons"}, couponCopyColumns, mock.Anything).
			Return(int64(0), &pgconn.PgError{Code: pgErrUniqueViolation})

		err = NewCouponRepository(db).CreateBatch(context.Background(), units)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)
	})
}

func TestSettingRepository_Find(t *testing.T) {
	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, getSetting, []any{"missing"}).Return(errRow{err: pgx.ErrNoRows})
	db.On("QueryRow", mock.Anything, getSetting, []any{"broken"}).Return(errRow{err: errors.New("timeout")})
	repo := NewSettingRepository(db)

	value, found, err := repo.Find(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)

	_, _, err = repo.Find(context.Background(), "broken")
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
}

const pgErrUniqueViolation = "23505"
