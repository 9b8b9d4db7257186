package repository

import (
	"context"
	"time"

	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/pkg/pgconv"
)

const createNotificationJob = `INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5)`

const notificationStatusQueued = "queued"

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(db db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, createNotificationJob,
		kind, topic, payload, pgconv.TimeToPgtype(runAt), notificationStatusQueued)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}

	return nil
}
