package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

type NotificationRepository struct {
	db dbtx
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: pool}
}

func NewNotificationRepositoryWithTx(tx pgx.Tx) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

const selectNotification = `SELECT id, user_id, case_id, case_title, message, type, read, created_at FROM notifications`

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, case_id, case_title, message, type, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, nullableString(n.CaseID), n.CaseTitle, n.Message, n.Type, n.Read, n.CreatedAt,
	)
	return err
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := selectNotification + ` WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var caseID *string
		if err := rows.Scan(&n.ID, &n.UserID, &caseID, &n.CaseTitle, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if caseID != nil {
			n.CaseID = *caseID
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&n)
	return n, err
}

// MarkRead marks a single notification as read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID,
	)
	return err
}
