package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

var ErrOutboxEntryNotFound = errors.New("outbox entry not found")

// JiraOutboxRepository stores comments queued for delivery to the external
// tracker.
type JiraOutboxRepository struct {
	db dbtx
}

func NewJiraOutboxRepository(pool *pgxpool.Pool) *JiraOutboxRepository {
	return &JiraOutboxRepository{db: pool}
}

func NewJiraOutboxRepositoryWithTx(tx pgx.Tx) *JiraOutboxRepository {
	return &JiraOutboxRepository{db: tx}
}

func (r *JiraOutboxRepository) Enqueue(ctx context.Context, e *domain.JiraOutboxEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO jira_outbox (id, case_id, jira_id, author, body, status, retries, error, created_at, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.CaseID, e.JiraID, e.Author, e.Body, e.Status, e.Retries, nullableString(e.Error), e.CreatedAt, e.SentAt,
	)
	return err
}

// ClaimPending locks and returns up to limit pending entries, oldest first.
// Claimed entries stay pending; delivery outcome is recorded by MarkSent or
// MarkFailed.
func (r *JiraOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.JiraOutboxEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, case_id, jira_id, author, body, status, retries, error, created_at, sent_at
		 FROM jira_outbox
		 WHERE status = $1
		 ORDER BY created_at ASC
		 FOR UPDATE SKIP LOCKED
		 LIMIT $2`,
		domain.JiraOutboxStatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JiraOutboxEntry
	for rows.Next() {
		var e domain.JiraOutboxEntry
		var errMsg pgtype.Text
		if err := rows.Scan(&e.ID, &e.CaseID, &e.JiraID, &e.Author, &e.Body, &e.Status, &e.Retries, &errMsg, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			e.Error = errMsg.String
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *JiraOutboxRepository) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE jira_outbox SET status = $1, error = NULL, sent_at = $2 WHERE id = $3`,
		domain.JiraOutboxStatusSent, now, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOutboxEntryNotFound
	}
	return nil
}

// MarkFailed records a delivery failure. Entries under the retry limit go
// back to pending for the next sweep.
func (r *JiraOutboxRepository) MarkFailed(ctx context.Context, id string, errMsg string, maxRetries int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE jira_outbox
		 SET retries = retries + 1,
		     error = $1,
		     status = CASE WHEN retries + 1 >= $2 THEN $3::text ELSE $4::text END
		 WHERE id = $5`,
		errMsg, maxRetries, domain.JiraOutboxStatusFailed, domain.JiraOutboxStatusPending, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOutboxEntryNotFound
	}
	return nil
}
