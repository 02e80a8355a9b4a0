package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

type CommentRepository struct {
	db dbtx
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: pool}
}

func NewCommentRepositoryWithTx(tx pgx.Tx) *CommentRepository {
	return &CommentRepository{db: tx}
}

const selectComment = `SELECT id, case_id, user_id, user_name, content, internal, jira_comment_id, synced_from_jira, created_at FROM comments`

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, case_id, user_id, user_name, content, internal, jira_comment_id, synced_from_jira, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CaseID, nullableString(c.UserID), c.UserName, c.Content,
		c.Internal, nullableString(c.JiraCommentID), c.SyncedFromJira, c.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrCommentAlreadySynced
	}
	return err
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.db.QueryRow(ctx, selectComment+` WHERE id = $1`, id))
}

// GetByJiraCommentID looks up a mirrored comment by its tracker id within a
// case, used to skip webhook redeliveries.
func (r *CommentRepository) GetByJiraCommentID(ctx context.Context, caseID, jiraCommentID string) (*domain.Comment, error) {
	return scanComment(r.db.QueryRow(ctx,
		selectComment+` WHERE case_id = $1 AND jira_comment_id = $2`,
		caseID, jiraCommentID,
	))
}

// ListByCase returns a case's comments oldest first. Internal comments are
// excluded unless includeInternal is set.
func (r *CommentRepository) ListByCase(ctx context.Context, caseID string, includeInternal bool) ([]*domain.Comment, error) {
	query := selectComment + ` WHERE case_id = $1`
	if !includeInternal {
		query += ` AND internal = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	var userID, jiraCommentID *string
	err := row.Scan(&c.ID, &c.CaseID, &userID, &c.UserName, &c.Content,
		&c.Internal, &jiraCommentID, &c.SyncedFromJira, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	if userID != nil {
		c.UserID = *userID
	}
	if jiraCommentID != nil {
		c.JiraCommentID = *jiraCommentID
	}
	return &c, nil
}
