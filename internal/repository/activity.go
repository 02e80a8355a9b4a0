package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

const selectActivity = `SELECT id, case_id, responsible, activity, time_spent, notes, current, created_at FROM activities`

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activities (id, case_id, responsible, activity, time_spent, notes, current, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, nullableString(a.CaseID), a.Responsible, a.Activity, a.TimeSpent, a.Notes, a.Current, a.CreatedAt,
	)
	return err
}

func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx, selectActivity+` WHERE id = $1`, id))
}

func (r *ActivityRepository) List(ctx context.Context) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityRows(rows)
}

// ListCurrent returns the activities currently in progress, one per
// responsible at most.
func (r *ActivityRepository) ListCurrent(ctx context.Context) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity+` WHERE current = TRUE ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityRows(rows)
}

func (r *ActivityRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity+` WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityRows(rows)
}

func (r *ActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE activities SET activity = $1, time_spent = $2, notes = $3, current = $4 WHERE id = $5`,
		a.Activity, a.TimeSpent, a.Notes, a.Current, a.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// SetCurrent marks one activity as the responsible's active task, clearing
// the flag on any other activity they hold.
func (r *ActivityRepository) SetCurrent(ctx context.Context, id, responsible string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE activities SET current = FALSE WHERE responsible = $1 AND current = TRUE`,
		responsible,
	)
	if err != nil {
		return err
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE activities SET current = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var caseID *string
	err := row.Scan(&a.ID, &caseID, &a.Responsible, &a.Activity, &a.TimeSpent, &a.Notes, &a.Current, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}
	if caseID != nil {
		a.CaseID = *caseID
	}
	return &a, nil
}

func scanActivityRows(rows pgx.Rows) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
