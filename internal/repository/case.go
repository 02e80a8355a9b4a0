package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/pagination"
	"github.com/safe2go/helpdesk/internal/service"
)

type CaseRepository struct {
	db dbtx
}

func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: pool}
}

func NewCaseRepositoryWithTx(tx pgx.Tx) *CaseRepository {
	return &CaseRepository{db: tx}
}

const selectCase = `SELECT id, jira_id, title, description, responsible, creator_id, creator_name,
	status, priority, insurer, category, keywords, opened_at, closed_at, created_at, updated_at,
	solution, solution_title, solved_by, solved_by_id, solved_at FROM cases`

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cases (id, jira_id, title, description, responsible, creator_id, creator_name,
		    status, priority, insurer, category, keywords, opened_at, closed_at, created_at, updated_at,
		    solution, solution_title, solved_by, solved_by_id, solved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		c.ID, nullableString(c.JiraID), c.Title, c.Description, nullableString(c.Responsible),
		nullableString(c.CreatorID), nullableString(c.CreatorName), c.Status, c.Priority,
		nullableString(c.Insurer), nullableString(c.Category), c.Keywords,
		c.OpenedAt, c.ClosedAt, c.CreatedAt, c.UpdatedAt,
		nullableString(c.Solution), nullableString(c.SolutionTitle),
		nullableString(c.SolvedBy), nullableString(c.SolvedByID), c.SolvedAt,
	)
	return err
}

// UpsertByJiraID inserts a case keyed by its tracker id, or updates the
// mutable fields of the existing row on conflict. The stored row is returned
// along with whether it was newly created. Identity and creation timestamps
// of an existing row are never touched.
func (r *CaseRepository) UpsertByJiraID(ctx context.Context, c *domain.Case) (*domain.Case, bool, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO cases (id, jira_id, title, description, responsible, creator_id, creator_name,
		    status, priority, insurer, category, keywords, opened_at, closed_at, created_at, updated_at,
		    solution, solution_title, solved_by, solved_by_id, solved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		 ON CONFLICT (jira_id) DO UPDATE SET
		    title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    responsible = EXCLUDED.responsible,
		    status = EXCLUDED.status,
		    insurer = EXCLUDED.insurer,
		    category = EXCLUDED.category,
		    keywords = EXCLUDED.keywords,
		    closed_at = EXCLUDED.closed_at,
		    updated_at = EXCLUDED.updated_at
		 RETURNING id, jira_id, title, description, responsible, creator_id, creator_name,
		    status, priority, insurer, category, keywords, opened_at, closed_at, created_at, updated_at,
		    solution, solution_title, solved_by, solved_by_id, solved_at,
		    (xmax = 0) AS inserted`,
		c.ID, nullableString(c.JiraID), c.Title, c.Description, nullableString(c.Responsible),
		nullableString(c.CreatorID), nullableString(c.CreatorName), c.Status, c.Priority,
		nullableString(c.Insurer), nullableString(c.Category), c.Keywords,
		c.OpenedAt, c.ClosedAt, c.CreatedAt, c.UpdatedAt,
		nullableString(c.Solution), nullableString(c.SolutionTitle),
		nullableString(c.SolvedBy), nullableString(c.SolvedByID), c.SolvedAt,
	)

	var stored domain.Case
	var jiraID, responsible, creatorID, creatorName, insurer, category *string
	var solution, solutionTitle, solvedBy, solvedByID *string
	var inserted bool
	err := row.Scan(&stored.ID, &jiraID, &stored.Title, &stored.Description, &responsible, &creatorID, &creatorName,
		&stored.Status, &stored.Priority, &insurer, &category, &stored.Keywords, &stored.OpenedAt, &stored.ClosedAt,
		&stored.CreatedAt, &stored.UpdatedAt, &solution, &solutionTitle, &solvedBy, &solvedByID, &stored.SolvedAt, &inserted)
	if err != nil {
		return nil, false, err
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&stored.JiraID, jiraID)
	assign(&stored.Responsible, responsible)
	assign(&stored.CreatorID, creatorID)
	assign(&stored.CreatorName, creatorName)
	assign(&stored.Insurer, insurer)
	assign(&stored.Category, category)
	assign(&stored.Solution, solution)
	assign(&stored.SolutionTitle, solutionTitle)
	assign(&stored.SolvedBy, solvedBy)
	assign(&stored.SolvedByID, solvedByID)
	return &stored, inserted, nil
}

// NextSequence reserves the next value of the case numbering sequence, used
// to mint tracker keys for cases opened in the helpdesk itself.
func (r *CaseRepository) NextSequence(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT nextval('case_number_seq')`).Scan(&n)
	return n, err
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	return scanCase(r.db.QueryRow(ctx, selectCase+` WHERE id = $1`, id))
}

func (r *CaseRepository) GetByJiraID(ctx context.Context, jiraID string) (*domain.Case, error) {
	return scanCase(r.db.QueryRow(ctx, selectCase+` WHERE jira_id = $1`, jiraID))
}

func (r *CaseRepository) Update(ctx context.Context, c *domain.Case) error {
	c.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE cases SET jira_id = $1, title = $2, description = $3, responsible = $4,
		    status = $5, priority = $6, insurer = $7, category = $8, keywords = $9,
		    closed_at = $10, updated_at = $11, solution = $12, solution_title = $13,
		    solved_by = $14, solved_by_id = $15, solved_at = $16
		 WHERE id = $17`,
		nullableString(c.JiraID), c.Title, c.Description, nullableString(c.Responsible),
		c.Status, c.Priority, nullableString(c.Insurer), nullableString(c.Category), c.Keywords,
		c.ClosedAt, c.UpdatedAt, nullableString(c.Solution), nullableString(c.SolutionTitle),
		nullableString(c.SolvedBy), nullableString(c.SolvedByID), c.SolvedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

// buildCaseWhere renders the optional filters into a WHERE clause plus its
// positional arguments.
func buildCaseWhere(filters service.CaseFilters) (string, []any) {
	where := ""
	var args []any
	appendClause := func(clause string, value any) {
		args = append(args, value)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}
	appendFilter := func(column, value string) {
		if value != "" {
			appendClause(column+" = $%d", value)
		}
	}
	appendFilter("status", string(filters.Status))
	appendFilter("insurer", filters.Insurer)
	appendFilter("category", filters.Category)
	appendFilter("creator_id", filters.CreatorID)
	appendFilter("responsible", filters.Responsible)
	if filters.Since != nil {
		appendClause("created_at >= $%d", *filters.Since)
	}
	return where, args
}

// List returns a page of cases matching the filters, newest first.
func (r *CaseRepository) List(ctx context.Context, filters service.CaseFilters, page pagination.Page) (*service.CasePage, error) {
	page = page.Normalize()

	where, args := buildCaseWhere(filters)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cases`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := selectCase + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanCaseRows(rows)
	if err != nil {
		return nil, err
	}

	return &service.CasePage{
		Items: items,
		Meta:  pagination.NewMeta(page, total),
	}, nil
}

// ListResolvedWithSolution returns the pool of cases eligible as suggested
// resolutions: resolved, with a non-empty solution, most recently solved
// first.
func (r *CaseRepository) ListResolvedWithSolution(ctx context.Context) ([]*domain.Case, error) {
	rows, err := r.db.Query(ctx,
		selectCase+` WHERE status = $1 AND solution IS NOT NULL AND btrim(solution) <> ''
		 ORDER BY solved_at DESC NULLS LAST, created_at DESC`,
		domain.CaseStatusResolved,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCaseRows(rows)
}

func (r *CaseRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Case, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.Query(ctx, selectCase+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCaseRows(rows)
}

func (r *CaseRepository) CountByStatus(ctx context.Context, filters service.CaseFilters) (map[domain.CaseStatus]int, error) {
	where, args := buildCaseWhere(filters)
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM cases`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.CaseStatus]int)
	for rows.Next() {
		var status domain.CaseStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *CaseRepository) CountByCategory(ctx context.Context, filters service.CaseFilters) (map[string]int, error) {
	where, args := buildCaseWhere(filters)
	return r.countGrouped(ctx, `SELECT COALESCE(category, ''), COUNT(*) FROM cases`+where+` GROUP BY category`, args...)
}

func (r *CaseRepository) CountByInsurer(ctx context.Context, filters service.CaseFilters) (map[string]int, error) {
	where, args := buildCaseWhere(filters)
	return r.countGrouped(ctx, `SELECT COALESCE(insurer, ''), COUNT(*) FROM cases`+where+` GROUP BY insurer`, args...)
}

// CountCreatedByDay buckets case creation counts per calendar day over the
// given range, optionally restricted to one status.
func (r *CaseRepository) CountCreatedByDay(ctx context.Context, from, to time.Time, status domain.CaseStatus) ([]service.DayCount, error) {
	query := `SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
		 FROM cases WHERE created_at >= $1 AND created_at < $2`
	args := []any{from, to}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` GROUP BY day ORDER BY day ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []service.DayCount
	for rows.Next() {
		var dc service.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

func (r *CaseRepository) countGrouped(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func scanCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	var jiraID, responsible, creatorID, creatorName, insurer, category *string
	var solution, solutionTitle, solvedBy, solvedByID *string
	err := row.Scan(&c.ID, &jiraID, &c.Title, &c.Description, &responsible, &creatorID, &creatorName,
		&c.Status, &c.Priority, &insurer, &category, &c.Keywords, &c.OpenedAt, &c.ClosedAt,
		&c.CreatedAt, &c.UpdatedAt, &solution, &solutionTitle, &solvedBy, &solvedByID, &c.SolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&c.JiraID, jiraID)
	assign(&c.Responsible, responsible)
	assign(&c.CreatorID, creatorID)
	assign(&c.CreatorName, creatorName)
	assign(&c.Insurer, insurer)
	assign(&c.Category, category)
	assign(&c.Solution, solution)
	assign(&c.SolutionTitle, solutionTitle)
	assign(&c.SolvedBy, solvedBy)
	assign(&c.SolvedByID, solvedByID)
	return &c, nil
}

func scanCaseRows(rows pgx.Rows) ([]*domain.Case, error) {
	var cases []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
