package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

type AttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

const selectAttachment = `SELECT id, case_id, filename, mime_type, size_bytes, storage_key, uploaded_by, uploaded, created_at FROM attachments`

func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attachments (id, case_id, filename, mime_type, size_bytes, storage_key, uploaded_by, uploaded, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CaseID, a.Filename, a.MimeType, a.SizeBytes, a.StorageKey,
		nullableString(a.UploadedBy), a.Uploaded, a.CreatedAt,
	)
	return err
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	return scanAttachment(r.pool.QueryRow(ctx, selectAttachment+` WHERE id = $1`, id))
}

func (r *AttachmentRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		selectAttachment+` WHERE case_id = $1 AND uploaded = TRUE ORDER BY created_at ASC`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// MarkUploaded confirms that the client finished writing the object to
// storage.
func (r *AttachmentRepository) MarkUploaded(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `UPDATE attachments SET uploaded = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var a domain.Attachment
	var uploadedBy *string
	err := row.Scan(&a.ID, &a.CaseID, &a.Filename, &a.MimeType, &a.SizeBytes,
		&a.StorageKey, &uploadedBy, &a.Uploaded, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, err
	}
	if uploadedBy != nil {
		a.UploadedBy = *uploadedBy
	}
	return &a, nil
}
