package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
)

// StorageClientInterface abstracts presigned object storage access.
type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
}

type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

// AttachmentRepositoryInterface defines the repository interface for attachment persistence
type AttachmentRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error)
	MarkUploaded(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AttachmentService handles case file attachments via presigned storage URLs
type AttachmentService struct {
	attachmentRepo AttachmentRepositoryInterface
	caseRepo       CaseRepositoryInterface
	storageClient  StorageClientInterface
	uuidGen        UUIDGenerator
}

func NewAttachmentService(attachmentRepo AttachmentRepositoryInterface, caseRepo CaseRepositoryInterface, storageClient StorageClientInterface) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		caseRepo:       caseRepo,
		storageClient:  storageClient,
		uuidGen:        &DefaultUUIDGenerator{},
	}
}

func NewAttachmentServiceWithUUIDGen(attachmentRepo AttachmentRepositoryInterface, caseRepo CaseRepositoryInterface, storageClient StorageClientInterface, uuidGen UUIDGenerator) *AttachmentService {
	s := NewAttachmentService(attachmentRepo, caseRepo, storageClient)
	s.uuidGen = uuidGen
	return s
}

type InitUploadInput struct {
	CaseID      string
	Filename    string
	ContentType string
	UploadedBy  string
}

type InitUploadResult struct {
	AttachmentID string
	StorageKey   string
	UploadURL    string
}

// InitUpload reserves an attachment record and returns a presigned URL the
// client uploads directly to.
func (s *AttachmentService) InitUpload(ctx context.Context, input InitUploadInput) (*InitUploadResult, error) {
	c, err := s.caseRepo.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}

	attachmentID := s.uuidGen.NewString()
	storageKey := buildStorageKey(c.ID, attachmentID, input.Filename)

	uploadURL, err := s.storageClient.GenerateUploadURL(ctx, storageKey, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	attachment := &domain.Attachment{
		ID:         attachmentID,
		CaseID:     c.ID,
		Filename:   input.Filename,
		MimeType:   input.ContentType,
		StorageKey: storageKey,
		UploadedBy: input.UploadedBy,
		Uploaded:   false,
		CreatedAt:  time.Now().UTC(),
	}

	if err := domain.ValidateAttachment(attachment); err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	return &InitUploadResult{
		AttachmentID: attachmentID,
		StorageKey:   storageKey,
		UploadURL:    uploadURL,
	}, nil
}

// CompleteUpload verifies the object landed in storage and confirms the
// attachment.
func (s *AttachmentService) CompleteUpload(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}

	meta, err := s.storageClient.HeadObject(ctx, attachment.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify uploaded file: %w", err)
	}
	attachment.SizeBytes = meta.ContentLength

	if err := s.attachmentRepo.MarkUploaded(ctx, attachmentID); err != nil {
		return nil, err
	}
	attachment.Uploaded = true
	return attachment, nil
}

// DownloadURL returns a presigned URL for a confirmed attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, attachmentID string) (string, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if !attachment.Uploaded {
		return "", domain.ErrAttachmentNotFound
	}
	return s.storageClient.GenerateDownloadURL(ctx, attachment.StorageKey)
}

func (s *AttachmentService) ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	return s.attachmentRepo.ListByCase(ctx, caseID)
}

// Delete removes the record and best-effort deletes the stored object.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID string) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return err
	}
	if err := s.storageClient.DeleteObject(ctx, attachment.StorageKey); err != nil {
		return fmt.Errorf("failed to delete stored object: %w", err)
	}
	return nil
}

func buildStorageKey(caseID, attachmentID, filename string) string {
	return fmt.Sprintf("cases/%s/%s%s", caseID, attachmentID, path.Ext(filename))
}
