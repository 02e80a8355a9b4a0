package domain

import (
	"fmt"
	"time"
)

// Attachment is a file stored in object storage and linked to a case.
// Upload happens directly against storage via presigned URLs; the record is
// confirmed once the client reports the upload complete.
type Attachment struct {
	ID         string
	CaseID     string
	Filename   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	UploadedBy string
	Uploaded   bool
	CreatedAt  time.Time
}

// ValidateAttachment validates an Attachment instance
func ValidateAttachment(a *Attachment) error {
	if a == nil {
		return fmt.Errorf("attachment cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("attachment ID is required")
	}

	if a.CaseID == "" {
		return fmt.Errorf("attachment CaseID is required")
	}

	if a.Filename == "" {
		return fmt.Errorf("attachment Filename is required")
	}

	if a.StorageKey == "" {
		return fmt.Errorf("attachment StorageKey is required")
	}

	return nil
}
