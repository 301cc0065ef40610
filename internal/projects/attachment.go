package projects

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/LDK/javascriv-api/pkg/errors"
	"github.com/LDK/javascriv-api/pkg/validator"
)

type PresignedURL struct {
	URL       string    `json:"url"`
	Key       string    `json:"key,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AttachmentUploadURL issues a presigned PUT for an image node and records
// the new object key on the node. The previous object is removed.
func (s *Service) AttachmentUploadURL(ctx context.Context, fileID, actorID int64, contentType string) (*PresignedURL, error) {
	if s.attachments == nil {
		return nil, apperrors.BadRequest(msgAttachmentsDisabled)
	}
	if err := validator.ImageContentType(contentType); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	f, err := s.authorizeFile(ctx, fileID, actorID)
	if err != nil {
		return nil, err
	}
	if !f.IsImage() {
		return nil, apperrors.BadRequest(msgAttachmentImageOnly)
	}

	key := s.attachments.AttachmentKey(f.ProjectID, f.ID, uuid.NewString())
	url, expiresAt, err := s.attachments.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, errFailedPresign(err)
	}
	if err := s.files.SetAttachment(ctx, nil, f.ID, key); err != nil {
		return nil, errFailedRecordAttach(err)
	}

	if f.Attachment != nil && *f.Attachment != "" && *f.Attachment != key {
		if err := s.attachments.DeleteObject(ctx, *f.Attachment); err != nil {
			log.Printf("[projects] failed to delete replaced attachment %s: %v", *f.Attachment, err)
		}
	}

	return &PresignedURL{URL: url, Key: key, ExpiresAt: expiresAt}, nil
}

// AttachmentDownloadURL issues a presigned GET for the node's attachment.
func (s *Service) AttachmentDownloadURL(ctx context.Context, fileID, actorID int64) (*PresignedURL, error) {
	if s.attachments == nil {
		return nil, apperrors.BadRequest(msgAttachmentsDisabled)
	}

	f, err := s.authorizeFile(ctx, fileID, actorID)
	if err != nil {
		return nil, err
	}
	if f.Attachment == nil || *f.Attachment == "" {
		return nil, apperrors.NotFound(msgAttachmentMissing)
	}

	url, expiresAt, err := s.attachments.PresignDownload(ctx, *f.Attachment)
	if err != nil {
		return nil, errFailedPresign(err)
	}
	return &PresignedURL{URL: url, ExpiresAt: expiresAt}, nil
}
