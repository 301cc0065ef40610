package projects

import (
	"context"
	"errors"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/realtime"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

type editingPayload struct {
	FileID     int64      `json:"fileId"`
	Path       string     `json:"path"`
	Editing    *int64     `json:"editing"`
	LastActive *time.Time `json:"lastActive"`
}

// ClaimEditing marks the actor as the file's editor. A claim held by someone
// else is honoured until it has been idle for the presence timeout.
func (s *Service) ClaimEditing(ctx context.Context, fileID, actorID int64) (*file.File, error) {
	f, err := s.authorizeFile(ctx, fileID, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if f.EditingID != nil && *f.EditingID != actorID && !s.stale(f) {
		return nil, apperrors.Conflict(msgFileEditedByOther)
	}

	if err := s.files.SetEditing(ctx, nil, f.ID, &actorID, &now, s.guard(actorID, now)); err != nil {
		return nil, presenceError(err)
	}
	f.EditingID = &actorID
	f.LastActive = &now

	s.publisher.Publish(f.ProjectID, actorID, realtime.EventFileEditing, editingPayload{
		FileID: f.ID, Path: f.Path, Editing: f.EditingID, LastActive: f.LastActive,
	})
	return f, nil
}

// ReleaseEditing clears the actor's claim. Claims held by others are only
// cleared once stale.
func (s *Service) ReleaseEditing(ctx context.Context, fileID, actorID int64) (*file.File, error) {
	f, err := s.authorizeFile(ctx, fileID, actorID)
	if err != nil {
		return nil, err
	}
	if f.EditingID == nil {
		return f, nil
	}
	if *f.EditingID != actorID && !s.stale(f) {
		return nil, apperrors.Conflict(msgFileEditedByOther)
	}

	if err := s.files.SetEditing(ctx, nil, f.ID, nil, nil, s.guard(actorID, s.now())); err != nil {
		return nil, presenceError(err)
	}
	f.EditingID = nil
	f.LastActive = nil

	s.publisher.Publish(f.ProjectID, actorID, realtime.EventFileEditing, editingPayload{
		FileID: f.ID, Path: f.Path,
	})
	return f, nil
}

func (s *Service) stale(f *file.File) bool {
	return f.LastActive == nil || s.now().Sub(*f.LastActive) > s.presenceTTL
}

// guard re-checks the claim at write time, since another user may have
// claimed the file after it was read.
func (s *Service) guard(actorID int64, now time.Time) repository.EditingGuard {
	return repository.EditingGuard{Holder: actorID, StaleBefore: now.Add(-s.presenceTTL)}
}

func presenceError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		return apperrors.Conflict(msgFileEditedByOther)
	case errors.Is(err, apperrors.ErrNotFound):
		return err
	default:
		return errFailedUpdatePresence(err)
	}
}

func (s *Service) authorizeFile(ctx context.Context, fileID, actorID int64) (*file.File, error) {
	f, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Authorize(ctx, f.ProjectID, actorID); err != nil {
		return nil, err
	}
	return f, nil
}
