package projects

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/realtime"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

// AddCollaborator grants a user access to the project. The user may be given
// by id, email or username. Only the creator may add collaborators.
func (s *Service) AddCollaborator(ctx context.Context, projectID, actorID int64, identifier string) (*project.Project, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperrors.BadRequest(msgCollaboratorRequired)
	}

	var (
		p             *project.Project
		actor, target *user.User
	)
	err := s.tx.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		p, err = s.projects.GetByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !p.IsCreator(actorID) {
			return apperrors.Forbidden(msgCreatorOnly)
		}

		target, err = s.resolveUser(ctx, tx, identifier)
		if err != nil {
			return err
		}
		if p.IsCreator(target.ID) {
			return apperrors.Conflict(msgCollaboratorIsCreator)
		}
		if p.IsCollaborator(target.ID) {
			return apperrors.Conflict(msgAlreadyCollaborator)
		}

		if err := s.projects.AddCollaborator(ctx, tx, projectID, target.ID); err != nil {
			return errFailedAddCollab(target.ID, err)
		}

		if actor, err = s.users.GetByID(ctx, tx, actorID); err != nil {
			return err
		}
		p, err = s.projects.GetByID(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CollaboratorAdded(p, actor, target)
	s.publisher.Publish(projectID, actorID, realtime.EventCollaboratorsChanged, p.Collaborators)

	return p, nil
}

// RemoveCollaborator revokes a collaborator's access. The creator may remove
// anyone and a collaborator may remove themselves.
func (s *Service) RemoveCollaborator(ctx context.Context, projectID, actorID, collaboratorID int64) (*project.Project, error) {
	var (
		p             *project.Project
		actor, target *user.User
	)
	err := s.tx.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		p, err = s.projects.GetByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !p.IsCreator(actorID) && actorID != collaboratorID {
			return apperrors.Forbidden(msgCreatorOnly)
		}
		if !p.IsCollaborator(collaboratorID) {
			return apperrors.NotFound(msgNotCollaborator)
		}

		if err := s.projects.RemoveCollaborator(ctx, tx, projectID, collaboratorID); err != nil {
			return err
		}

		if actor, err = s.users.GetByID(ctx, tx, actorID); err != nil {
			return err
		}
		if target, err = s.users.GetByID(ctx, tx, collaboratorID); err != nil {
			return err
		}
		p, err = s.projects.GetByID(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if actorID != collaboratorID {
		s.notifier.CollaboratorRemoved(p, actor, target)
	}
	s.publisher.Publish(projectID, actorID, realtime.EventCollaboratorsChanged, p.Collaborators)
	s.publisher.Disconnect(projectID, collaboratorID)

	return p, nil
}

func (s *Service) resolveUser(ctx context.Context, tx repository.Tx, identifier string) (*user.User, error) {
	var (
		u   *user.User
		err error
	)
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil {
		u, err = s.users.GetByID(ctx, tx, id)
	} else if strings.Contains(identifier, "@") {
		u, err = s.users.GetByEmail(ctx, tx, identifier)
	} else {
		u, err = s.users.GetByUsername(ctx, tx, identifier)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound(msgCollaboratorNotFound)
	}
	return u, err
}
