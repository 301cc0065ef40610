package projects

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/filetree"
	"github.com/LDK/javascriv-api/internal/realtime"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
	"github.com/LDK/javascriv-api/pkg/validator"
)

type CreateInput struct {
	Title         string
	Settings      project.Settings
	OpenFilePath  string
	Files         []*file.Node
	CreatorID     int64
	Collaborators []int64
}

// Create stores a new project and its whole file tree in one transaction.
// The creator must be the acting user.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (*View, error) {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, fieldTitle)
	}
	if in.Files == nil {
		missing = append(missing, fieldFiles)
	}
	if in.CreatorID <= 0 {
		missing = append(missing, fieldCreator)
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFields(missing...)
	}
	if err := validator.ProjectTitle(in.Title); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validateTree(in.Files); err != nil {
		return nil, err
	}
	if in.Settings == nil {
		in.Settings = project.Settings{}
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := s.users.GetByID(ctx, tx, in.CreatorID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound(msgCreatorNotFound)
			}
			return err
		}
		if in.CreatorID != actorID {
			return apperrors.Forbidden(msgCreatorMismatch)
		}

		p, err := s.projects.Create(ctx, tx, project.CreateProjectInput{
			Title:        in.Title,
			Settings:     in.Settings,
			OpenFilePath: in.OpenFilePath,
			CreatorID:    in.CreatorID,
		})
		if err != nil {
			return err
		}

		for _, root := range in.Files {
			if root == nil {
				continue
			}
			if _, err := s.creator.SaveTree(ctx, tx, root, nil, p.ID, actorID); err != nil {
				return errFailedSaveTree(err)
			}
		}

		for _, id := range uniqueIDs(in.Collaborators) {
			if id == in.CreatorID {
				continue
			}
			if err := s.projects.AddCollaborator(ctx, tx, p.ID, id); err != nil {
				return errFailedAddCollab(id, err)
			}
		}

		view, err = s.load(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Get returns the project tree to its creator or a collaborator.
func (s *Service) Get(ctx context.Context, projectID, actorID int64) (*View, error) {
	view, err := s.load(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if !view.CanAccess(actorID) {
		return nil, apperrors.Forbidden(msgNotProjectMember)
	}
	return view, nil
}

// Authorize returns the project when the actor may access it.
func (s *Service) Authorize(ctx context.Context, projectID, actorID int64) (*project.Project, error) {
	p, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(actorID) {
		return nil, apperrors.Forbidden(msgNotProjectMember)
	}
	return p, nil
}

// Sync reconciles the stored tree with the client's tree. Authorization is
// checked inside the transaction before any write.
func (s *Service) Sync(ctx context.Context, projectID, actorID int64, in filetree.SyncInput) (*View, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.MissingFields(fieldTitle)
	}
	if err := validator.ProjectTitle(in.Title); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validateTree(in.Files); err != nil {
		return nil, err
	}

	var (
		view   *View
		result *filetree.SyncResult
	)
	err := s.tx.WithTx(ctx, func(tx repository.Tx) error {
		p, err := s.projects.GetByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !p.CanAccess(actorID) {
			return apperrors.Forbidden(msgNotProjectMember)
		}

		existing, err := s.files.ListByProject(ctx, tx, projectID)
		if err != nil {
			return errFailedLoadFiles(projectID, err)
		}

		result, err = s.reconciler.Reconcile(ctx, tx, p, existing, in, actorID)
		if err != nil {
			return errFailedReconcile(projectID, err)
		}

		view = &View{Project: result.Project, Files: filetree.BuildTree(result.Files)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(projectID, actorID, realtime.EventProjectUpdated, map[string]any{
		"created": nonNil(result.Created),
		"updated": nonNil(result.Updated),
		"deleted": nonNil(result.Deleted),
	})

	return view, nil
}

// ListForUser returns the projects the user created and those they collaborate on.
func (s *Service) ListForUser(ctx context.Context, userID int64) (*Listings, error) {
	created, err := s.projects.ListCreatedBy(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	collaborating, err := s.projects.ListCollaborating(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return &Listings{Created: nonNilListings(created), Collaborating: nonNilListings(collaborating)}, nil
}

// Delete removes a project with all of its nodes. Only the creator may do it.
func (s *Service) Delete(ctx context.Context, projectID, actorID int64) error {
	p, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return err
	}
	if !p.IsCreator(actorID) {
		return apperrors.Forbidden(msgCreatorOnly)
	}

	if err := s.projects.Delete(ctx, nil, projectID); err != nil {
		return err
	}

	if s.attachments != nil {
		if err := s.attachments.DeletePrefix(ctx, s.attachments.ProjectPrefix(projectID)); err != nil {
			log.Printf("[projects] failed to delete attachments of project %d: %v", projectID, err)
		}
	}

	s.publisher.Publish(projectID, actorID, realtime.EventProjectDeleted, nil)
	for _, c := range p.Collaborators {
		s.publisher.Disconnect(projectID, c.ID)
	}
	s.publisher.Disconnect(projectID, p.Creator.ID)

	return nil
}

// Duplicate copies a project's tree into a new project owned by the actor.
// Collaborators are not copied.
func (s *Service) Duplicate(ctx context.Context, projectID, actorID int64, title string) (*View, error) {
	title = strings.TrimSpace(title)
	if title != "" {
		if err := validator.ProjectTitle(title); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx repository.Tx) error {
		src, err := s.projects.GetByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !src.CanAccess(actorID) {
			return apperrors.Forbidden(msgNotProjectMember)
		}

		files, err := s.files.ListByProject(ctx, tx, projectID)
		if err != nil {
			return errFailedLoadFiles(projectID, err)
		}

		if title == "" {
			title = truncateTitle(fmt.Sprintf(duplicateTitleFmt, src.Title))
		}
		dst, err := s.projects.Create(ctx, tx, project.CreateProjectInput{
			Title:        title,
			Settings:     src.Settings,
			OpenFilePath: src.OpenFilePath,
			CreatorID:    actorID,
		})
		if err != nil {
			return err
		}

		for _, root := range filetree.BuildTree(files) {
			if _, err := s.creator.DuplicateTree(ctx, tx, root, nil, dst.ID, actorID); err != nil {
				return errFailedSaveTree(err)
			}
		}

		view, err = s.load(ctx, tx, dst.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

func (s *Service) load(ctx context.Context, tx repository.Tx, projectID int64) (*View, error) {
	p, err := s.projects.GetByID(ctx, tx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, errFailedLoadProject(projectID, err)
	}

	files, err := s.files.ListByProject(ctx, tx, projectID)
	if err != nil {
		return nil, errFailedLoadFiles(projectID, err)
	}

	return &View{Project: p, Files: filetree.BuildTree(files)}, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func truncateTitle(title string) string {
	const maxLen = 255
	if len(title) <= maxLen {
		return title
	}
	cut := 0
	for i := range title {
		if i > maxLen {
			break
		}
		cut = i
	}
	return title[:cut]
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func nonNilListings(l []project.Listing) []project.Listing {
	if l == nil {
		return []project.Listing{}
	}
	return l
}
