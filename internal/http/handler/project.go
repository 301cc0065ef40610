package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/filetree"
	"github.com/LDK/javascriv-api/internal/projects"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

type ProjectHandler struct {
	projects ProjectService
	users    UserLookup
	recorder ActivityRecorder
}

func NewProjectHandler(projects ProjectService, users UserLookup, recorder ActivityRecorder) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		users:    users,
		recorder: recorderOrNop(recorder),
	}
}

type CreateProjectRequest struct {
	Title         string          `json:"title"`
	Settings      json.RawMessage `json:"settings"`
	OpenFilePath  string          `json:"openFilePath"`
	Files         []*file.Node    `json:"files"`
	Creator       json.RawMessage `json:"creator"`
	Collaborators []file.Ref      `json:"collaborators"`
}

type SyncProjectRequest struct {
	Title        string          `json:"title"`
	Settings     json.RawMessage `json:"settings"`
	OpenFilePath string          `json:"openFilePath"`
	Files        []*file.Node    `json:"files"`
}

type DuplicateProjectRequest struct {
	Title string `json:"title"`
}

type CollaboratorRequest struct {
	Collaborator json.RawMessage `json:"collaborator"`
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	settings, err := parseSettings(req.Settings)
	if err != nil {
		return err
	}

	creatorID, err := h.resolveCreator(c, req.Creator)
	if err != nil {
		return err
	}

	collaborators := make([]int64, 0, len(req.Collaborators))
	for i := range req.Collaborators {
		if id, ok := req.Collaborators[i].Value(); ok {
			collaborators = append(collaborators, id)
		}
	}

	view, err := h.projects.Create(c.Request().Context(), userID, projects.CreateInput{
		Title:         strings.TrimSpace(req.Title),
		Settings:      settings,
		OpenFilePath:  req.OpenFilePath,
		Files:         req.Files,
		CreatorID:     creatorID,
		Collaborators: collaborators,
	})
	if err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ProjectID:    &view.ID,
		ResourceType: audit.ResourceTypeProject,
		ResourceID:   &view.ID,
		Action:       audit.ActionCreate,
	})

	return c.JSON(http.StatusCreated, view)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	view, err := h.projects.Get(c.Request().Context(), projectID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) SyncProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req SyncProjectRequest
	if err := bindJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if req.Files == nil {
		return apperrors.MissingFields("files")
	}

	settings, err := parseSettings(req.Settings)
	if err != nil {
		return err
	}

	view, err := h.projects.Sync(c.Request().Context(), projectID, userID, filetree.SyncInput{
		Title:        strings.TrimSpace(req.Title),
		Settings:     settings,
		OpenFilePath: req.OpenFilePath,
		Files:        req.Files,
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	h.recorder.Record(c, audit.Entry{
		ProjectID:    &projectID,
		ResourceType: audit.ResourceTypeProject,
		ResourceID:   &projectID,
		Action:       audit.ActionSync,
		Status:       statusOf(err),
		Err:          err,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	if err := h.projects.Delete(c.Request().Context(), projectID, userID); err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ResourceType: audit.ResourceTypeProject,
		ResourceID:   &projectID,
		Action:       audit.ActionDelete,
	})

	return respondMessage(c, http.StatusOK, msgProjectDeleted)
}

func (h *ProjectHandler) DuplicateProject(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req DuplicateProjectRequest
	if hasBody(c) {
		if err := bindStrictJSON(c, &req); err != nil {
			return handleHTTPError(c, err)
		}
	}

	view, err := h.projects.Duplicate(c.Request().Context(), projectID, userID, req.Title)
	if err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ProjectID:    &view.ID,
		ResourceType: audit.ResourceTypeProject,
		ResourceID:   &view.ID,
		Action:       audit.ActionDuplicate,
		Metadata:     map[string]any{"source": projectID},
	})

	return c.JSON(http.StatusCreated, view)
}

func (h *ProjectHandler) AddCollaborator(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req CollaboratorRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	identifier, err := userIdentifier(req.Collaborator)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidCollaborator)
	}
	if identifier == "" {
		return apperrors.MissingFields(fieldCollaborator)
	}

	p, err := h.projects.AddCollaborator(c.Request().Context(), projectID, userID, identifier)
	if err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ProjectID:    &projectID,
		ResourceType: audit.ResourceTypeCollaborator,
		Action:       audit.ActionAdd,
		Metadata:     map[string]any{fieldCollaborator: identifier},
	})

	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) RemoveCollaborator(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}
	collaboratorID, err := pathID(c, paramCollaboratorID)
	if err != nil {
		return err
	}

	p, err := h.projects.RemoveCollaborator(c.Request().Context(), projectID, userID, collaboratorID)
	if err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ProjectID:    &projectID,
		ResourceType: audit.ResourceTypeCollaborator,
		ResourceID:   &collaboratorID,
		Action:       audit.ActionRemove,
	})

	return c.JSON(http.StatusOK, p)
}

// resolveCreator accepts the creator as an id or a username.
func (h *ProjectHandler) resolveCreator(c echo.Context, raw json.RawMessage) (int64, error) {
	identifier, err := userIdentifier(raw)
	if err != nil {
		return 0, apperrors.Validation(msgInvalidCreator)
	}
	if identifier == "" {
		return 0, nil
	}
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return id, nil
	}

	u, err := h.users.GetByUsername(c.Request().Context(), nil, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.NotFound(msgCreatorNotFound)
		}
		return 0, err
	}
	return u.ID, nil
}

func statusOf(err error) audit.Status {
	switch {
	case err == nil:
		return audit.StatusSuccess
	case errors.Is(err, apperrors.ErrForbidden):
		return audit.StatusDenied
	default:
		return audit.StatusFailure
	}
}
