package handler

import (
	"encoding/json"
	"net/http"

	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/domain/user"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	users    UserRepository
	projects ProjectLister
}

func NewUserHandler(users UserRepository, projects ProjectLister) *UserHandler {
	return &UserHandler{users: users, projects: projects}
}

type OptionsRequest struct {
	PublishOptions json.RawMessage `json:"publishOptions"`
	FontOptions    json.RawMessage `json:"fontOptions"`
}

type OptionsResponse struct {
	PublishOptions json.RawMessage `json:"publishOptions"`
	FontOptions    json.RawMessage `json:"fontOptions"`
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetByID(c.Request().Context(), nil, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ListProjects(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	listings, err := h.projects.ListForUser(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("Failed to list projects for user %d: %v", userID, err)
		return err
	}

	return c.JSON(http.StatusOK, listings)
}

func (h *UserHandler) GetOptions(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetByID(c.Request().Context(), nil, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, optionsOf(u))
}

func (h *UserHandler) UpdateOptions(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}

	var req OptionsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if req.PublishOptions == nil && req.FontOptions == nil {
		return apperrors.MissingFields(fieldOptions)
	}
	if jsonObject(req.PublishOptions) != nil || jsonObject(req.FontOptions) != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidOptions)
	}

	u, err := h.users.UpdateOptions(c.Request().Context(), nil, userID, user.UpdateOptionsInput{
		PublishOptions: req.PublishOptions,
		FontOptions:    req.FontOptions,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, optionsOf(u))
}

func optionsOf(u *user.User) OptionsResponse {
	resp := OptionsResponse{PublishOptions: u.PublishOptions, FontOptions: u.FontOptions}
	if len(resp.PublishOptions) == 0 {
		resp.PublishOptions = json.RawMessage("null")
	}
	if len(resp.FontOptions) == 0 {
		resp.FontOptions = json.RawMessage("null")
	}
	return resp
}
