package handler

import (
	"net/http"
	"strconv"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"

	"github.com/labstack/echo/v4"
)

type ActivityHandler struct {
	projects ProjectAuthorizer
	activity ActivityReader
}

func NewActivityHandler(projects ProjectAuthorizer, activity ActivityReader) *ActivityHandler {
	return &ActivityHandler{projects: projects, activity: activity}
}

// ListProjectActivity returns a project's recent activity, newest first.
func (h *ActivityHandler) ListProjectActivity(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	limit, errLimit := queryInt(c, queryLimit)
	offset, errOffset := queryInt(c, queryOffset)
	if errLimit != nil || errOffset != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidPagination)
	}

	if _, err := h.projects.Authorize(c.Request().Context(), projectID, userID); err != nil {
		return err
	}

	filter := audit.QueryFilter{
		ProjectID: &projectID,
		Limit:     limit,
		Offset:    offset,
	}
	if action := c.QueryParam(queryAction); action != "" {
		a := audit.Action(action)
		filter.Action = &a
	}

	events, err := h.activity.Query(c.Request().Context(), filter)
	if err != nil {
		c.Logger().Errorf("Failed to query activity for project %d: %v", projectID, err)
		return err
	}
	if events == nil {
		events = []*audit.Event{}
	}

	return c.JSON(http.StatusOK, events)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
