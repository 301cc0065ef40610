package handler

import (
	"net/http"
	"strings"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

type FileHandler struct {
	files    FileService
	recorder ActivityRecorder
}

func NewFileHandler(files FileService, recorder ActivityRecorder) *FileHandler {
	return &FileHandler{files: files, recorder: recorderOrNop(recorder)}
}

type AttachmentUploadRequest struct {
	ContentType string `json:"contentType"`
}

func (h *FileHandler) ClaimEditing(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	f, err := h.files.ClaimEditing(c.Request().Context(), fileID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, f)
}

func (h *FileHandler) ReleaseEditing(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	f, err := h.files.ReleaseEditing(c.Request().Context(), fileID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, f)
}

func (h *FileHandler) GetUploadURL(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req AttachmentUploadRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.ContentType == "" {
		return apperrors.MissingFields(fieldContentType)
	}

	url, err := h.files.AttachmentUploadURL(c.Request().Context(), fileID, userID, req.ContentType)
	if err != nil {
		return err
	}

	h.recorder.Record(c, audit.Entry{
		ResourceType: audit.ResourceTypeFile,
		ResourceID:   &fileID,
		Action:       audit.ActionUpload,
		Metadata:     map[string]any{fieldContentType: req.ContentType},
	})

	return c.JSON(http.StatusOK, url)
}

func (h *FileHandler) GetDownloadURL(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	url, err := h.files.AttachmentDownloadURL(c.Request().Context(), fileID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, url)
}
