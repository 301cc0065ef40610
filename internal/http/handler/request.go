package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/LDK/javascriv-api/internal/domain/project"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20
	maxTreeBodyBytes   int64 = 10 << 20
)

// bindStrictJSON decodes a small JSON body, rejecting unknown fields and
// trailing data.
func bindStrictJSON(c echo.Context, dst interface{}) error {
	return decodeJSON(c, dst, maxStrictBodyBytes, true)
}

// bindJSON decodes a project body. Editor clients attach UI state to nodes,
// so unknown fields are ignored.
func bindJSON(c echo.Context, dst interface{}) error {
	return decodeJSON(c, dst, maxTreeBodyBytes, false)
}

func decodeJSON(c echo.Context, dst interface{}, limit int64, strict bool) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, limit)
	decoder := json.NewDecoder(body)
	if strict {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	return nil
}

// hasBody reports whether the request carries a body worth decoding.
func hasBody(c echo.Context) bool {
	return c.Request().ContentLength != 0 && c.Request().Body != nil && c.Request().Body != http.NoBody
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest(msgInvalidID)
	}
	return id, nil
}

// parseSettings accepts settings as an object or as a string holding an
// encoded object. Absent, null and empty values decode to nil.
func parseSettings(raw json.RawMessage) (project.Settings, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, apperrors.Validation(msgInvalidSettings)
		}
		if strings.TrimSpace(encoded) == "" {
			return nil, nil
		}
		raw = json.RawMessage(encoded)
	}

	var settings project.Settings
	if err := json.Unmarshal(raw, &settings); err != nil || settings == nil {
		return nil, apperrors.Validation(msgInvalidSettings)
	}
	return settings, nil
}

// userIdentifier turns a loose user reference (an id, a numeric string, a
// username, an email or an object with an id) into a lookup key.
func userIdentifier(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case '{':
		var obj struct {
			ID       *int64 `json:"id"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", err
		}
		if obj.ID != nil {
			return strconv.FormatInt(*obj.ID, 10), nil
		}
		return strings.TrimSpace(obj.Username), nil
	default:
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
		return strconv.FormatInt(id, 10), nil
	}
}

var errNotObject = errors.New("not a JSON object")

// jsonObject checks that raw, when present, is a JSON object or null.
func jsonObject(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errNotObject
	}
	return nil
}
