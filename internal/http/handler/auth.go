package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/domain/user"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
	"github.com/LDK/javascriv-api/pkg/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenGenerator
	recorder ActivityRecorder
}

func NewAuthHandler(users UserRepository, hasher PasswordHasher, tokens TokenGenerator, recorder ActivityRecorder) *AuthHandler {
	return &AuthHandler{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorderOrNop(recorder),
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest identifies the user by username or email in Username.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validator.Username(req.Username); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		c.Logger().Errorf("Failed to hash password: %v", err)
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	u, err := h.users.Create(c.Request().Context(), nil, user.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return err
	}

	token, err := h.tokens.Generate(u.ID, u.Username)
	if err != nil {
		c.Logger().Errorf("Failed to generate token for user %d: %v", u.ID, err)
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	h.recorder.Record(c, audit.Entry{
		ResourceType: audit.ResourceTypeUser,
		ResourceID:   &u.ID,
		Action:       audit.ActionRegister,
	})

	return c.JSON(http.StatusCreated, AuthResponse{User: u, Token: token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" || req.Password == "" {
		h.hasher.BurnCompare(req.Password)
		return apperrors.InvalidCredentials()
	}

	ctx := c.Request().Context()
	var (
		u   *user.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = h.users.GetByEmail(ctx, nil, strings.ToLower(identifier))
	} else {
		u, err = h.users.GetByUsername(ctx, nil, identifier)
	}
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		// Equalise timing with the wrong-password path.
		h.hasher.BurnCompare(req.Password)
		return apperrors.InvalidCredentials()
	}

	if !h.hasher.Compare(u.PasswordHash, req.Password) {
		h.recorder.Record(c, audit.Entry{
			ResourceType: audit.ResourceTypeUser,
			ResourceID:   &u.ID,
			Action:       audit.ActionLogin,
			Status:       audit.StatusDenied,
		})
		return apperrors.InvalidCredentials()
	}

	token, err := h.tokens.Generate(u.ID, u.Username)
	if err != nil {
		c.Logger().Errorf("Failed to generate token for user %d: %v", u.ID, err)
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	h.recorder.Record(c, audit.Entry{
		ResourceType: audit.ResourceTypeUser,
		ResourceID:   &u.ID,
		Action:       audit.ActionLogin,
	})

	return c.JSON(http.StatusOK, AuthResponse{User: u, Token: token})
}
