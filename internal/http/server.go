package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/LDK/javascriv-api/internal/audit"
	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/config"
	"github.com/LDK/javascriv-api/internal/http/handler"
	"github.com/LDK/javascriv-api/internal/http/middleware"
	"github.com/LDK/javascriv-api/internal/projects"
	"github.com/LDK/javascriv-api/internal/realtime"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"
)

type ServerDependencies struct {
	Config         *config.Config
	Users          handler.UserRepository
	Projects       *projects.Service
	Hub            *realtime.Hub
	JWTService     *auth.JWTService
	Hasher         *auth.PasswordHasher
	AuthMiddleware *auth.Middleware
	// AuditLogger is optional; without it activity is neither recorded nor served.
	AuditLogger *audit.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	cfg := deps.Config
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Request ID first so every log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	metrics := middleware.NewMetrics()
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: []string{
			stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPut,
			stdhttp.MethodPatch, stdhttp.MethodDelete, stdhttp.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, echo.HeaderXRequestID,
		},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.NewGlobalRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter(cfg.Server.AuthRateLimitRPS, cfg.Server.AuthRateLimitBurst)

	var (
		recorder handler.ActivityRecorder
		reader   handler.ActivityReader
	)
	if deps.AuditLogger != nil {
		recorder = deps.AuditLogger
		reader = deps.AuditLogger
	}

	authHandler := handler.NewAuthHandler(deps.Users, deps.Hasher, deps.JWTService, recorder)
	userHandler := handler.NewUserHandler(deps.Users, deps.Projects)
	projectHandler := handler.NewProjectHandler(deps.Projects, deps.Users, recorder)
	fileHandler := handler.NewFileHandler(deps.Projects, recorder)
	wsHandler := handler.NewWebSocketHandler(deps.Hub, deps.Projects, cfg.CORS.AllowedOrigins)

	e.POST("/user/register", authHandler.Register, strictRateLimiter.Middleware())
	e.POST("/user/login", authHandler.Login, strictRateLimiter.Middleware())
	e.GET("/health", healthCheck)
	e.GET("/metrics", metrics.Handler)

	e.GET("/ws/project/:id", wsHandler.Subscribe, deps.AuthMiddleware.RequireJWTOrQuery())

	api := e.Group("")
	api.Use(deps.AuthMiddleware.RequireJWT())

	api.GET("/user", userHandler.GetCurrentUser)
	api.GET("/user/projects", userHandler.ListProjects)
	api.GET("/user/options", userHandler.GetOptions)
	api.PATCH("/user/options", userHandler.UpdateOptions)

	api.POST("/project", projectHandler.CreateProject)
	api.GET("/project/:id", projectHandler.GetProject)
	api.PATCH("/project/:id", projectHandler.SyncProject)
	api.DELETE("/project/:id", projectHandler.DeleteProject)
	api.POST("/project/:id/duplicate", projectHandler.DuplicateProject)
	api.PATCH("/project/:id/collaborator", projectHandler.AddCollaborator)
	api.DELETE("/project/:id/collaborator/:collaboratorId", projectHandler.RemoveCollaborator)

	if reader != nil {
		activityHandler := handler.NewActivityHandler(deps.Projects, reader)
		api.GET("/project/:id/activity", activityHandler.ListProjectActivity)
	}

	api.PUT("/file/:id/editing", fileHandler.ClaimEditing)
	api.DELETE("/file/:id/editing", fileHandler.ReleaseEditing)
	api.POST("/file/:id/attachment", fileHandler.GetUploadURL)
	api.GET("/file/:id/attachment", fileHandler.GetDownloadURL)

	if cfg.Server.EnableProfiling {
		registerProfiling(api)
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Start blocks until the server stops. A stop caused by Shutdown returns nil.
func (s *Server) Start(address string) error {
	if err := s.echo.Start(address); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
