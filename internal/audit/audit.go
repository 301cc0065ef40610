package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// ResourceType represents the type of resource being acted upon
type ResourceType string

const (
	ResourceTypeProject      ResourceType = "project"
	ResourceTypeFile         ResourceType = "file"
	ResourceTypeCollaborator ResourceType = "collaborator"
	ResourceTypeUser         ResourceType = "user"
)

// Action represents the action being performed
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionSync      Action = "sync"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
	ActionAdd       Action = "add"
	ActionRemove    Action = "remove"
	ActionUpload    Action = "upload"
	ActionLogin     Action = "login"
	ActionRegister  Action = "register"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

const (
	asyncWriteTimeout = 2 * time.Second
	defaultQueryLimit = 100
	maxQueryLimit     = 500
)

// Event is one row of a project's activity history.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"eventType"`
	ActorID      *int64         `json:"actorId,omitempty"`
	ProjectID    *int64         `json:"projectId,omitempty"`
	ResourceType ResourceType   `json:"resourceType"`
	ResourceID   *int64         `json:"resourceId,omitempty"`
	Action       Action         `json:"action"`
	Status       Status         `json:"status"`
	IPAddress    string         `json:"-"`
	UserAgent    string         `json:"-"`
	RequestID    string         `json:"requestId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Entry is what a handler knows about an action it just performed.
type Entry struct {
	ProjectID    *int64
	ResourceType ResourceType
	ResourceID   *int64
	Action       Action
	Status       Status
	Metadata     map[string]any
	Err          error
}

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Logger writes activity events. Writes triggered from requests run in the
// background; Wait blocks until they have finished.
type Logger struct {
	db db
	wg sync.WaitGroup
}

func NewLogger(db db) *Logger {
	return &Logger{db: db}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(logger.SanitizeMap(event.Metadata)); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO activity_events (
			id, event_type, actor_id, project_id, resource_type, resource_id,
			action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := l.db.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.ActorID,
		event.ProjectID,
		event.ResourceType,
		event.ResourceID,
		event.Action,
		event.Status,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		metadataJSON,
		event.ErrorMessage,
		event.CreatedAt,
	)

	return err
}

// Record logs entry asynchronously with the request's actor and origin.
func (l *Logger) Record(c echo.Context, entry Entry) {
	event := newEvent(c, entry)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()

		if err := l.Log(ctx, event); err != nil {
			log.Printf("[audit] failed to record %s: %v", event.EventType, err)
		}
	}()
}

// Wait blocks until every pending background write has completed.
func (l *Logger) Wait() {
	l.wg.Wait()
}

func newEvent(c echo.Context, entry Entry) *Event {
	status := entry.Status
	if status == "" {
		status = StatusSuccess
		if entry.Err != nil {
			status = StatusFailure
		}
	}

	event := &Event{
		EventType:    string(entry.Action) + "_" + string(entry.ResourceType),
		ProjectID:    entry.ProjectID,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Action:       entry.Action,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Metadata:     entry.Metadata,
	}
	if entry.Err != nil {
		event.ErrorMessage = entry.Err.Error()
	}
	if userID, err := auth.GetUserID(c); err == nil {
		event.ActorID = &userID
	}

	return event
}

type QueryFilter struct {
	ProjectID    *int64
	ActorID      *int64
	ResourceType *ResourceType
	Action       *Action
	Status       *Status
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

func buildQuery(filter QueryFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`
		SELECT id, event_type, actor_id, project_id, resource_type, resource_id,
		       action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		FROM activity_events
		WHERE 1=1`)

	where := func(clause string, arg any) {
		args = append(args, arg)
		fmt.Fprintf(&b, " AND %s $%d", clause, len(args))
	}

	if filter.ProjectID != nil {
		where("project_id =", *filter.ProjectID)
	}
	if filter.ActorID != nil {
		where("actor_id =", *filter.ActorID)
	}
	if filter.ResourceType != nil {
		where("resource_type =", *filter.ResourceType)
	}
	if filter.Action != nil {
		where("action =", *filter.Action)
	}
	if filter.Status != nil {
		where("status =", *filter.Status)
	}
	if filter.Since != nil {
		where("created_at >=", *filter.Since)
	}
	if filter.Until != nil {
		where("created_at <=", *filter.Until)
	}

	b.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	return b.String(), args
}

// Query returns matching events, newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	query, args := buildQuery(filter)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		var (
			metadataJSON []byte
			ipAddress    *string
			userAgent    *string
			requestID    *string
			errorMessage *string
		)

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.ActorID,
			&event.ProjectID,
			&event.ResourceType,
			&event.ResourceID,
			&event.Action,
			&event.Status,
			&ipAddress,
			&userAgent,
			&requestID,
			&metadataJSON,
			&errorMessage,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		event.IPAddress = deref(ipAddress)
		event.UserAgent = deref(userAgent)
		event.RequestID = deref(requestID)
		event.ErrorMessage = deref(errorMessage)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
