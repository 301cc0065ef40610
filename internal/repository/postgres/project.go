package postgres

import (
	"context"
	"encoding/json"

	"github.com/LDK/javascriv-api/internal/domain/project"
	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectSelect = `
	SELECT p.id, p.title, p.settings, p.open_file_path, p.creator_id, u.username,
	       p.last_editor_id, p.last_edited, p.created_at
`

func (r *ProjectRepository) Create(ctx context.Context, tx repository.Tx, input project.CreateProjectInput) (*project.Project, error) {
	settings, err := encodeSettings(input.Settings)
	if err != nil {
		return nil, err
	}

	query := `
		WITH p AS (
			INSERT INTO projects (title, settings, open_file_path, creator_id, last_editor_id)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING *
		)` + projectSelect + `
		FROM p JOIN users u ON u.id = p.creator_id
	`

	p, err := scanProject(r.db.conn(tx).QueryRow(ctx, query, input.Title, settings, input.OpenFilePath, input.CreatorID))
	if err != nil {
		if isForeignKeyViolation(err) || isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedCreateProject(err)
	}
	p.Collaborators = []user.Summary{}

	return p, nil
}

// GetByID loads the project together with its creator and collaborators.
func (r *ProjectRepository) GetByID(ctx context.Context, tx repository.Tx, id int64) (*project.Project, error) {
	query := projectSelect + `
		FROM projects p JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`

	p, err := scanProject(r.db.conn(tx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, errFailedGetProject(err)
	}

	collaborators, err := r.listCollaborators(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	p.Collaborators = collaborators

	return p, nil
}

func (r *ProjectRepository) listCollaborators(ctx context.Context, tx repository.Tx, projectID int64) ([]user.Summary, error) {
	query := `
		SELECT u.id, u.username
		FROM project_collaborators pc
		JOIN users u ON u.id = pc.user_id
		WHERE pc.project_id = $1
		ORDER BY pc.added_at, u.id
	`

	rows, err := r.db.conn(tx).Query(ctx, query, projectID)
	if err != nil {
		return nil, errFailedListCollaborators(err)
	}
	defer rows.Close()

	collaborators := []user.Summary{}
	for rows.Next() {
		var s user.Summary
		if err := rows.Scan(&s.ID, &s.Username); err != nil {
			return nil, errFailedListCollaborators(err)
		}
		collaborators = append(collaborators, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListCollaborators(err)
	}

	return collaborators, nil
}

func (r *ProjectRepository) ListCreatedBy(ctx context.Context, tx repository.Tx, userID int64) ([]project.Listing, error) {
	query := `
		SELECT id, title FROM projects
		WHERE creator_id = $1
		ORDER BY last_edited DESC, id
	`
	return r.listings(ctx, tx, query, userID)
}

func (r *ProjectRepository) ListCollaborating(ctx context.Context, tx repository.Tx, userID int64) ([]project.Listing, error) {
	query := `
		SELECT p.id, p.title FROM projects p
		JOIN project_collaborators pc ON pc.project_id = p.id
		WHERE pc.user_id = $1
		ORDER BY p.last_edited DESC, p.id
	`
	return r.listings(ctx, tx, query, userID)
}

func (r *ProjectRepository) listings(ctx context.Context, tx repository.Tx, query string, userID int64) ([]project.Listing, error) {
	rows, err := r.db.conn(tx).Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListProjects(err)
	}
	defer rows.Close()

	listings := []project.Listing{}
	for rows.Next() {
		var l project.Listing
		if err := rows.Scan(&l.ID, &l.Title); err != nil {
			return nil, errFailedScanProject(err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListProjects(err)
	}

	return listings, nil
}

func (r *ProjectRepository) Update(ctx context.Context, tx repository.Tx, p *project.Project) error {
	settings, err := encodeSettings(p.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET title = $2, settings = $3, open_file_path = $4, last_edited = $5, last_editor_id = $6
		WHERE id = $1
	`

	result, err := r.db.conn(tx).Exec(ctx, query, p.ID, p.Title, settings, p.OpenFilePath, p.LastEdited, p.LastEditorID)
	if err != nil {
		return errFailedUpdateProject(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	result, err := r.db.conn(tx).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return errFailedDeleteProject(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) AddCollaborator(ctx context.Context, tx repository.Tx, projectID, userID int64) error {
	query := `INSERT INTO project_collaborators (project_id, user_id) VALUES ($1, $2)`

	if _, err := r.db.conn(tx).Exec(ctx, query, projectID, userID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errCollaboratorExists)
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound(errUnknownProjectOrUser)
		}
		return errFailedAddCollaborator(err)
	}

	return nil
}

func (r *ProjectRepository) RemoveCollaborator(ctx context.Context, tx repository.Tx, projectID, userID int64) error {
	query := `DELETE FROM project_collaborators WHERE project_id = $1 AND user_id = $2`

	result, err := r.db.conn(tx).Exec(ctx, query, projectID, userID)
	if err != nil {
		return errFailedRemoveCollaborator(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errCollaboratorNotFound)
	}

	return nil
}

func scanProject(row rowScanner) (*project.Project, error) {
	p := &project.Project{}
	var settings []byte

	if err := row.Scan(
		&p.ID,
		&p.Title,
		&settings,
		&p.OpenFilePath,
		&p.Creator.ID,
		&p.Creator.Username,
		&p.LastEditorID,
		&p.LastEdited,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Settings = project.Settings{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &p.Settings); err != nil {
			return nil, errFailedDecodeSettings(err)
		}
	}

	return p, nil
}

func encodeSettings(s project.Settings) ([]byte, error) {
	if s == nil {
		s = project.Settings{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errFailedEncodeSettings(err)
	}
	return b, nil
}
