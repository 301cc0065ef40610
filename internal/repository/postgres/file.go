package postgres

import (
	"context"
	"time"

	"github.com/LDK/javascriv-api/internal/domain/file"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

type FileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `
	id, project_id, parent_id, type, name, path, sub_type, content, attachment,
	creator_id, last_editor_id, editing_id, last_active, last_edited
`

// CreateFile inserts f and fills in its id.
func (r *FileRepository) CreateFile(ctx context.Context, tx repository.Tx, f *file.File) error {
	query := `
		INSERT INTO files (
			project_id, parent_id, type, name, path, sub_type, content, attachment,
			creator_id, last_editor_id, last_edited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.conn(tx).QueryRow(ctx, query,
		f.ProjectID, f.ParentID, f.Type, f.Name, f.Path, f.SubType, f.Content, f.Attachment,
		f.CreatorID, f.LastEditorID, f.LastEdited,
	).Scan(&f.ID)

	if err != nil {
		return mapFileWriteError(err, errFailedCreateFile)
	}

	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, tx repository.Tx, id int64) (*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.conn(tx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errFileNotFound)
		}
		return nil, errFailedGetFile(err)
	}

	return f, nil
}

// ListByProject returns every node of a project, shallow paths first.
func (r *FileRepository) ListByProject(ctx context.Context, tx repository.Tx, projectID int64) ([]*file.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = $1 ORDER BY path, id`

	rows, err := r.db.conn(tx).Query(ctx, query, projectID)
	if err != nil {
		return nil, errFailedListFiles(err)
	}
	defer rows.Close()

	files := []*file.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, errFailedScanFile(err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListFiles(err)
	}

	return files, nil
}

func (r *FileRepository) UpdateFile(ctx context.Context, tx repository.Tx, f *file.File) error {
	query := `
		UPDATE files
		SET project_id = $2, parent_id = $3, name = $4, path = $5, sub_type = $6,
		    content = $7, attachment = $8, last_editor_id = $9, last_edited = $10
		WHERE id = $1
	`

	result, err := r.db.conn(tx).Exec(ctx, query,
		f.ID, f.ProjectID, f.ParentID, f.Name, f.Path, f.SubType,
		f.Content, f.Attachment, f.LastEditorID, f.LastEdited,
	)
	if err != nil {
		return mapFileWriteError(err, errFailedUpdateFile)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errFileNotFound)
	}

	return nil
}

func (r *FileRepository) DeleteFile(ctx context.Context, tx repository.Tx, id int64) error {
	result, err := r.db.conn(tx).Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return errFailedDeleteFile(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errFileNotFound)
	}

	return nil
}

// SetEditing applies the guard in the UPDATE itself so concurrent claims
// cannot both succeed.
func (r *FileRepository) SetEditing(ctx context.Context, tx repository.Tx, id int64, editingID *int64, lastActive *time.Time, guard repository.EditingGuard) error {
	query := `
		UPDATE files SET editing_id = $2, last_active = $3
		WHERE id = $1
		AND (editing_id IS NULL OR editing_id = $4 OR last_active IS NULL OR last_active < $5)`

	conn := r.db.conn(tx)
	result, err := conn.Exec(ctx, query, id, editingID, lastActive, guard.Holder, guard.StaleBefore)
	if err != nil {
		return errFailedSetEditing(err)
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM files WHERE id = $1)`, id).Scan(&exists); err != nil {
		return errFailedSetEditing(err)
	}
	if !exists {
		return apperrors.NotFound(errFileNotFound)
	}
	return apperrors.Conflict(errEditingHeld)
}

func (r *FileRepository) SetAttachment(ctx context.Context, tx repository.Tx, id int64, key string) error {
	result, err := r.db.conn(tx).Exec(ctx, `UPDATE files SET attachment = $2 WHERE id = $1`, id, key)
	if err != nil {
		return errFailedSetAttachment(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errFileNotFound)
	}

	return nil
}

func mapFileWriteError(err error, wrap func(error) error) error {
	switch {
	case isUniqueViolation(err):
		return apperrors.Conflict(errPathConflict)
	case isForeignKeyViolation(err):
		return apperrors.Conflict(errParentMissing)
	default:
		return wrap(err)
	}
}

func scanFile(row rowScanner) (*file.File, error) {
	f := &file.File{}
	err := row.Scan(
		&f.ID,
		&f.ProjectID,
		&f.ParentID,
		&f.Type,
		&f.Name,
		&f.Path,
		&f.SubType,
		&f.Content,
		&f.Attachment,
		&f.CreatorID,
		&f.LastEditorID,
		&f.EditingID,
		&f.LastActive,
		&f.LastEdited,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}
