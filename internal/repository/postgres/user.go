package postgres

import (
	"context"

	"github.com/LDK/javascriv-api/internal/domain/user"
	"github.com/LDK/javascriv-api/internal/repository"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, publish_options, font_options, created_at`

func (r *UserRepository) Create(ctx context.Context, tx repository.Tx, input user.CreateUserInput) (*user.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.conn(tx).QueryRow(ctx, query, input.Username, input.Email, input.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == constraintUsersEmail {
				return nil, apperrors.Conflict(errEmailTaken)
			}
			return nil, apperrors.Conflict(errUsernameTaken)
		}
		return nil, errFailedCreateUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, tx repository.Tx, id int64) (*user.User, error) {
	return r.getOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, tx repository.Tx, username string) (*user.User, error) {
	return r.getOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, tx repository.Tx, email string) (*user.User, error) {
	return r.getOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *UserRepository) UpdateOptions(ctx context.Context, tx repository.Tx, id int64, input user.UpdateOptionsInput) (*user.User, error) {
	query := `
		UPDATE users
		SET publish_options = COALESCE($2, publish_options),
		    font_options = COALESCE($3, font_options)
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.conn(tx).QueryRow(ctx, query, id, nullableJSON(input.PublishOptions), nullableJSON(input.FontOptions)))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedUpdateUserOptions(err)
	}

	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, tx repository.Tx, query string, arg any) (*user.User, error) {
	u, err := scanUser(r.db.conn(tx).QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*user.User, error) {
	u := &user.User{}
	var publish, font []byte
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &publish, &font, &u.CreatedAt); err != nil {
		return nil, err
	}
	if len(publish) > 0 {
		u.PublishOptions = publish
	}
	if len(font) > 0 {
		u.FontOptions = font
	}
	return u, nil
}

// nullableJSON maps an empty document to SQL NULL so COALESCE keeps the
// stored value.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
