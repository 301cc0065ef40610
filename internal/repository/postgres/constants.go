package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	constraintUsersUsername = "users_username_key"
	constraintUsersEmail    = "users_email_key"

	errUserNotFound          = "user not found"
	errProjectNotFound       = "project not found"
	errFileNotFound          = "file not found"
	errEditingHeld           = "file is being edited by another user"
	errCollaboratorNotFound  = "collaborator not found"
	errUsernameTaken         = "username is already taken"
	errEmailTaken            = "email is already registered"
	errPathConflict          = "a file already exists at this path"
	errCollaboratorExists    = "user is already a collaborator"
	errUnknownProjectOrUser  = "project or user does not exist"
	errParentMissing         = "parent node does not exist"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedStartTransactionFmt     = "failed to start transaction: %w"
	errFailedCommitTransactionFmt    = "failed to commit transaction: %w"

	errFailedCreateUserFmt        = "failed to create user: %w"
	errFailedGetUserFmt           = "failed to get user: %w"
	errFailedUpdateUserOptionsFmt = "failed to update user options: %w"

	errFailedCreateProjectFmt      = "failed to create project: %w"
	errFailedGetProjectFmt         = "failed to get project: %w"
	errFailedListProjectsFmt       = "failed to list projects: %w"
	errFailedScanProjectFmt        = "failed to scan project: %w"
	errFailedUpdateProjectFmt      = "failed to update project: %w"
	errFailedDeleteProjectFmt      = "failed to delete project: %w"
	errFailedEncodeSettingsFmt     = "failed to encode project settings: %w"
	errFailedDecodeSettingsFmt     = "failed to decode project settings: %w"
	errFailedListCollaboratorsFmt  = "failed to list collaborators: %w"
	errFailedAddCollaboratorFmt    = "failed to add collaborator: %w"
	errFailedRemoveCollaboratorFmt = "failed to remove collaborator: %w"

	errFailedCreateFileFmt    = "failed to create file: %w"
	errFailedGetFileFmt       = "failed to get file: %w"
	errFailedListFilesFmt     = "failed to list files: %w"
	errFailedScanFileFmt      = "failed to scan file: %w"
	errFailedUpdateFileFmt    = "failed to update file: %w"
	errFailedDeleteFileFmt    = "failed to delete file: %w"
	errFailedSetEditingFmt    = "failed to set editing state: %w"
	errFailedSetAttachmentFmt = "failed to set attachment: %w"
)

var (
	errFailedAddCollaborator      = func(err error) error { return fmt.Errorf(errFailedAddCollaboratorFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateFile           = func(err error) error { return fmt.Errorf(errFailedCreateFileFmt, err) }
	errFailedCreateProject        = func(err error) error { return fmt.Errorf(errFailedCreateProjectFmt, err) }
	errFailedCreateUser           = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedDecodeSettings       = func(err error) error { return fmt.Errorf(errFailedDecodeSettingsFmt, err) }
	errFailedDeleteFile           = func(err error) error { return fmt.Errorf(errFailedDeleteFileFmt, err) }
	errFailedDeleteProject        = func(err error) error { return fmt.Errorf(errFailedDeleteProjectFmt, err) }
	errFailedEncodeSettings       = func(err error) error { return fmt.Errorf(errFailedEncodeSettingsFmt, err) }
	errFailedGetFile              = func(err error) error { return fmt.Errorf(errFailedGetFileFmt, err) }
	errFailedGetProject           = func(err error) error { return fmt.Errorf(errFailedGetProjectFmt, err) }
	errFailedGetUser              = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListCollaborators    = func(err error) error { return fmt.Errorf(errFailedListCollaboratorsFmt, err) }
	errFailedListFiles            = func(err error) error { return fmt.Errorf(errFailedListFilesFmt, err) }
	errFailedListProjects         = func(err error) error { return fmt.Errorf(errFailedListProjectsFmt, err) }
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedRemoveCollaborator   = func(err error) error { return fmt.Errorf(errFailedRemoveCollaboratorFmt, err) }
	errFailedScanFile             = func(err error) error { return fmt.Errorf(errFailedScanFileFmt, err) }
	errFailedScanProject          = func(err error) error { return fmt.Errorf(errFailedScanProjectFmt, err) }
	errFailedSetAttachment        = func(err error) error { return fmt.Errorf(errFailedSetAttachmentFmt, err) }
	errFailedSetEditing           = func(err error) error { return fmt.Errorf(errFailedSetEditingFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedUpdateFile           = func(err error) error { return fmt.Errorf(errFailedUpdateFileFmt, err) }
	errFailedUpdateProject        = func(err error) error { return fmt.Errorf(errFailedUpdateProjectFmt, err) }
	errFailedUpdateUserOptions    = func(err error) error { return fmt.Errorf(errFailedUpdateUserOptionsFmt, err) }
)
