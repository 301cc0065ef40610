package projects

import (
	"fmt"
	"time"
)

const (
	defaultPresenceTimeout = 2 * time.Minute
	maxTreeDepth           = 64
	maxTreeNodes           = 10000
	duplicateTitleFmt      = "Copy of %s"

	fieldTitle   = "title"
	fieldFiles   = "files"
	fieldCreator = "creator"
)

const (
	msgNotProjectMember      = "you are not a member of this project"
	msgCreatorOnly           = "only the project creator can do this"
	msgCreatorMismatch       = "creator must be the authenticated user"
	msgCreatorNotFound       = "creator not found"
	msgCollaboratorNotFound  = "user not found"
	msgCollaboratorIsCreator = "the creator is already a member of the project"
	msgAlreadyCollaborator   = "user is already a collaborator"
	msgNotCollaborator       = "user is not a collaborator on this project"
	msgCollaboratorRequired  = "collaborator is required"
	msgFileEditedByOther     = "file is being edited by another user"
	msgAttachmentsDisabled   = "attachments are not enabled"
	msgAttachmentImageOnly   = "attachments are only supported on image files"
	msgAttachmentMissing     = "file has no attachment"
	msgDuplicatePathFmt      = "duplicate path %q"
	msgTreeTooDeepFmt        = "file tree exceeds maximum depth of %d"
	msgTreeTooLargeFmt       = "file tree exceeds maximum of %d nodes"
	msgInvalidNodeTypeFmt    = "node %q has invalid type %q"
	msgInvalidNodeSubTypeFmt = "node %q has invalid subType %q"
	msgInvalidNodeFmt        = "node %q: %v"
)

const (
	errFailedLoadProjectFmt    = "failed to load project %d: %w"
	errFailedLoadFilesFmt      = "failed to load files of project %d: %w"
	errFailedSaveTreeFmt       = "failed to save file tree: %w"
	errFailedAddCollabFmt      = "failed to add collaborator %d: %w"
	errFailedReconcileFmt      = "failed to reconcile project %d: %w"
	errFailedPresignFmt        = "failed to presign attachment URL: %w"
	errFailedRecordAttachFmt   = "failed to record attachment: %w"
	errFailedUpdatePresenceFmt = "failed to update editing state: %w"
)

var (
	errFailedLoadProject    = func(id int64, err error) error { return fmt.Errorf(errFailedLoadProjectFmt, id, err) }
	errFailedLoadFiles      = func(id int64, err error) error { return fmt.Errorf(errFailedLoadFilesFmt, id, err) }
	errFailedSaveTree       = func(err error) error { return fmt.Errorf(errFailedSaveTreeFmt, err) }
	errFailedAddCollab      = func(id int64, err error) error { return fmt.Errorf(errFailedAddCollabFmt, id, err) }
	errFailedReconcile      = func(id int64, err error) error { return fmt.Errorf(errFailedReconcileFmt, id, err) }
	errFailedPresign        = func(err error) error { return fmt.Errorf(errFailedPresignFmt, err) }
	errFailedRecordAttach   = func(err error) error { return fmt.Errorf(errFailedRecordAttachFmt, err) }
	errFailedUpdatePresence = func(err error) error { return fmt.Errorf(errFailedUpdatePresenceFmt, err) }
)
