package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	paramID             = "id"
	paramCollaboratorID = "collaboratorId"

	queryLimit  = "limit"
	queryOffset = "offset"
	queryAction = "action"

	fieldUsername     = "username"
	fieldPassword     = "password"
	fieldCollaborator = "collaborator"
	fieldContentType  = "contentType"
	fieldOptions      = "publishOptions or fontOptions"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidID               = "invalid id"
	msgInvalidSettings         = "settings must be an object or a JSON encoded object"
	msgInvalidCreator          = "creator must be a user id or username"
	msgCreatorNotFound         = "creator not found"
	msgInvalidCollaborator     = "collaborator must be a user id, username or email"
	msgInvalidOptions          = "options must be JSON objects"
	msgInvalidPagination       = "limit and offset must be non-negative integers"
	msgPasswordProcessFail     = "failed to process password"
	msgGenerateTokenFail       = "failed to generate token"
	msgProjectDeleted          = "project deleted"
	msgWebsocketOrigin         = "origin not allowed"
)
