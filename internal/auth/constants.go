package auth

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"
	queryAuthToken      = "auth_token"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgHashPasswordFailed      = "failed to hash password: %w"
)
