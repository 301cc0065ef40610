package logger

import (
	"regexp"
	"strings"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(auth_token|token|jwt|bearer)[\s:=]+[^\s&]+`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(api[_-]?key|apikey)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s]+`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	controlPattern  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

const (
	redactedPlaceholder = "[REDACTED]"
	maxLogMessageLen    = 2048
)

// SanitizeLogMessage removes credentials, email addresses and control
// characters so that a message is safe to write on a single log line.
func SanitizeLogMessage(message string) string {
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = apiKeyPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = emailPattern.ReplaceAllString(message, redactedPlaceholder)
	message = controlPattern.ReplaceAllString(message, " ")

	if len(message) > maxLogMessageLen {
		message = message[:maxLogMessageLen] + "..."
	}
	return message
}

// SanitizeMap redacts values under sensitive keys and email addresses inside
// string values.
func SanitizeMap(data map[string]any) map[string]any {
	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"token", "jwt", "bearer",
		"api_key", "apikey", "api-key",
		"secret", "private_key", "private-key",
		"password_hash", "passwordhash",
	}

	sanitized := make(map[string]any, len(data))
	for k, v := range data {
		lowerKey := strings.ToLower(k)
		isSensitive := false

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(lowerKey, sensitiveKey) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			sanitized[k] = redactedPlaceholder
		} else if str, ok := v.(string); ok {
			sanitized[k] = emailPattern.ReplaceAllString(str, redactedPlaceholder)
		} else {
			sanitized[k] = v
		}
	}

	return sanitized
}
