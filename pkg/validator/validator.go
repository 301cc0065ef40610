package validator

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

const (
	minUsernameLength   = 3
	maxUsernameLength   = 32
	minEmailLength      = 3
	maxEmailLength      = 255
	minPasswordLength   = 8
	maxPasswordLength   = 72
	maxProjectTitleLen  = 255
	maxNodeNameLen      = 255
	maxNodePathLen      = 1000
	maxContentTypeLen   = 255
	asciiControlStart   = 32
	asciiDelete         = 127
	imageMediaTypePrefx = "image/"

	errUsernameEmptyFmt        = "username cannot be empty"
	errUsernameLengthFmt       = "username must be between %d and %d characters"
	errUsernameCharsFmt        = "username may only contain letters, digits, '.', '_' and '-'"
	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d bytes"
	errProjectTitleEmptyFmt    = "project title cannot be empty"
	errProjectTitleMaxLenFmt   = "project title must not exceed %d characters"
	errNodeNameEmptyFmt        = "node name cannot be empty"
	errNodeNameMaxLengthFmt    = "node name must not exceed %d characters"
	errNodeNamePathSepFmt      = "node name cannot contain path separators"
	errNodeNameDotsFmt         = "node name cannot be '.' or '..'"
	errNodeNameControlCharsFmt = "node name cannot contain control characters"
	errNodePathEmptyFmt        = "node path cannot be empty"
	errNodePathMaxLengthFmt    = "node path must not exceed %d characters"
	errNodePathBackslashFmt    = "node path cannot contain backslashes"
	errNodePathEmptySegFmt     = "node path contains empty segment"
	errNodePathTraversalFmt    = "node path cannot contain path traversal"
	errNodePathControlCharsFmt = "node path cannot contain control characters"
	errContentTypeEmptyFmt     = "content type cannot be empty"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errContentTypeNotImageFmt  = "content type must be an image type"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

func Username(username string) error {
	if username == "" {
		return fmt.Errorf(errUsernameEmptyFmt)
	}

	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf(errUsernameLengthFmt, minUsernameLength, maxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf(errUsernameCharsFmt)
	}

	return nil
}

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

// Password bounds length only; bcrypt ignores bytes past 72.
func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func ProjectTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf(errProjectTitleEmptyFmt)
	}

	if len(title) > maxProjectTitleLen {
		return fmt.Errorf(errProjectTitleMaxLenFmt, maxProjectTitleLen)
	}

	return nil
}

func NodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf(errNodeNameEmptyFmt)
	}

	if len(name) > maxNodeNameLen {
		return fmt.Errorf(errNodeNameMaxLengthFmt, maxNodeNameLen)
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf(errNodeNamePathSepFmt)
	}

	if name == "." || name == ".." {
		return fmt.Errorf(errNodeNameDotsFmt)
	}

	if hasControlChars(name) {
		return fmt.Errorf(errNodeNameControlCharsFmt)
	}

	return nil
}

// NodePath accepts slash-delimited paths with or without a leading slash.
func NodePath(path string) error {
	if path == "" {
		return fmt.Errorf(errNodePathEmptyFmt)
	}

	if len(path) > maxNodePathLen {
		return fmt.Errorf(errNodePathMaxLengthFmt, maxNodePathLen)
	}

	if strings.Contains(path, `\`) {
		return fmt.Errorf(errNodePathBackslashFmt)
	}

	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if seg == "" {
			return fmt.Errorf(errNodePathEmptySegFmt)
		}
		if seg == ".." || seg == "." {
			return fmt.Errorf(errNodePathTraversalFmt)
		}
		if hasControlChars(seg) {
			return fmt.Errorf(errNodePathControlCharsFmt)
		}
	}

	return nil
}

// ImageContentType accepts a well-formed image/* media type.
func ImageContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf(errContentTypeEmptyFmt)
	}

	if len(contentType) > maxContentTypeLen {
		return fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	if !strings.HasPrefix(mediaType, imageMediaTypePrefx) {
		return fmt.Errorf(errContentTypeNotImageFmt)
	}

	return nil
}

func hasControlChars(s string) bool {
	for _, char := range s {
		if char < asciiControlStart || char == asciiDelete {
			return true
		}
	}
	return false
}
