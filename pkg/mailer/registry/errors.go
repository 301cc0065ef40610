package registry

import (
	"errors"
	"fmt"
)

var (
	ErrAtLeastOneProviderRequired = errors.New("at least one provider is required")
	ErrProviderCannotBeNil        = errors.New("provider cannot be nil")
	ErrInvalidDefaultFromEmail    = errors.New("invalid default from email")
	ErrEmailDataRequired          = errors.New("email data is required")
	ErrEmailTemplateRequired      = errors.New("email template is required")
	ErrEmailServiceRequired       = errors.New("email service is required")
	ErrNoProvidersConfigured      = errors.New("no email providers configured")
	ErrAllProvidersFailed         = errors.New("all providers failed")
	ErrAllProvidersExhausted      = errors.New("all providers exhausted or failed")
	ErrAPIKeyRequired             = errors.New("api key is required")
	ErrAtLeastOneRecipient        = errors.New("at least one recipient required")
	ErrInvalidFromEmail           = errors.New("invalid 'from' email")
	ErrSubjectRequired            = errors.New("subject is required")
	ErrHTMLContentRequired        = errors.New("html content is required")
	ErrInvalidReplyToEmail        = errors.New("invalid 'replyTo' email")
	ErrProjectTitleRequired       = errors.New("project title is required")
	ErrRecipientRequired          = errors.New("recipient name is required")
	ErrProjectURLInvalid          = errors.New("project URL must be an absolute http or https URL")
	ErrUnknownStrategy            = errors.New("unknown delivery strategy")
)

func ErrInvalidToEmail(email string) error {
	return fmt.Errorf("invalid 'to' email: %s", email)
}

func ErrInvalidCCEmail(email string) error {
	return fmt.Errorf("invalid 'cc' email: %s", email)
}

func ErrInvalidBCCEmail(email string) error {
	return fmt.Errorf("invalid 'bcc' email: %s", email)
}

func ErrAPIStatus(provider string, statusCode int) error {
	return fmt.Errorf("%s API error: %d", provider, statusCode)
}
