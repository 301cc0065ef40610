package registry

const (
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
)

const (
	StrategySingle     = "single"
	StrategyFailover   = "failover"
	StrategyPriority   = "priority"
	StrategyRoundRobin = "roundrobin"
)

const (
	ProviderLabelNone       = "none"
	ProviderLabelFailover   = "failover"
	ProviderLabelPriority   = "priority"
	ProviderLabelValidation = "validation"
	ProviderLabelTemplate   = "template"
)

const (
	ResendAPIURL   = "https://api.resend.com"
	SendGridAPIURL = "https://api.sendgrid.com"

	PathResendEmails     = "/emails"
	PathResendAPIKeys    = "/api-keys"
	PathSendGridMailSend = "/v3/mail/send"
	PathSendGridScopes   = "/v3/scopes"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderMessageID     = "X-Message-Id"
	AuthBearerPrefix    = "Bearer "
	MIMEApplicationJSON = "application/json"
	MIMETextHTML        = "text/html"
	MIMETextPlain       = "text/plain"
)

const (
	URLSchemeHTTP  = "http"
	URLSchemeHTTPS = "https"
)

const (
	TemplateNameCollaboratorAdded   = "collaborator-added"
	TemplateNameCollaboratorRemoved = "collaborator-removed"
)

const (
	MessageSeparator           = "; "
	StrategySendFailedText     = "send failed"
	MsgProviderErrorFmt        = "%s: %s"
	MsgFailedMarshalPayloadFmt = "failed to marshal payload: %v"
	MsgRequestFailedFmt        = "request failed: %v"
)
