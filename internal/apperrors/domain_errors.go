package apperrors

var (
	ErrMissingFields       = InvalidArg("Missing fields")
	ErrMissingPartner      = InvalidArg("Missing chat partner ID")
	ErrInvalidBody         = InvalidArg("Invalid request body")
	ErrDuplicateEmail      = AlreadyExists("Email already taken")
	ErrInvalidCredentials  = Unauthorized("Invalid email or password")
	ErrUnauthorized        = Unauthorized("Unauthorized")
	ErrInsightUnavailable  = New(CodeUnavailable, "Unable to generate insight.")
	ErrInsightUnconfigured = New(CodeFailedPrecondition, "Insights service is not configured.")
)

func ErrStore(cause error) error {
	return Wrap(CodeInternal, "Server error", cause)
}

func ErrUpstream(cause error) error {
	return Wrap(CodeUnavailable, "Unable to generate insight.", cause)
}
