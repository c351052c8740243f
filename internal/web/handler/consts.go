package handler

const (
	// APIPath is the prefix of every REST route.
	APIPath = "/api/v1"

	// ErrNilACSFatalLogMsg is used if app, cfg or the session manager is nil.
	ErrNilACSFatalLogMsg = "app, cfg or session manager is nil"

	// ErrBadRequestBody is returned when the request body cannot be decoded.
	ErrBadRequestBody = "invalid request body"
)
