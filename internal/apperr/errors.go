package apperr

import "errors"

// Letter store errors
var (
	ErrNotFound     = errors.New("letter not found") // 404
	ErrForbidden    = errors.New("not authorized")   // 403
	ErrUserNotFound = errors.New("user not found")   // 404
)

// Export error codes, surfaced in the `error` field of failure bodies.
const (
	CodeMissingToken  = "missing_token"
	CodeExpiredToken  = "expired_token"
	CodeAPINotEnabled = "api_not_enabled"
)

// CredentialError reports an unusable Google credential or a classified
// remote API failure. Code is a machine-readable value the frontend switches
// on; RedirectURL, when set, points the user back to the consent flow.
type CredentialError struct {
	Code        string
	Message     string
	Detail      string
	RedirectURL string
}

func (e *CredentialError) Error() string { return e.Message }

// MissingCredential builds the 401 error returned when no access token is
// stored for the user.
func MissingCredential(redirectURL string) *CredentialError {
	return &CredentialError{
		Code:        CodeMissingToken,
		Message:     "Google Drive access is not available. Please reconnect your Google account.",
		RedirectURL: redirectURL,
	}
}

// ExpiredCredential builds the 401 error returned when the stored token is
// expired and could not be refreshed, or Google rejected the grant.
func ExpiredCredential(redirectURL string) *CredentialError {
	return &CredentialError{
		Code:        CodeExpiredToken,
		Message:     "Your Google authorization has expired. Please reconnect your Google account.",
		RedirectURL: redirectURL,
	}
}

// ServiceUnavailable builds the 503 error returned when the remote API is
// disabled for the Google Cloud project.
func ServiceUnavailable(detail string) *CredentialError {
	return &CredentialError{
		Code:    CodeAPINotEnabled,
		Message: "Google Docs API is not enabled",
		Detail:  detail,
	}
}

// AsCredential unwraps err into a *CredentialError when possible.
func AsCredential(err error) (*CredentialError, bool) {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
