package wiki

import (
	"errors"
	"fmt"
)

// HelpErrorInfo is reported when the API serves its help page instead of a
// result, which happens when a request carries no action.
const HelpErrorInfo = "The help page was shown instead of any specific error message. " +
	"This usually happens when the action is left off. " +
	"The API help is available at https://www.mediawiki.org/wiki/API:Main_page"

// ErrHelpPage matches protocol errors caused by the help sentinel
var ErrHelpPage = errors.New("api help page served")

// ConfigurationError indicates a session cannot be built from the given settings
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Message)
}

// UsageError indicates the caller misused the API before any request was made
type UsageError struct {
	Operation string
	Message   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// InvalidTitleError is returned when an edit target is neither a title nor a page id
type InvalidTitleError struct{}

func (e *InvalidTitleError) Error() string {
	return "page must be a title (name of page) or a positive page id"
}

// MissingContentError is returned when an edit carries no text of any kind
type MissingContentError struct{}

func (e *MissingContentError) Error() string {
	return "edit must have textual content (text, appendtext or prependtext); " +
		"see https://www.mediawiki.org/wiki/API:Edit for details"
}

// TransportError wraps a network level failure
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is an error signalled by the API through the
// MediaWiki-API-Error response header.
type ProtocolError struct {
	Code string
	Info string

	// Details holds the full error object from the response body, if any
	Details map[string]any
}

func (e *ProtocolError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("API error [%s]", e.Code)
	}
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Info)
}

// Is reports whether target is ErrHelpPage and this is the help sentinel
func (e *ProtocolError) Is(target error) bool {
	return target == ErrHelpPage && e.Code == helpSentinel
}

// MissingTokenError means the token query succeeded but returned no token
type MissingTokenError struct {
	Type string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("no %s token in response", e.Type)
}

// IsProtocolCode returns true if err is a ProtocolError with the given code
func IsProtocolCode(err error, code string) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Code == code
}
