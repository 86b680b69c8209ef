package explainer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	openaiapi "github.com/openai/openai-go/v2"
	"google.golang.org/genai"
)

var (
	// ErrTransport covers every failure to get an answer out of the model
	// service. The more specific errors below all match it too.
	ErrTransport     = errors.New("model request failed")
	ErrTimeout       = errors.New("model request timed out")
	ErrRateLimited   = errors.New("model request rate limited")
	ErrUnauthorized  = errors.New("model request not authorized")
	ErrEmptyResponse = errors.New("model returned no text")
)

// transportError attaches a category to an underlying error so that
// errors.Is matches ErrTransport, the category and the cause.
type transportError struct {
	kind error
	err  error
}

func (e *transportError) Error() string {
	if e.kind == ErrTransport {
		return fmt.Sprintf("%v: %v", ErrTransport, e.err)
	}
	return fmt.Sprintf("%v: %v", e.kind, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{ErrTransport, e.kind, e.err}
}

// classify turns a generator error into a transport error. Errors that
// already carry a category pass through unchanged.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrTransport) {
		return err
	}
	kind := ErrTransport
	switch code := apiErrorCode(err); {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrTimeout
	case code == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		kind = ErrUnauthorized
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		kind = ErrTimeout
	}
	return &transportError{kind: kind, err: err}
}

// statusError carries the HTTP status of a provider failure that only
// reports it in its message.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

var reStatus = regexp.MustCompile(`(?i)status(?:\s*code)?\s*[=:]\s*(\d{3})`)

// withStatus wraps err in a statusError when its message names an HTTP
// status, as in "DeepSeek API error: status=401, body=...".
func withStatus(err error) error {
	if err == nil || apiErrorCode(err) != 0 {
		return err
	}
	sm := reStatus.FindStringSubmatch(err.Error())
	if sm == nil {
		return err
	}
	code, convErr := strconv.Atoi(sm[1])
	if convErr != nil {
		return err
	}
	return &statusError{code: code, err: err}
}

// apiErrorCode digs the HTTP status out of a provider error, or returns 0.
func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	var oaiErr *openaiapi.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.StatusCode
	}
	var stErr *statusError
	if errors.As(err, &stErr) {
		return stErr.code
	}
	return 0
}

// Retryable reports whether trying the same request again might succeed:
// timeouts, rate limits and generic transport failures. Invalid input,
// authorization failures and empty answers are not retried.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrEmptyResponse):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return errors.Is(err, ErrTransport)
}
