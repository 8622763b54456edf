package review

import "fmt"

const (
	CodeAuthorizationDenied   = "AUTHORIZATION_DENIED"
	CodeSubmitterUnresolvable = "SUBMITTER_UNRESOLVABLE"
	CodeDecodeError           = "DECODE_ERROR"
	CodeEncodingTooLarge      = "ENCODING_TOO_LARGE"
)

// WorkflowError is a user-facing refusal: the interaction is answered
// with Message and no state is mutated. None of these are fatal to the
// process.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func workflowError(code, message string) *WorkflowError {
	return &WorkflowError{Code: code, Message: message}
}
