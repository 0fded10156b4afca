package banking

// Error is an application-layer error: a caller-side validation failure or an
// unusable upstream response. Message is meant for direct display.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
)

func validationError(field, message string) *Error {
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{field: message},
	}
}

func invalidResponse(message string) *Error {
	return &Error{Status: 502, Code: CodeInvalidResponse, Message: message}
}
