package tools

// Status indicates whether a dispatch produced data or an error
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind classifies a failed dispatch
type ErrorKind string

const (
	ErrKindToolNotFound ErrorKind = "tool_not_found"
	ErrKindValidation   ErrorKind = "validation_error"
	ErrKindExecution    ErrorKind = "execution_error"
)

// ErrorDetail carries the structured error payload of a failed dispatch
type ErrorDetail struct {
	Kind    ErrorKind    `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Result is the outcome of dispatching a tool call. Exactly one of Data
// and Error is set: Data on success, Error otherwise. Dispatch never
// panics and never returns a Go error to its caller; everything the
// model needs to recover is in here.
type Result struct {
	Status Status       `json:"status"`
	Tool   string       `json:"tool"`
	Data   interface{}  `json:"data,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// IsSuccess reports whether the dispatch produced data
func (r Result) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// Success builds a successful result
func Success(tool string, data interface{}) Result {
	return Result{
		Status: StatusSuccess,
		Tool:   tool,
		Data:   data,
	}
}

// NotFoundResult builds a tool_not_found result
func NotFoundResult(tool string) Result {
	return Result{
		Status: StatusError,
		Tool:   tool,
		Error: &ErrorDetail{
			Kind:    ErrKindToolNotFound,
			Message: "tool is not registered: " + tool,
		},
	}
}

// ValidationResult builds a validation_error result listing every
// failed field
func ValidationResult(tool string, fields []FieldError) Result {
	return Result{
		Status: StatusError,
		Tool:   tool,
		Error: &ErrorDetail{
			Kind:    ErrKindValidation,
			Message: "arguments failed validation",
			Fields:  fields,
		},
	}
}

// ExecutionResult builds an execution_error result
func ExecutionResult(tool string, message string) Result {
	return Result{
		Status: StatusError,
		Tool:   tool,
		Error: &ErrorDetail{
			Kind:    ErrKindExecution,
			Message: message,
		},
	}
}
