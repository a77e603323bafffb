package api

// Result is the uniform response envelope every client operation returns.
// Callers branch on Success only; ErrorCode and ErrorMessage carry the
// failure detail and Data carries the payload.
type Result[T any] struct {
	Success      bool   `json:"success"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Data         T      `json:"data"`
}

// Error codes returned in Result.ErrorCode.
const (
	ErrValidation = "ERR_VALIDATION"
	ErrNotFound   = "ERR_NOT_FOUND"
	ErrAuth       = "ERR_AUTH"
	ErrDB         = "ERR_DB"
)

// OK wraps a successful payload.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps a failure with its code and message.
func Fail[T any](code, message string) Result[T] {
	return Result[T]{Success: false, ErrorCode: code, ErrorMessage: message}
}

// FailErr wraps a Go error under the given code.
func FailErr[T any](code string, err error) Result[T] {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Result[T]{Success: false, ErrorCode: code, ErrorMessage: msg}
}
