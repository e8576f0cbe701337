package progmem

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ToolError is the error type returned for every failure the tool reports. Use
// errors.Is against the Err* values to tell them apart.
type ToolError interface {
	error
	// WithMessage returns a new error with `message` appended to this one's.
	// The result still matches this error with errors.Is.
	WithMessage(message string) ToolError
	// Wrap returns a new error that matches both this error and `err` with
	// errors.Is, e.g. ErrNotFound wrapping an *os.PathError.
	Wrap(err error) ToolError
}

type baseToolError string

const rootError = baseToolError("")

var ErrNotFound = rootError.WithMessage("No such file or directory")
var ErrArrayNotFound = rootError.WithMessage("Array not found")
var ErrArrayEndNotFound = rootError.WithMessage("End of array not found")
var ErrInvalidArray = rootError.WithMessage("Malformed array literal")
var ErrLengthMismatch = rootError.WithMessage("Declared array length does not match contents")
var ErrDecompressionFailed = rootError.WithMessage("Decompression failed")
var ErrSizeDeclarationNotFound = rootError.WithMessage("Size declaration not found")
var ErrVerificationFailed = rootError.WithMessage("Embedded page does not match source page")
var ErrInvalidConfig = rootError.WithMessage("Invalid configuration")

func (e baseToolError) Error() string {
	return string(e)
}

func (e baseToolError) WithMessage(message string) ToolError {
	return customToolError{
		message:       message,
		originalError: e,
	}
}

func (e baseToolError) Wrap(err error) ToolError {
	return customToolError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customToolError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customToolError) Error() string {
	return e.message
}

func (e customToolError) WithMessage(message string) ToolError {
	return customToolError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customToolError) Wrap(err error) ToolError {
	return customToolError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customToolError) Unwrap() error {
	return e.originalError
}
