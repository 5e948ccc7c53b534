// Package errors defines the kinds of failure llsdtool reports and renders
// them for the terminal.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcncl/llsdtool/internal/llsd"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidDocument = errors.New("invalid document")
	ErrMultipleRoots   = errors.New("multiple values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrUnknownFormat   = errors.New("unknown document format")
	ErrNotConformant   = errors.New("document does not conform to template")
	ErrNotEqual        = errors.New("documents differ")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeMerge   ErrorType = "merge"
	ErrorTypeCompare ErrorType = "compare"
	ErrorTypeFormat  ErrorType = "format"
	ErrorTypeOutput  ErrorType = "output"
)

// labels prefix each kind in UserFriendlyError.
var labels = map[ErrorType]string{
	ErrorTypeInput:   "Input error",
	ErrorTypeParsing: "Parsing error",
	ErrorTypeMerge:   "Template error",
	ErrorTypeCompare: "Comparison",
	ErrorTypeFormat:  "Formatting error",
	ErrorTypeOutput:  "Output error",
}

// AppError is a failure of a known kind. Source names the document it
// concerns and Path the value inside that document, when either is known.
type AppError struct {
	Type    ErrorType
	Message string
	Source  string
	Path    string
	Err     error
}

// newError builds an AppError, taking Path from the first template mismatch
// in err's chain.
func newError(kind ErrorType, message string, err error) *AppError {
	e := &AppError{Type: kind, Message: message, Err: err}
	var mismatch *llsd.MismatchError
	if errors.As(err, &mismatch) {
		e.Path = llsd.DisplayPath(mismatch.Path)
	}
	return e
}

// Error implements error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Type))
	if e.Source != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Source)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// In records the document the error concerns. A source already set is kept.
func (e *AppError) In(source string) *AppError {
	if e.Source == "" {
		e.Source = source
	}
	return e
}

// InSource records source on the AppError in err's chain and returns err.
// Errors of another type are returned unchanged.
func InSource(err error, source string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.In(source)
	}
	return err
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to document decoding
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewMergeError creates a new error for a document that fails its template
func NewMergeError(message string, err error) *AppError {
	return newError(ErrorTypeMerge, message, err)
}

// NewCompareError creates a new error for documents that are not equal
func NewCompareError(message string, err error) *AppError {
	return newError(ErrorTypeCompare, message, err)
}

// NewFormatError creates a new error related to rendering a document
func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// hints explain bare sentinels that reach the user without an AppError.
var hints = []struct {
	err  error
	text string
}{
	{ErrEmptyInput, "The input is empty. Please provide a document."},
	{ErrInvalidDocument, "The input is not a valid document. Please check its syntax."},
	{ErrMultipleRoots, "Multiple root values found. Please provide a single document."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty."},
	{ErrUnknownFormat, "Unknown document format. Use one of xml, json or yaml."},
}

// UserFriendlyError renders err as one line per problem, prefixed with its
// kind and the document it concerns.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		label, ok := labels[appErr.Type]
		if !ok {
			label = "Error"
		}
		if appErr.Source != "" {
			return fmt.Sprintf("%s: %s: %s", label, appErr.Source, appErr.Message)
		}
		return fmt.Sprintf("%s: %s", label, appErr.Message)
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.text
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
