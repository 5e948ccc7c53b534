package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "wrapped error",
			appError: NewInputError("failed to read input", errors.New("permission denied")),
			expected: "input: failed to read input: permission denied",
		},
		{
			name:     "no wrapped error",
			appError: NewParsingError("invalid LLSD XML", nil),
			expected: "parsing: invalid LLSD XML",
		},
		{
			name:     "with source",
			appError: NewParsingError("XML syntax error on line 3", ErrInvalidDocument).In("doc.xml"),
			expected: "parsing: doc.xml: XML syntax error on line 3: invalid document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_PathFromMismatch(t *testing.T) {
	_, mismatch := llsd.ConformError(
		llsd.MapOf("size", llsd.String("big")),
		llsd.MapOf("size", llsd.Integer(0)),
	)
	require.Error(t, mismatch)

	err := NewMergeError("invalid media entry", fmt.Errorf("%w: %w", ErrNotConformant, mismatch))
	assert.Equal(t, "<root>.size", err.Path)
	assert.ErrorIs(t, err, ErrNotConformant)

	var target *llsd.MismatchError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, llsd.TypeString, target.Got)

	assert.Empty(t, NewMergeError("no path", ErrNotConformant).Path)
}

func TestAppError_In(t *testing.T) {
	err := NewParsingError("bad", nil).In("a.json").In("b.json")
	assert.Equal(t, "a.json", err.Source, "the first source wins")
}

func TestInSource(t *testing.T) {
	wrapped := fmt.Errorf("reading: %w", NewParsingError("bad", nil))
	assert.Same(t, wrapped, InSource(wrapped, "<stdin>"))

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "<stdin>", appErr.Source)

	plain := errors.New("plain")
	assert.Equal(t, plain, InSource(plain, "x"))
}

func TestAppError_Is(t *testing.T) {
	input := NewInputError("test message", nil)

	assert.True(t, input.Is(&AppError{Type: ErrorTypeInput, Message: "other"}))
	assert.False(t, input.Is(&AppError{Type: ErrorTypeParsing}))
	assert.False(t, input.Is(errors.New("standard error")))

	err := NewMergeError("does not fit", ErrNotConformant)
	assert.True(t, errors.Is(err, ErrNotConformant))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeMerge}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeCompare}))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"input", NewInputError("failed to read file", nil), "Input error: failed to read file"},
		{"parsing", NewParsingError("unexpected element <foo>", nil), "Parsing error: unexpected element <foo>"},
		{"merge", NewMergeError("document does not match template", ErrNotConformant), "Template error: document does not match template"},
		{"compare", NewCompareError("2 differences", ErrNotEqual), "Comparison: 2 differences"},
		{"format", NewFormatError("failed to render yaml", nil), "Formatting error: failed to render yaml"},
		{"output", NewOutputError("failed to write output", nil), "Output error: failed to write output"},
		{"with source", NewParsingError("JSON syntax error at offset 6", nil).In("doc.json"), "Parsing error: doc.json: JSON syntax error at offset 6"},
		{"wrapped", fmt.Errorf("watch: %w", NewParsingError("bad xml", nil)), "Parsing error: bad xml"},
		{"unlabelled kind", &AppError{Type: "other", Message: "odd"}, "Error: odd"},
		{"bare sentinel", ErrEmptyInput, "Error: The input is empty. Please provide a document."},
		{"wrapped sentinel", fmt.Errorf("convert: %w", ErrUnknownFormat), "Error: Unknown document format. Use one of xml, json or yaml."},
		{"unknown", errors.New("some unknown error"), "Error: some unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFriendlyError(tt.err))
		})
	}
}
