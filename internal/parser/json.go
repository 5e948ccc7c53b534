package parser

import (
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mcncl/llsdtool/internal/errors"
	"github.com/mcncl/llsdtool/internal/llsd"
)

// parseJSON decodes a single JSON document token by token so that object keys
// keep their order.
func parseJSON(reader io.Reader) (llsd.Value, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	root, err := decodeJSONValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, jsonError(err)
	}

	// Anything other than EOF after the first value is either a second
	// document or garbage.
	if _, err := decoder.Token(); err == nil {
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleRoots)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	return root, nil
}

func jsonError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidDocument,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidDocument)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

func decodeJSONValue(decoder *json.Decoder) (llsd.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := llsd.NewMap()
			for decoder.More() {
				keyTok, err := decoder.Token()
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not a string", keyTok)
				}
				v, err := decodeJSONValue(decoder)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				m.Set(key, v)
			}
			if _, err := decoder.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return m, nil
		case '[':
			arr := llsd.EmptyArray()
			for decoder.More() {
				v, err := decodeJSONValue(decoder)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				arr = append(arr, v)
			}
			if _, err := decoder.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return llsd.Undefined{}, nil
	case bool:
		return llsd.Boolean(t), nil
	case string:
		return llsd.String(t), nil
	case json.Number:
		return jsonNumber(t)
	default:
		return nil, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

// unexpectedEOF turns an EOF inside a container into io.ErrUnexpectedEOF so it
// is not mistaken for empty input.
func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// jsonNumber maps integral literals within 32 bits to Integer and everything
// else to Real.
func jsonNumber(num json.Number) (llsd.Value, error) {
	s := num.String()
	if !strings.ContainsAny(s, ".eE") {
		if n, err := num.Int64(); err == nil && n >= math.MinInt32 && n <= math.MaxInt32 {
			return llsd.Integer(n), nil
		}
	}
	f, err := num.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return llsd.Real(f), nil
}
