package parser

import (
	"encoding/base64"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/llsdtool/internal/errors"
	"github.com/mcncl/llsdtool/internal/llsd"
)

// parseXML decodes an <llsd> document. The root element holds at most one
// value; an empty <llsd/> is undefined.
func parseXML(reader io.Reader) (llsd.Value, error) {
	decoder := xml.NewDecoder(reader)

	start, err := nextStart(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains no elements", errors.ErrEmptyInput)
		}
		return nil, xmlError(err)
	}
	if start.Name.Local != "llsd" {
		return nil, errors.NewParsingError(
			fmt.Sprintf("root element is <%s>, expected <llsd>", start.Name.Local),
			errors.ErrInvalidDocument,
		)
	}

	var root llsd.Value = llsd.Undefined{}
	seen := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, xmlError(unexpectedEOF(err))
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if seen {
				return nil, errors.NewParsingError("multiple values inside <llsd>", errors.ErrMultipleRoots)
			}
			if root, err = decodeXMLValue(decoder, t); err != nil {
				return nil, xmlError(err)
			}
			seen = true
		case xml.EndElement:
			if _, err := nextStart(decoder); err == nil {
				return nil, errors.NewParsingError("multiple root elements", errors.ErrMultipleRoots)
			} else if !stderrors.Is(err, io.EOF) {
				return nil, xmlError(err)
			}
			return root, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return nil, errors.NewParsingError("unexpected text inside <llsd>", errors.ErrInvalidDocument)
			}
		}
	}
}

func xmlError(err error) error {
	var syntaxError *xml.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("XML syntax error on line %d: %s", syntaxError.Line, syntaxError.Msg),
			errors.ErrInvalidDocument,
		)
	}
	return errors.NewParsingError(err.Error(), errors.ErrInvalidDocument)
}

// nextStart skips prolog, comments and whitespace up to the next element.
func nextStart(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return xml.StartElement{}, fmt.Errorf("unexpected text %q outside element", strings.TrimSpace(string(t)))
			}
		}
	}
}

func decodeXMLValue(decoder *xml.Decoder, start xml.StartElement) (llsd.Value, error) {
	switch start.Name.Local {
	case "map":
		return decodeXMLMap(decoder)
	case "array":
		return decodeXMLArray(decoder)
	case "undef":
		if _, err := elementText(decoder, start); err != nil {
			return nil, err
		}
		return llsd.Undefined{}, nil
	}

	text, err := elementText(decoder, start)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)

	switch start.Name.Local {
	case "boolean":
		switch strings.ToLower(trimmed) {
		case "1", "true":
			return llsd.Boolean(true), nil
		case "", "0", "false":
			return llsd.Boolean(false), nil
		}
		return nil, fmt.Errorf("invalid boolean %q", trimmed)
	case "integer":
		if trimmed == "" {
			return llsd.Integer(0), nil
		}
		n, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", trimmed)
		}
		return llsd.Integer(n), nil
	case "real":
		if trimmed == "" {
			return llsd.Real(0), nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q", trimmed)
		}
		return llsd.Real(f), nil
	case "string":
		return llsd.String(text), nil
	case "uuid":
		if trimmed == "" {
			return llsd.UUID(uuid.Nil), nil
		}
		id, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q", trimmed)
		}
		return llsd.UUID(id), nil
	case "date":
		if trimmed == "" {
			return llsd.NewDate(time.Unix(0, 0)), nil
		}
		t, err := time.Parse(time.RFC3339Nano, trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", trimmed)
		}
		return llsd.NewDate(t), nil
	case "uri":
		return llsd.URI(trimmed), nil
	case "binary":
		for _, attr := range start.Attr {
			if attr.Name.Local == "encoding" && attr.Value != "base64" {
				return nil, fmt.Errorf("unsupported binary encoding %q", attr.Value)
			}
		}
		compact := strings.Join(strings.Fields(text), "")
		b, err := base64.StdEncoding.DecodeString(compact)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 binary: %w", err)
		}
		return llsd.Binary(b), nil
	default:
		return nil, fmt.Errorf("unknown element <%s>", start.Name.Local)
	}
}

func decodeXMLMap(decoder *xml.Decoder) (llsd.Value, error) {
	m := llsd.NewMap()
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "key" {
				return nil, fmt.Errorf("expected <key> in <map>, found <%s>", t.Name.Local)
			}
			key, err := elementText(decoder, t)
			if err != nil {
				return nil, err
			}
			valueStart, err := nextStart(decoder)
			if err != nil {
				return nil, fmt.Errorf("missing value for key %q: %w", key, unexpectedEOF(err))
			}
			v, err := decodeXMLValue(decoder, valueStart)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		case xml.EndElement:
			return m, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return nil, fmt.Errorf("unexpected text in <map>")
			}
		}
	}
}

func decodeXMLArray(decoder *xml.Decoder) (llsd.Value, error) {
	arr := llsd.EmptyArray()
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			v, err := decodeXMLValue(decoder, t)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		case xml.EndElement:
			return arr, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return nil, fmt.Errorf("unexpected text in <array>")
			}
		}
	}
}

// elementText collects the character data of a leaf element up to its end
// tag.
func elementText(decoder *xml.Decoder, start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("unexpected <%s> inside <%s>", t.Name.Local, start.Name.Local)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}
