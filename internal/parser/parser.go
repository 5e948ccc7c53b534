// Package parser decodes JSON, LLSD XML and YAML documents into value trees.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/llsdtool/internal/errors" // Custom errors package
	"github.com/mcncl/llsdtool/internal/llsd"
)

// Format names a document encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatXML, FormatJSON, FormatYAML}

// ParseFormat validates a format name. "yml" and "llsd" are accepted as
// aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xml", "llsd":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%q: %w", name, errors.ErrUnknownFormat)
	}
}

// FormatFromPath picks a format from the file extension, returning "" when the
// extension is not recognised.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".llsd":
		return FormatXML
	case ".json":
		return FormatJSON
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return ""
	}
}

// sniffFormat guesses the format from the first non-space byte.
func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	switch trimmed[0] {
	case '<':
		return FormatXML
	case '{', '[', '"':
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Parse decodes one document in the given format. An empty format sniffs the
// input.
func Parse(reader io.Reader, format Format) (llsd.Value, error) {
	if format == "" {
		br := bufio.NewReader(reader)
		head, _ := br.Peek(512)
		format = sniffFormat(head)
		reader = br
	}

	switch format {
	case FormatJSON:
		return parseJSON(reader)
	case FormatXML:
		return parseXML(reader)
	case FormatYAML:
		return parseYAML(reader)
	default:
		return nil, errors.NewInputError(fmt.Sprintf("cannot parse format %q", format), errors.ErrUnknownFormat)
	}
}

// ParseString parses a document from a string
func ParseString(input string, format Format) (llsd.Value, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(input), format)
}

// ParseFile parses a document from a file path. An empty format is taken from
// the extension, falling back to sniffing the content.
func ParseFile(filePath string, format Format) (llsd.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	if format == "" {
		format = FormatFromPath(filePath)
	}
	v, err := Parse(file, format)
	if err != nil {
		return nil, errors.InSource(err, filePath)
	}
	return v, nil
}
