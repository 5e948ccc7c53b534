package parser

import (
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/llsdtool/internal/errors"
	"github.com/mcncl/llsdtool/internal/llsd"
	"gopkg.in/yaml.v3"
)

// YAML tags for the variants YAML has no core tag for.
const (
	TagUUID = "!uuid"
	TagURI  = "!uri"
)

// parseYAML decodes a single YAML document through its node tree so mapping
// order survives.
func parseYAML(reader io.Reader) (llsd.Value, error) {
	decoder := yaml.NewDecoder(reader)

	var doc yaml.Node
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidDocument)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); err == nil {
		return nil, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleRoots)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing data after first YAML document", err)
	}

	v, err := yamlValue(&doc)
	if err != nil {
		return nil, errors.NewParsingError(err.Error(), errors.ErrInvalidDocument)
	}
	return v, nil
}

func yamlValue(node *yaml.Node) (llsd.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return llsd.Undefined{}, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		m := llsd.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: map keys must be scalars", keyNode.Line)
			}
			v, err := yamlValue(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make(llsd.Array, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

func yamlScalar(node *yaml.Node) (llsd.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return llsd.Undefined{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return llsd.Boolean(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return llsd.Real(n), nil
		}
		return llsd.Integer(n), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return llsd.Real(f), nil
	case "!!str":
		return llsd.String(node.Value), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(node.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binary: %w", node.Line, err)
		}
		return llsd.Binary(b), nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return llsd.NewDate(t), nil
	case TagUUID:
		id, err := uuid.Parse(strings.TrimSpace(node.Value))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid uuid %q", node.Line, node.Value)
		}
		return llsd.UUID(id), nil
	case TagURI:
		return llsd.URI(strings.TrimSpace(node.Value)), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported tag %s", node.Line, node.Tag)
	}
}
