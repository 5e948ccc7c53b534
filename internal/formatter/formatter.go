package formatter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/mcncl/llsdtool/internal/parser"
	"gopkg.in/yaml.v3"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// Formatter renders value trees as text
type Formatter struct {
	// Indent is the per-level indentation used by pretty output.
	Indent string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{Indent: "  "}
}

// Format renders v in the requested encoding
func (f *Formatter) Format(v llsd.Value, format parser.Format, pretty bool) (string, error) {
	switch format {
	case parser.FormatXML:
		return f.XML(v, pretty), nil
	case parser.FormatJSON:
		return f.JSON(v, pretty)
	case parser.FormatYAML:
		return f.YAML(v)
	default:
		return "", fmt.Errorf("cannot format as %q", format)
	}
}

// PrintSD renders v as compact LLSD XML.
func PrintSD(v llsd.Value) string {
	return NewFormatter().XML(v, false)
}

// PrettyPrintSD renders v as indented LLSD XML.
func PrettyPrintSD(v llsd.Value) string {
	return NewFormatter().XML(v, true)
}

// XML renders v as an LLSD XML document
func (f *Formatter) XML(v llsd.Value, pretty bool) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("\n")
	w := &xmlWriter{sb: &sb, pretty: pretty, indent: f.Indent}
	w.open("llsd", 0)
	w.value(v, 1)
	w.close("llsd", 0)
	sb.WriteString("\n")
	return sb.String()
}

type xmlWriter struct {
	sb      *strings.Builder
	pretty  bool
	indent  string
	started bool
}

// pad starts a new indented line in pretty mode.
func (w *xmlWriter) pad(depth int) {
	if !w.pretty {
		return
	}
	if w.started {
		w.sb.WriteString("\n")
	}
	w.started = true
	w.sb.WriteString(strings.Repeat(w.indent, depth))
}

func (w *xmlWriter) open(tag string, depth int) {
	w.pad(depth)
	w.sb.WriteString("<" + tag + ">")
}

func (w *xmlWriter) close(tag string, depth int) {
	w.pad(depth)
	w.sb.WriteString("</" + tag + ">")
}

func (w *xmlWriter) empty(tag string, depth int) {
	w.pad(depth)
	w.sb.WriteString("<" + tag + " />")
}

func (w *xmlWriter) leaf(tag, text string, depth int) {
	w.pad(depth)
	w.sb.WriteString("<" + tag + ">")
	_ = xml.EscapeText(w.sb, []byte(text))
	w.sb.WriteString("</" + tag + ">")
}

func (w *xmlWriter) value(v llsd.Value, depth int) {
	switch x := v.(type) {
	case nil, llsd.Undefined:
		w.empty("undef", depth)
	case llsd.Boolean:
		w.leaf("boolean", strconv.FormatBool(bool(x)), depth)
	case llsd.Integer:
		w.leaf("integer", strconv.FormatInt(int64(x), 10), depth)
	case llsd.Real:
		w.leaf("real", formatReal(float64(x)), depth)
	case llsd.String:
		w.leaf("string", string(x), depth)
	case llsd.UUID:
		w.leaf("uuid", x.String(), depth)
	case llsd.Date:
		w.leaf("date", formatDate(x), depth)
	case llsd.URI:
		w.leaf("uri", string(x), depth)
	case llsd.Binary:
		w.pad(depth)
		w.sb.WriteString(`<binary encoding="base64">`)
		w.sb.WriteString(base64.StdEncoding.EncodeToString(x))
		w.sb.WriteString("</binary>")
	case llsd.Array:
		if len(x) == 0 {
			w.empty("array", depth)
			return
		}
		w.open("array", depth)
		for _, e := range x {
			w.value(e, depth+1)
		}
		w.close("array", depth)
	case *llsd.Map:
		if x.Len() == 0 {
			w.empty("map", depth)
			return
		}
		w.open("map", depth)
		x.Range(func(key string, e llsd.Value) bool {
			w.leaf("key", key, depth+1)
			w.value(e, depth+1)
			return true
		})
		w.close("map", depth)
	}
}

// JSON renders v as JSON. UUIDs, URIs and dates become strings and binary
// becomes base64, so the output does not parse back to the same types.
func (f *Formatter) JSON(v llsd.Value, pretty bool) (string, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return "", err
	}
	if !pretty {
		return buf.String(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", f.Indent); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, v llsd.Value) error {
	switch x := v.(type) {
	case nil, llsd.Undefined:
		buf.WriteString("null")
	case llsd.Boolean:
		buf.WriteString(strconv.FormatBool(bool(x)))
	case llsd.Integer:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case llsd.Real:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("cannot represent %v in JSON", float64(x))
		}
		buf.WriteString(formatReal(float64(x)))
	case llsd.String:
		writeJSONString(buf, string(x))
	case llsd.UUID:
		writeJSONString(buf, x.String())
	case llsd.Date:
		writeJSONString(buf, formatDate(x))
	case llsd.URI:
		writeJSONString(buf, string(x))
	case llsd.Binary:
		writeJSONString(buf, base64.StdEncoding.EncodeToString(x))
	case llsd.Array:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *llsd.Map:
		buf.WriteByte('{')
		var err error
		first := true
		x.Range(func(key string, e llsd.Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONString(buf, key)
			buf.WriteByte(':')
			err = writeJSON(buf, e)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
}

// YAML renders v as a YAML document. UUIDs and URIs carry the !uuid and !uri
// tags understood by the parser.
func (f *Formatter) YAML(v llsd.Value) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func yamlNode(v llsd.Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch x := v.(type) {
	case nil, llsd.Undefined:
		return scalar("!!null", "null")
	case llsd.Boolean:
		return scalar("!!bool", strconv.FormatBool(bool(x)))
	case llsd.Integer:
		return scalar("!!int", strconv.FormatInt(int64(x), 10))
	case llsd.Real:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan")
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf")
		}
		return scalar("!!float", formatReal(f))
	case llsd.String:
		return scalar("!!str", string(x))
	case llsd.UUID:
		return scalar(parser.TagUUID, x.String())
	case llsd.Date:
		return scalar("!!timestamp", formatDate(x))
	case llsd.URI:
		return scalar(parser.TagURI, string(x))
	case llsd.Binary:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(x))
	case llsd.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range x {
			node.Content = append(node.Content, yamlNode(e))
		}
		return node
	case *llsd.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		x.Range(func(key string, e llsd.Value) bool {
			node.Content = append(node.Content, scalar("!!str", key), yamlNode(e))
			return true
		})
		return node
	default:
		return scalar("!!null", "null")
	}
}

// formatReal renders f so that it always reads back as a real, never as an
// integer.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func formatDate(d llsd.Date) string {
	return d.Time().UTC().Format(time.RFC3339Nano)
}
