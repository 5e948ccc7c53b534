// Package generator turns a template into Go struct definitions whose llsd
// tags let llsd.Decode fill them from a conformed document.
package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/llsdtool/internal/llsd"
)

// FieldInfo describes one struct field
type FieldInfo struct {
	Key    string
	GoName string
	GoType string
	Tag    string
}

// StructDef describes one struct to emit
type StructDef struct {
	Name   string
	IsRoot bool
	Fields []FieldInfo
}

// AnalysisResult holds the structs derived from a template and the imports
// their field types need
type AnalysisResult struct {
	Structs []StructDef
	Imports map[string]struct{}
}

// Generator is responsible for generating Go struct definitions from templates
type Generator struct {
	structs []StructDef
	imports map[string]struct{}
	names   map[string]int
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate analyzes template and renders gofmt-formatted source.
func Generate(template llsd.Value, packageName, rootName string) (string, error) {
	g := NewGenerator()
	result, err := g.Analyze(template, rootName)
	if err != nil {
		return "", err
	}
	code, err := g.GenerateStructs(result, packageName)
	if err != nil {
		return "", err
	}
	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", fmt.Errorf("generated code does not format: %w", err)
	}
	return string(formatted), nil
}

// Analyze derives struct definitions from a map template. Nested maps become
// nested structs named after their parent and key. Arrays take the type of
// their elements when all elements agree.
func (g *Generator) Analyze(template llsd.Value, rootName string) (AnalysisResult, error) {
	root, ok := template.(*llsd.Map)
	if !ok {
		return AnalysisResult{}, fmt.Errorf("template root must be a map, found %s", llsd.TypeOf(template))
	}
	if rootName == "" {
		rootName = "Root"
	}

	g.structs = nil
	g.imports = make(map[string]struct{})
	g.names = make(map[string]int)

	g.addStruct(root, exportedName(rootName, "Root"), true)
	return AnalysisResult{Structs: g.structs, Imports: g.imports}, nil
}

// addStruct registers a struct for m and returns its name.
func (g *Generator) addStruct(m *llsd.Map, name string, isRoot bool) string {
	name = g.uniqueName(name)
	idx := len(g.structs)
	g.structs = append(g.structs, StructDef{Name: name, IsRoot: isRoot})

	var fields []FieldInfo
	seen := make(map[string]int)
	i := 0
	m.Range(func(key string, v llsd.Value) bool {
		goName := exportedName(key, fmt.Sprintf("Field%d", i))
		if n := seen[goName]; n > 0 {
			seen[goName] = n + 1
			goName = fmt.Sprintf("%s%d", goName, n+1)
		} else {
			seen[goName] = 1
		}
		fields = append(fields, FieldInfo{
			Key:    key,
			GoName: goName,
			GoType: g.goType(v, name+goName),
			Tag:    fmt.Sprintf("`llsd:%q`", key),
		})
		i++
		return true
	})
	g.structs[idx].Fields = fields
	return name
}

// goType returns the Go type for v, registering nested structs under name.
func (g *Generator) goType(v llsd.Value, name string) string {
	switch x := v.(type) {
	case llsd.Boolean:
		return "bool"
	case llsd.Integer:
		return "int"
	case llsd.Real:
		return "float64"
	case llsd.String, llsd.URI:
		return "string"
	case llsd.UUID:
		g.imports["github.com/google/uuid"] = struct{}{}
		return "uuid.UUID"
	case llsd.Date:
		g.imports["time"] = struct{}{}
		return "time.Time"
	case llsd.Binary:
		return "[]byte"
	case *llsd.Map:
		return g.addStruct(x, name, false)
	case llsd.Array:
		if len(x) == 0 {
			return "[]any"
		}
		first := llsd.TypeOf(x[0])
		for _, e := range x[1:] {
			if llsd.TypeOf(e) != first {
				return "[]any"
			}
		}
		return "[]" + g.goType(x[0], name+"Item")
	default:
		return "any"
	}
}

func (g *Generator) uniqueName(name string) string {
	n := g.names[name]
	g.names[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s%d", name, n+1)
}

// exportedName converts a key to an exported Go identifier, using fallback
// when nothing usable remains.
func exportedName(key, fallback string) string {
	name := strcase.ToCamel(key)
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, name)
	if name == "" {
		return fallback
	}
	if first := []rune(name)[0]; !unicode.IsLetter(first) || !unicode.IsUpper(first) {
		name = "F" + name
	}
	return name
}

// GenerateStructs generates Go struct definitions from the analysis result
func (g *Generator) GenerateStructs(result AnalysisResult, packageName string) (string, error) {
	var buf bytes.Buffer

	// Write package declaration
	buf.WriteString(fmt.Sprintf("package %s\n", packageName))

	// Write imports if any
	if len(result.Imports) > 0 {
		buf.WriteString("\nimport (\n")

		// Sort imports for consistent output
		imports := make([]string, 0, len(result.Imports))
		stdLibImports := make([]string, 0)
		thirdPartyImports := make([]string, 0)

		for imp := range result.Imports {
			imports = append(imports, imp)
		}
		sort.Strings(imports)

		// Separate standard library imports from third-party imports
		for _, imp := range imports {
			if !strings.Contains(imp, ".") { // Standard library imports don't have dots
				stdLibImports = append(stdLibImports, imp)
			} else {
				thirdPartyImports = append(thirdPartyImports, imp)
			}
		}

		for _, imp := range stdLibImports {
			buf.WriteString(fmt.Sprintf("\t\"%s\"\n", imp))
		}
		if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
			buf.WriteString("\n")
		}
		for _, imp := range thirdPartyImports {
			buf.WriteString(fmt.Sprintf("\t\"%s\"\n", imp))
		}

		buf.WriteString(")\n")
	}

	// Root first, then nested structs by name
	sortedStructs := sortStructs(result.Structs)

	for i, structDef := range sortedStructs {
		if i == 0 {
			buf.WriteString("\n")
		}

		buf.WriteString(fmt.Sprintf("type %s struct {\n", structDef.Name))

		// Fields keep template order so encoding a value reproduces it

		// Calculate the maximum width for field names and types for proper alignment
		maxNameWidth := 0
		maxTypeWidth := 0
		for _, field := range structDef.Fields {
			if len(field.GoName) > maxNameWidth {
				maxNameWidth = len(field.GoName)
			}
			if len(field.GoType) > maxTypeWidth {
				maxTypeWidth = len(field.GoType)
			}
		}

		for _, field := range structDef.Fields {
			buf.WriteString(fmt.Sprintf("\t%-*s %-*s %s\n",
				maxNameWidth, field.GoName,
				maxTypeWidth, field.GoType,
				field.Tag))
		}

		buf.WriteString("}\n")

		if i < len(sortedStructs)-1 {
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// sortStructs sorts structs to ensure root structs come first, followed by nested structs
func sortStructs(structs []StructDef) []StructDef {
	sorted := make([]StructDef, len(structs))
	copy(sorted, structs)

	sort.SliceStable(sorted, func(i, j int) bool {
		// If one is root and the other is not, root comes first
		if sorted[i].IsRoot != sorted[j].IsRoot {
			return sorted[i].IsRoot
		}
		// Otherwise, sort alphabetically by name
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
