package generator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStructs_SimpleObject(t *testing.T) {
	analysisResult := AnalysisResult{
		Structs: []StructDef{
			{
				Name:   "Flags",
				IsRoot: true,
				Fields: []FieldInfo{
					{Key: "a", GoName: "A", GoType: "bool", Tag: "`llsd:\"a\"`"},
					{Key: "bb", GoName: "Bb", GoType: "int", Tag: "`llsd:\"bb\"`"},
				},
			},
		},
		Imports: map[string]struct{}{},
	}

	generator := NewGenerator()
	result, err := generator.GenerateStructs(analysisResult, "main")

	require.NoError(t, err)
	expectedCode := `package main

type Flags struct {
	A  bool ` + "`llsd:\"a\"`" + `
	Bb int  ` + "`llsd:\"bb\"`" + `
}
`
	assert.Equal(t, expectedCode, result)
}

func TestGenerateStructs_ImportsGrouped(t *testing.T) {
	analysisResult := AnalysisResult{
		Structs: []StructDef{
			{Name: "Zed", Fields: []FieldInfo{{GoName: "T", GoType: "time.Time", Tag: "`llsd:\"t\"`"}}},
			{Name: "Root", IsRoot: true, Fields: []FieldInfo{{GoName: "ID", GoType: "uuid.UUID", Tag: "`llsd:\"id\"`"}}},
		},
		Imports: map[string]struct{}{"time": {}, "github.com/google/uuid": {}},
	}

	result, err := NewGenerator().GenerateStructs(analysisResult, "models")
	require.NoError(t, err)
	expectedCode := `package models

import (
	"time"

	"github.com/google/uuid"
)

type Root struct {
	ID uuid.UUID ` + "`llsd:\"id\"`" + `
}

type Zed struct {
	T time.Time ` + "`llsd:\"t\"`" + `
}
`
	assert.Equal(t, expectedCode, result)
}

func TestAnalyze_Types(t *testing.T) {
	template := llsd.MapOf(
		"name", llsd.String(""),
		"count", llsd.Integer(0),
		"scale", llsd.Real(1),
		"home_url", llsd.URI(""),
		"region_id", llsd.UUID(uuid.Nil),
		"when", llsd.NewDate(time.Unix(0, 0)),
		"blob", llsd.Binary{},
		"tags", llsd.Array{llsd.String("")},
		"mixed", llsd.Array{llsd.Integer(0), llsd.String("")},
		"empty", llsd.Array{},
		"nothing", llsd.Undefined{},
		"enabled", llsd.Boolean(false),
	)

	result, err := NewGenerator().Analyze(template, "object")
	require.NoError(t, err)
	require.Len(t, result.Structs, 1)

	root := result.Structs[0]
	assert.Equal(t, "Object", root.Name)
	assert.True(t, root.IsRoot)

	types := make(map[string]string)
	var order []string
	for _, f := range root.Fields {
		types[f.Key] = f.GoType
		order = append(order, f.Key)
	}
	assert.Equal(t, template.Keys(), order, "fields follow template order")
	assert.Equal(t, map[string]string{
		"name":      "string",
		"count":     "int",
		"scale":     "float64",
		"home_url":  "string",
		"region_id": "uuid.UUID",
		"when":      "time.Time",
		"blob":      "[]byte",
		"tags":      "[]string",
		"mixed":     "[]any",
		"empty":     "[]any",
		"nothing":   "any",
		"enabled":   "bool",
	}, types)

	assert.Equal(t, map[string]struct{}{"time": {}, "github.com/google/uuid": {}}, result.Imports)
	assert.Equal(t, "HomeUrl", root.Fields[3].GoName)
	assert.Equal(t, "`llsd:\"home_url\"`", root.Fields[3].Tag)
}

func TestAnalyze_NestedStructs(t *testing.T) {
	template := llsd.MapOf(
		"sky", llsd.MapOf("haze", llsd.Real(0)),
		"frames", llsd.Array{llsd.MapOf("time", llsd.Real(0), "preset", llsd.String(""))},
	)

	result, err := NewGenerator().Analyze(template, "Environment")
	require.NoError(t, err)
	require.Len(t, result.Structs, 3)

	assert.Equal(t, "Environment", result.Structs[0].Name)
	assert.Equal(t, "EnvironmentSky", result.Structs[0].Fields[0].GoType)
	assert.Equal(t, "[]EnvironmentFramesItem", result.Structs[0].Fields[1].GoType)
	assert.Equal(t, "EnvironmentSky", result.Structs[1].Name)
	assert.Equal(t, "EnvironmentFramesItem", result.Structs[2].Name)
	assert.False(t, result.Structs[2].IsRoot)
}

func TestAnalyze_Names(t *testing.T) {
	template := llsd.MapOf(
		"9", llsd.Boolean(false),
		"", llsd.Boolean(false),
		"a-b", llsd.Integer(0),
		"a_b", llsd.Integer(0),
		"texture_id", llsd.Integer(0),
	)

	result, err := NewGenerator().Analyze(template, "")
	require.NoError(t, err)

	var names []string
	for _, f := range result.Structs[0].Fields {
		names = append(names, f.GoName)
	}
	assert.Equal(t, "Root", result.Structs[0].Name)
	assert.Equal(t, []string{"F9", "Field1", "AB", "AB2", "TextureId"}, names)
}

func TestAnalyze_RejectsNonMap(t *testing.T) {
	_, err := NewGenerator().Analyze(llsd.Array{}, "Root")
	assert.Error(t, err)
	_, err = NewGenerator().Analyze(nil, "Root")
	assert.Error(t, err)
}
