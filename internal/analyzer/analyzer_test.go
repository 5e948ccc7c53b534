package analyzer

import (
	"testing"

	"github.com/mcncl/llsdtool/internal/llsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_EqualTreesHaveNoDifferences(t *testing.T) {
	a := llsd.MapOf("x", llsd.Array{llsd.Integer(1)}, "y", llsd.MapOf("z", llsd.String("q")))
	b := llsd.MapOf("y", llsd.MapOf("z", llsd.String("q")), "x", llsd.Array{llsd.Integer(1)})

	assert.Empty(t, Diff(a, b))
	assert.Empty(t, Diff(nil, llsd.Undefined{}))
}

func TestDiff_Kinds(t *testing.T) {
	left := llsd.MapOf(
		"name", llsd.String("old"),
		"count", llsd.Integer(1),
		"gone", llsd.Boolean(true),
		"list", llsd.Array{llsd.Integer(1), llsd.Integer(2), llsd.Integer(3)},
	)
	right := llsd.MapOf(
		"name", llsd.String("new"),
		"count", llsd.String("1"),
		"list", llsd.Array{llsd.Integer(1), llsd.Integer(5)},
		"zeta", llsd.Integer(0),
		"added", llsd.Integer(0),
	)

	diffs := Diff(left, right)
	require.Len(t, diffs, 8)

	assert.Equal(t, Difference{Path: ".name", Kind: KindValue, Left: llsd.String("old"), Right: llsd.String("new")}, diffs[0])
	assert.Equal(t, ".count", diffs[1].Path)
	assert.Equal(t, KindType, diffs[1].Kind)
	assert.Equal(t, ".gone", diffs[2].Path)
	assert.Equal(t, KindMissingRight, diffs[2].Kind)
	assert.Equal(t, ".list[1]", diffs[3].Path)
	assert.Equal(t, KindValue, diffs[3].Kind)
	assert.Equal(t, ".list", diffs[4].Path)
	assert.Equal(t, KindLength, diffs[4].Kind)
	assert.Equal(t, ".list[2]", diffs[5].Path)
	assert.Equal(t, KindMissingRight, diffs[5].Kind)
	assert.Equal(t, ".added", diffs[6].Path, "right-only keys come last, sorted")
	assert.Equal(t, KindMissingLeft, diffs[6].Kind)
	assert.Equal(t, ".zeta", diffs[7].Path)
}

func TestDiff_OnlyRightKeysSorted(t *testing.T) {
	diffs := Diff(llsd.NewMap(), llsd.MapOf("b", llsd.Integer(1), "a", llsd.Integer(2)))
	require.Len(t, diffs, 2)
	assert.Equal(t, ".a", diffs[0].Path)
	assert.Equal(t, ".b", diffs[1].Path)
}

func TestDiff_AgreesWithEqual(t *testing.T) {
	pairs := [][2]llsd.Value{
		{llsd.Array{llsd.Integer(1), llsd.Integer(2)}, llsd.Array{llsd.Integer(2), llsd.Integer(1)}},
		{llsd.String("1"), llsd.Integer(1)},
		{llsd.URI("a"), llsd.URI("a")},
		{llsd.Binary{1}, llsd.Binary{1, 2}},
		{llsd.MapOf("k", llsd.Undefined{}), llsd.NewMap()},
	}
	for _, p := range pairs {
		assert.Equal(t, llsd.Equal(p[0], p[1]), len(Diff(p[0], p[1])) == 0, "%v vs %v", p[0], p[1])
	}
}

func TestDifference_String(t *testing.T) {
	assert.Equal(t, `<root>.a: "x" vs "y"`,
		Difference{Path: ".a", Kind: KindValue, Left: llsd.String("x"), Right: llsd.String("y")}.String())
	assert.Equal(t, "<root>: string vs integer",
		Difference{Kind: KindType, Left: llsd.String("1"), Right: llsd.Integer(1)}.String())
	assert.Equal(t, "<root>[3]: only on right (map)",
		Difference{Path: "[3]", Kind: KindMissingLeft, Right: llsd.NewMap()}.String())
	assert.Equal(t, "<root>.l: array length 1 vs 0",
		Difference{Path: ".l", Kind: KindLength, Left: llsd.Array{llsd.Integer(1)}, Right: llsd.Array{}}.String())
}

func TestExplain(t *testing.T) {
	template := llsd.MapOf(
		"controls", llsd.Integer(0),
		"whitelist", llsd.Array{llsd.String("")},
		"size", llsd.MapOf("width", llsd.Integer(0), "height", llsd.Integer(0)),
		"home_url", llsd.String(""),
	)
	test := llsd.MapOf(
		"controls", llsd.String("mini"),
		"whitelist", llsd.Array{llsd.Integer(3), llsd.Boolean(true)},
		"size", llsd.MapOf("width", llsd.Real(1.5), "height", llsd.Integer(2)),
		"extra", llsd.Boolean(true),
	)

	mismatches := Explain(test, template)
	require.Len(t, mismatches, 3)
	assert.Equal(t, Mismatch{Path: ".controls", Want: llsd.TypeInteger, Got: llsd.TypeString}, mismatches[0])
	assert.Equal(t, ".whitelist[0]", mismatches[1].Path)
	assert.Equal(t, ".size.width", mismatches[2].Path)
	assert.Equal(t, "<root>.size.width: expected integer, found real", mismatches[2].String())

	_, err := llsd.ConformError(test, template)
	require.Error(t, err)
	assert.Contains(t, err.Error(), mismatches[0].Path, "Conform stops at the first mismatch Explain reports")
}

func TestExplain_ConformantTree(t *testing.T) {
	template := llsd.MapOf("a", llsd.Array{llsd.Integer(0)})
	assert.Empty(t, Explain(llsd.MapOf("a", llsd.Array{}), template))
	assert.Empty(t, Explain(llsd.Undefined{}, template))

	_, ok := llsd.Conform(llsd.MapOf("a", llsd.Array{}), template)
	assert.True(t, ok)
}
