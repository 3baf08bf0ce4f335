package complexity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/repolens/internal/model"
	"github.com/phobologic/repolens/internal/parse"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  model.LanguageTag
		src  string
		want int
	}{
		{"empty", "javascript", "", 1},
		{"straight line", "javascript", "const x = 1;\n", 1},
		{"branches", "javascript", "if (a && b) { } else { }", 4},
		{"ternary", "typescript", "const y = ok ? 1 : 2;", 2},
		{"comment immune", "javascript", "// if while for\nx = 1; /* && || */", 1},
		{"string immune", "javascript", "x = 'if && ||' + \"while\";", 1},
		{"whole words only", "javascript", "verify(notify, lifetime);", 1},
		{"python", "python", "if a and b:\n    pass\nelif c:\n    pass\n", 4},
		{"python comment", "python", "x = 1  # if or and\n", 1},
		{"ruby", "ruby", "unless done\n  retry\nend\nitems.each { |i| puts i if i }", 3},
		{"go", "go", "for i := range xs {\n\tswitch {\n\tcase i > 0:\n\t}\n}", 4},
		{"rust", "rust", "match x {\n  _ => loop {}\n}", 3},
		{"unknown uses javascript keywords", "", "if (x) { y() }", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Score(tt.src, tt.tag))
		})
	}
}

func TestScoreMonotonic(t *testing.T) {
	t.Parallel()

	src := "function f(x) {\n  return x;\n}\n"
	base := Score(src, "javascript")
	for i := 1; i <= 5; i++ {
		more := src + strings.Repeat("if (x) { x++; }\n", i)
		assert.Equal(t, base+i, Score(more, "javascript"))
	}
}

func TestBandOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.BandLow, BandOf(1))
	assert.Equal(t, model.BandLow, BandOf(10))
	assert.Equal(t, model.BandMedium, BandOf(11))
	assert.Equal(t, model.BandMedium, BandOf(20))
	assert.Equal(t, model.BandHigh, BandOf(21))
}

func TestWeight(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Weight(0), 1e-9)
	assert.InDelta(t, 0.05, Weight(1), 1e-9)
	assert.InDelta(t, 0.5, Weight(10), 1e-9)
	assert.InDelta(t, 1.0, Weight(20), 1e-9)
	assert.InDelta(t, 1.0, Weight(40), 1e-9)
}

func TestFunctionsBraces(t *testing.T) {
	t.Parallel()

	src := "function a(x) {\n  if (x) {\n    return 1;\n  }\n  return 2;\n}\nfunction b() { return 0; }\n"
	got := Functions(src, "javascript", parse.ExtractFunctions(src, "javascript"))
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, 6, got[0].EndLine)
	assert.Equal(t, 2, got[0].Complexity)

	assert.Equal(t, "b", got[1].Name)
	assert.Equal(t, 7, got[1].EndLine)
	assert.Equal(t, 1, got[1].Complexity)
}

func TestFunctionsBraceInComment(t *testing.T) {
	t.Parallel()

	src := "function a() {\n  // }\n  if (x) {}\n}\n"
	got := Functions(src, "javascript", parse.ExtractFunctions(src, "javascript"))
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].EndLine)
	assert.Equal(t, 2, got[0].Complexity)
}

func TestFunctionsIndentation(t *testing.T) {
	t.Parallel()

	src := "def f(x):\n    if x:\n        return 1\n    return 2\n\ndef g():\n    pass\n"
	got := Functions(src, "python", parse.ExtractFunctions(src, "python"))
	require.Len(t, got, 2)

	assert.Equal(t, 4, got[0].EndLine)
	assert.Equal(t, 2, got[0].Complexity)
	assert.Equal(t, 7, got[1].EndLine)
	assert.Equal(t, 1, got[1].Complexity)
}

func TestFunctionsEndKeyword(t *testing.T) {
	t.Parallel()

	src := "def run\n  if ok\n    go\n  end\nend\n"
	got := Functions(src, "ruby", parse.ExtractFunctions(src, "ruby"))
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].EndLine)
	assert.Equal(t, 2, got[0].Complexity)
}

func TestFunctionsDeclarationOnly(t *testing.T) {
	t.Parallel()

	src := "void f(int);\nint y;\n"
	got := Functions(src, "c", []model.FunctionRecord{{Name: "f", Line: 1, Kind: model.Function}})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].EndLine)
	assert.Equal(t, 1, got[0].Complexity)
}

func TestFunctionsOutOfRange(t *testing.T) {
	t.Parallel()

	in := []model.FunctionRecord{{Name: "ghost", Line: 99}}
	got := Functions("x\n", "javascript", in)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].EndLine)
	assert.Zero(t, got[0].Complexity)
	assert.Empty(t, Functions("x", "javascript", nil))
}
