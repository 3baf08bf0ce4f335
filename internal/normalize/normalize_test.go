package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/repolens/internal/model"
)

func TestStripNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  model.LanguageTag
		in   string
		want string
	}{
		{"js line comment", "javascript", "a(); // if (x)\nb();", "a(); \nb();"},
		{"js block comment", "javascript", "a(/* if */ 1);", "a( 1);"},
		{"multi-line block keeps lines", "javascript", "a\n/* one\ntwo */b", "a\n\nb"},
		{"double quoted", "javascript", `x = "if && ||";`, `x = "";`},
		{"single quoted", "javascript", `x = 'while';`, `x = '';`},
		{"escaped quote", "javascript", `x = "a\"b" + y;`, `x = "" + y;`},
		{"backtick keeps lines", "javascript", "x = `a\nb`;", "x = `\n`;"},
		{"python hash", "python", "x = 1  # if y\nz = 2", "x = 1  \nz = 2"},
		{"python no block comments", "python", "a = b /* c */", "a = b /* c */"},
		{"ruby hash", "ruby", "foo # unless\nbar", "foo \nbar"},
		{"php both markers", "php", "a; // x\nb; # y\nc;", "a; \nb; \nc;"},
		{"go", "go", "if x { // else\n}", "if x { \n}"},
		{"unknown strips strings only", "", `// keep "drop"`, `// keep ""`},
		{"empty", "javascript", "", ""},
		{"rust lifetimes pair up", "rust", "fn f<'a>(x: &'a str) { if y {} }", "fn f<''a str) { if y {} }"},
		{"apostrophes swallow keywords", "python", "x = 1 if don't else won't", "x = 1 if don''t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripNoise(tt.in, tt.tag))
		})
	}
}

func TestStripNoisePreservesLineCount(t *testing.T) {
	t.Parallel()

	src := "function f() {\n  /* a\n  b\n  c */\n  return `x\ny`; // done\n}\n"
	out := StripNoise(src, "javascript")
	assert.Equal(t, strings.Count(src, "\n"), strings.Count(out, "\n"))
}

func TestStripNoiseIdempotent(t *testing.T) {
	t.Parallel()

	for _, tag := range []model.LanguageTag{"javascript", "python", "ruby", "go", "rust"} {
		src := "x = \"a // b\" # c\n/* d */ y = 'e' // f\n"
		once := StripNoise(src, tag)
		assert.Equal(t, once, StripNoise(once, tag), string(tag))
	}
}
