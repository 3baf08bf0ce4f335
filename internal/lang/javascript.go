package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "javascript",
		Extensions:    []string{".js", ".jsx", ".mjs", ".cjs"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      cFamilyKeywords,
		Imports:       jsImports,
		Functions:     jsFunctions,
		Body:          Braces,
	})
	register(&Language{
		Name:          "typescript",
		Extensions:    []string{".ts", ".tsx", ".mts", ".cts"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      cFamilyKeywords,
		Imports:       jsImports,
		Functions:     jsFunctions,
		Body:          Braces,
	})
}

var jsImports = []ImportRule{
	{Pattern: regexp.MustCompile(`\bimport\s+(?:type\s+)?(?:[\w$*{}\s,]+?\s+from\s+)?['"]([^'"]+)['"]`)},
	{Pattern: regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)},
	{Pattern: regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`)},
	{Pattern: regexp.MustCompile(`\bexport\s+(?:type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s+['"]([^'"]+)['"]`)},
	// closing line of a multi-line named import
	{Pattern: regexp.MustCompile(`^\s*\}\s*from\s+['"]([^'"]+)['"]`)},
}

var jsFunctions = []FunctionRule{
	{
		Pattern: regexp.MustCompile(`\bfunction\s*\*?\s*(?P<name>[A-Za-z_$][\w$]*)\s*\(`),
		Kind:    model.Function,
	},
	{
		Pattern: regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(?P<name>[A-Za-z_$][\w$]*)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::\s*[^=]+)?=>|[A-Za-z_$][\w$]*\s*=>)`),
		Kind:    model.Function,
	},
	{
		Pattern: regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|async|readonly|override|abstract|get|set)\s+)*\*?(?P<name>[A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*\([^)]*\)\s*(?::\s*[^{]+)?\{\s*$`),
		Kind:    model.Method,
		Guarded: true,
	},
}
