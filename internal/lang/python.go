package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:         "python",
		Extensions:   []string{".py", ".pyw", ".pyi"},
		LineComments: []string{"#"},
		Keywords:     []string{"if", "elif", "else", "for", "while", "except", "and", "or"},
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*import\s+(.+)$`), Split: splitPythonImports},
			{Pattern: regexp.MustCompile(`^\s*from\s+(\.*[\w.]*)\s+import\b`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?:async\s+)?def\s+(?P<name>[A-Za-z_]\w*)\s*\(`),
				Kind:    model.Function,
				KindOf:  indentIsMethod,
			},
		},
		RecordIndent: true,
		Body:         Indentation,
	})
}

var pythonModuleRe = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)

// splitPythonImports expands "import a, b.c as d" into its module names.
func splitPythonImports(s string) []string {
	var mods []string
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if pythonModuleRe.MatchString(fields[0]) {
			mods = append(mods, fields[0])
		}
	}
	return mods
}
