package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "csharp",
		Extensions:    []string{".cs", ".csx"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      []string{"if", "else", "for", "foreach", "while", "do", "switch", "case", "catch", "?", "&&", "||"},
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*(?:global\s+)?using\s+(?:static\s+)?(?:\w+\s*=\s*)?([\w.]+)\s*;`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?:(?:public|protected|private|internal|static|virtual|override|abstract|sealed|async|extern|unsafe|new|partial|readonly)\s+)*(?P<type>[\w<>\[\],.?]+)\s+(?P<name>[A-Za-z_]\w*)\s*(?:<[^>]*>)?\s*\([^;]*$`),
				Kind:    model.Method,
				Guarded: true,
			},
		},
		Body: Braces,
	})
}
