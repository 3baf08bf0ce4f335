package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "rust",
		Extensions:    []string{".rs"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      []string{"if", "else", "for", "while", "loop", "match", "&&", "||"},
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?use\s+((?:::)?\w+(?:::\w+)*)`)},
			{Pattern: regexp.MustCompile(`^\s*extern\s+crate\s+(\w+)`)},
			{Pattern: regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)\s*;`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:default\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+(?P<name>[A-Za-z_]\w*)`),
				Kind:    model.Function,
				KindOf:  indentIsMethod,
			},
		},
		Body: Braces,
	})
}
