package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "php",
		Extensions:    []string{".php", ".phtml"},
		LineComments:  []string{"//", "#"},
		BlockComments: true,
		Keywords:      []string{"if", "elseif", "else", "for", "foreach", "while", "do", "switch", "case", "catch", "?", "&&", "||", "and", "or"},
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*use\s+\\?([A-Za-z_][\w\\]*)`)},
			{Pattern: regexp.MustCompile(`\b(?:require|include)(?:_once)?\s*\(?\s*['"]([^'"]+)['"]`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?P<mods>(?:(?:public|private|protected|static|abstract|final)\s+)*)function\s+&?(?P<name>[A-Za-z_]\w*)\s*\(`),
				Kind:    model.Function,
				KindOf: func(groups map[string]string, indent int) model.FunctionKind {
					if groups["mods"] != "" {
						return model.Method
					}
					return indentIsMethod(groups, indent)
				},
			},
		},
		Body: Braces,
	})
}
