package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:         "ruby",
		Extensions:   []string{".rb", ".rake", ".gemspec"},
		LineComments: []string{"#"},
		Keywords:     []string{"if", "elsif", "else", "unless", "for", "while", "until", "case", "when", "rescue", "and", "or", "&&", "||"},
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*require(?:_relative)?\s*\(?\s*['"]([^'"]+)['"]`)},
			{Pattern: regexp.MustCompile(`^\s*load\s*\(?\s*['"]([^'"]+)['"]`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*def\s+(?P<self>self\.)?(?P<name>[A-Za-z_]\w*[?!=]?)`),
				Kind:    model.Function,
				KindOf: func(groups map[string]string, indent int) model.FunctionKind {
					if groups["self"] != "" {
						return model.Method
					}
					return indentIsMethod(groups, indent)
				},
			},
		},
		RecordIndent: true,
		Body:         EndKeyword,
	})
}
