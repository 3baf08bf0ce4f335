package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "java",
		Extensions:    []string{".java"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      cFamilyKeywords,
		Imports: []ImportRule{
			{Pattern: regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)},
		},
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?:(?:public|protected|private|static|final|abstract|synchronized|native|default|strictfp)\s+)*(?:<[^>]+>\s+)?(?P<type>[\w<>\[\],.?]+)\s+(?P<name>[A-Za-z_]\w*)\s*\([^;]*$`),
				Kind:    model.Method,
				Guarded: true,
			},
		},
		Body: Braces,
	})
}
