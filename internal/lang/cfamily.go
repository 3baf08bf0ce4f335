package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "c",
		Extensions:    []string{".c", ".h"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      cFamilyKeywords,
		Imports:       includeImports,
		Functions: []FunctionRule{
			{
				// top-level definitions start in column 0
				Pattern: regexp.MustCompile(`^(?:(?:static|inline|extern|const|unsigned|signed|struct|enum|volatile|register)\s+)*(?P<type>[A-Za-z_]\w*(?:\s*\*+)?)\s+\**(?P<name>[A-Za-z_]\w*)\s*\([^;]*$`),
				Kind:    model.Function,
				Guarded: true,
			},
		},
		Body: Braces,
	})
	register(&Language{
		Name:          "cpp",
		Extensions:    []string{".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".h++"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      cFamilyKeywords,
		Imports:       includeImports,
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^\s*(?:(?:static|inline|extern|const|virtual|constexpr|explicit|friend|unsigned|signed)\s+)*(?:template\s*<[^>]*>\s*)?(?P<type>[\w:<>,]+(?:\s*[*&]+)?)\s+[*&]*(?P<name>~?[A-Za-z_]\w*(?:::~?[A-Za-z_]\w*)*)\s*\([^;]*$`),
				Kind:    model.Function,
				Guarded: true,
				KindOf: func(groups map[string]string, indent int) model.FunctionKind {
					if strings.Contains(groups["name"], "::") {
						return model.Method
					}
					return indentIsMethod(groups, indent)
				},
			},
		},
		Body: Braces,
	})
}

var includeImports = []ImportRule{
	{Pattern: regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)},
}
