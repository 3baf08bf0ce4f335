package lang

import (
	"regexp"

	"github.com/phobologic/repolens/internal/model"
)

func init() {
	register(&Language{
		Name:          "go",
		Extensions:    []string{".go"},
		LineComments:  []string{"//"},
		BlockComments: true,
		Keywords:      []string{"if", "else", "for", "switch", "case", "select", "&&", "||"},
		ImportScanner: ScanGoImports,
		Functions: []FunctionRule{
			{
				Pattern: regexp.MustCompile(`^func\s+\([^)]*\)\s*(?P<name>[A-Za-z_]\w*)`),
				Kind:    model.Method,
			},
			{
				Pattern: regexp.MustCompile(`^func\s+(?P<name>[A-Za-z_]\w*)\s*[\[(]`),
				Kind:    model.Function,
			},
		},
		Body: Braces,
	})
}

// GoImportState is the state of the Go import scanner.
type GoImportState int

const (
	OutsideImportBlock GoImportState = iota
	InsideImportBlock
)

var (
	goSingleImportRe = regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goBlockOpenRe    = regexp.MustCompile(`^\s*import\s*\(`)
	goBlockSpecRe    = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"`)
	goBlockCloseRe   = regexp.MustCompile(`^\s*\)`)
)

// GoImportStep consumes one line and returns the next state together with
// the import path found on that line, if any.
func GoImportStep(state GoImportState, line string) (GoImportState, string) {
	switch state {
	case InsideImportBlock:
		if goBlockCloseRe.MatchString(line) {
			return OutsideImportBlock, ""
		}
		if m := goBlockSpecRe.FindStringSubmatch(line); m != nil {
			return InsideImportBlock, m[1]
		}
		return InsideImportBlock, ""
	default:
		if m := goSingleImportRe.FindStringSubmatch(line); m != nil {
			return OutsideImportBlock, m[1]
		}
		if goBlockOpenRe.MatchString(line) {
			// import ( "fmt" ) on one line
			rest := line[goBlockOpenRe.FindStringIndex(line)[1]:]
			if m := goBlockSpecRe.FindStringSubmatch(rest); m != nil {
				if goBlockCloseRe.MatchString(rest[len(m[0]):]) {
					return OutsideImportBlock, m[1]
				}
				return InsideImportBlock, m[1]
			}
			return InsideImportBlock, ""
		}
		return OutsideImportBlock, ""
	}
}

// ScanGoImports runs the import state machine over all lines.
func ScanGoImports(lines []string) []string {
	var (
		imports []string
		state   = OutsideImportBlock
		path    string
	)
	for _, line := range lines {
		state, path = GoImportStep(state, line)
		if path != "" {
			imports = append(imports, path)
		}
	}
	return imports
}
