// Package lang provides the language registry: file classification and the
// per-language rule bundles used by the extractors and the complexity scorer.
package lang

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/phobologic/repolens/internal/model"
)

// BodyStyle describes how a function body is delimited.
type BodyStyle int

const (
	// Braces bodies run from the definition to its matching closing brace.
	Braces BodyStyle = iota
	// Indentation bodies end at the next non-blank line indented no deeper
	// than the definition.
	Indentation
	// EndKeyword bodies end at the first "end" aligned with the definition.
	EndKeyword
)

// ImportRule captures module identifiers from a single source line.
// Capture group 1 holds the identifier.
type ImportRule struct {
	Pattern *regexp.Regexp
	// Split expands one capture into several identifiers. Nil keeps it as is.
	Split func(string) []string
}

// FunctionRule recognizes a definition on a single line. The pattern must
// contain a named group "name"; an optional group "type" is checked against
// the control-flow denylist together with the name when Guarded is set.
type FunctionRule struct {
	Pattern *regexp.Regexp
	Kind    model.FunctionKind
	Guarded bool
	// KindOf overrides Kind using the named groups and the line's indent.
	KindOf func(groups map[string]string, indent int) model.FunctionKind
}

// Language bundles everything repolens knows about one language.
type Language struct {
	Name       model.LanguageTag
	Extensions []string

	// LineComments are markers that start a comment running to end of line.
	LineComments []string
	// BlockComments enables /* ... */ stripping.
	BlockComments bool

	// Keywords are the decision points counted by the complexity scorer.
	// Alphanumeric entries match as whole words, others literally.
	Keywords []string

	Imports []ImportRule
	// ImportScanner replaces Imports for languages that need state across lines.
	ImportScanner func(lines []string) []string

	Functions    []FunctionRule
	RecordIndent bool
	Body         BodyStyle

	keywordOnce sync.Once
	keywordRe   *regexp.Regexp
}

// KeywordPattern returns the compiled decision-point pattern (safe to share
// across goroutines).
func (l *Language) KeywordPattern() *regexp.Regexp {
	l.keywordOnce.Do(func() {
		l.keywordRe = compileKeywords(l.Keywords)
	})
	return l.keywordRe
}

func compileKeywords(keywords []string) *regexp.Regexp {
	var words, symbols []string
	for _, kw := range keywords {
		if isWord(kw) {
			words = append(words, regexp.QuoteMeta(kw))
		} else {
			symbols = append(symbols, regexp.QuoteMeta(kw))
		}
	}
	var alts []string
	if len(words) > 0 {
		alts = append(alts, `\b(?:`+strings.Join(words, "|")+`)\b`)
	}
	alts = append(alts, symbols...)
	if len(alts) == 0 {
		return regexp.MustCompile(`$^`)
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return s != ""
}

// Languages maps language tags to their rule bundles.
// Populated by init() functions in per-language files.
var Languages = map[model.LanguageTag]*Language{}

func register(l *Language) {
	Languages[l.Name] = l
}

// Lookup returns the rule bundle for tag, or nil when repolens has no rules
// for it.
func Lookup(tag model.LanguageTag) *Language {
	return Languages[tag]
}

// Names returns the sorted tags of all languages with extraction rules.
func Names() []string {
	names := make([]string, 0, len(Languages))
	for name := range Languages {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// ControlFlow lists keywords that brace-style function patterns can mistake
// for a definition name or return type.
var ControlFlow = map[string]struct{}{
	"if": {}, "else": {}, "elif": {}, "for": {}, "foreach": {}, "while": {},
	"do": {}, "switch": {}, "case": {}, "default": {}, "try": {}, "catch": {},
	"finally": {}, "using": {}, "return": {}, "new": {}, "delete": {},
	"throw": {}, "throws": {}, "sizeof": {}, "typeof": {}, "lock": {},
	"fixed": {}, "checked": {}, "unchecked": {}, "synchronized": {},
	"with": {}, "await": {}, "yield": {}, "goto": {}, "match": {},
	"select": {}, "defer": {}, "go": {}, "function": {},
}

// IsControlFlow reports whether word is a control-flow keyword.
func IsControlFlow(word string) bool {
	_, ok := ControlFlow[word]
	return ok
}

// indentIsMethod is the KindOf used by indentation-scoped languages: a
// definition nested under another block is reported as a method.
func indentIsMethod(_ map[string]string, indent int) model.FunctionKind {
	if indent > 0 {
		return model.Method
	}
	return model.Function
}

// Shared keyword sets.
var (
	cFamilyKeywords = []string{"if", "else", "for", "while", "do", "switch", "case", "catch", "?", "&&", "||"}
)
