// Package normalize strips comments and string literal bodies from source
// text so that lexical counters only see live code.
//
// This is a lexical approximation, not a tokenizer. Known limitations:
//   - nested block comments end at the first "*/";
//   - regular-expression literals are treated as ordinary text, so quotes
//     or comment markers inside them are misread;
//   - raw or multi-line strings other than backtick literals are not
//     recognized;
//   - comment markers are stripped before strings, so "//" or "#" inside a
//     string literal truncates the rest of that line;
//   - a single quote always opens a literal, so Rust lifetimes ('a) and
//     apostrophes pair up: with two on one line the text between them,
//     keywords included, is emptied.
//
// Removed spans keep their newlines, so line numbers in the output match
// the input.
package normalize

import (
	"regexp"
	"strings"

	"github.com/phobologic/repolens/internal/lang"
	"github.com/phobologic/repolens/internal/model"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	stringRe       = regexp.MustCompile("\"(?:[^\"\\\\\\n]|\\\\.)*\"|'(?:[^'\\\\\\n]|\\\\.)*'|`(?:[^`\\\\]|\\\\.)*`")
)

// lineCommentRes caches one compiled pattern per marker set.
var lineCommentRes = map[string]*regexp.Regexp{}

func init() {
	for _, l := range lang.Languages {
		key := strings.Join(l.LineComments, "\x00")
		if _, ok := lineCommentRes[key]; ok || key == "" {
			continue
		}
		lineCommentRes[key] = compileLineComment(l.LineComments)
	}
}

func compileLineComment(markers []string) *regexp.Regexp {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return regexp.MustCompile(`(?:` + strings.Join(quoted, "|") + `)[^\n]*`)
}

// StripNoise removes comments and empties string literals in content.
// Languages without rules only get string stripping.
func StripNoise(content string, tag model.LanguageTag) string {
	if content == "" {
		return ""
	}
	if l := lang.Lookup(tag); l != nil {
		if re := lineCommentRes[strings.Join(l.LineComments, "\x00")]; re != nil {
			content = re.ReplaceAllString(content, "")
		}
		if l.BlockComments {
			content = blockCommentRe.ReplaceAllStringFunc(content, keepNewlines)
		}
	}
	return stringRe.ReplaceAllStringFunc(content, emptyLiteral)
}

// keepNewlines replaces a span with just the newlines it contained.
func keepNewlines(s string) string {
	return strings.Repeat("\n", strings.Count(s, "\n"))
}

// emptyLiteral keeps the delimiters of a string literal and drops its body.
func emptyLiteral(s string) string {
	q := s[:1]
	return q + keepNewlines(s) + q
}
