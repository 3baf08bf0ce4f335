// Package complexity approximates McCabe cyclomatic complexity by counting
// decision-point keywords in comment- and string-free source text.
package complexity

import (
	"strings"

	"github.com/phobologic/repolens/internal/lang"
	"github.com/phobologic/repolens/internal/model"
	"github.com/phobologic/repolens/internal/normalize"
	"github.com/phobologic/repolens/internal/parse"
)

// Band thresholds. Scores up to LowThreshold are low, up to HighThreshold
// medium, above it high.
const (
	LowThreshold  = 10
	HighThreshold = 20
)

// fallback is the language whose keywords are used for unknown languages.
const fallback model.LanguageTag = "javascript"

func keywordLanguage(tag model.LanguageTag) *lang.Language {
	if l := lang.Lookup(tag); l != nil {
		return l
	}
	return lang.Lookup(fallback)
}

// Score returns 1 plus the number of decision keywords in content.
func Score(content string, tag model.LanguageTag) int {
	return 1 + count(normalize.StripNoise(content, tag), keywordLanguage(tag))
}

func count(clean string, l *lang.Language) int {
	if clean == "" {
		return 0
	}
	return len(l.KeywordPattern().FindAllStringIndex(clean, -1))
}

// BandOf buckets a score.
func BandOf(score int) model.ComplexityBand {
	switch {
	case score <= LowThreshold:
		return model.BandLow
	case score <= HighThreshold:
		return model.BandMedium
	default:
		return model.BandHigh
	}
}

// Weight maps a score onto [0, 1], saturating at HighThreshold.
func Weight(score int) float64 {
	if score <= 0 {
		return 0
	}
	w := float64(score) / HighThreshold
	if w > 1 {
		return 1
	}
	return w
}

// Functions returns a copy of funcs with EndLine and Complexity filled in
// from the body of each definition.
func Functions(content string, tag model.LanguageTag, funcs []model.FunctionRecord) []model.FunctionRecord {
	if len(funcs) == 0 {
		return funcs
	}
	l := lang.Lookup(tag)
	clean := parse.Lines(normalize.StripNoise(content, tag))
	kl := keywordLanguage(tag)

	out := make([]model.FunctionRecord, len(funcs))
	for i, fn := range funcs {
		out[i] = fn
		if fn.Line < 1 || fn.Line > len(clean) {
			continue
		}
		end := fn.Line
		if l != nil {
			end = bodyEnd(clean, fn.Line-1, l.Body) + 1
		}
		out[i].EndLine = end
		out[i].Complexity = 1 + count(strings.Join(clean[fn.Line-1:end], "\n"), kl)
	}
	return out
}

// braceLookahead bounds how far below a definition its opening brace may be.
const braceLookahead = 3

// bodyEnd returns the 0-based index of the last line of the body starting
// at line start.
func bodyEnd(lines []string, start int, style lang.BodyStyle) int {
	switch style {
	case lang.Indentation:
		return indentEnd(lines, start)
	case lang.EndKeyword:
		return keywordEnd(lines, start)
	default:
		return braceEnd(lines, start)
	}
}

func braceEnd(lines []string, start int) int {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		if !opened && i > start+braceLookahead {
			return start
		}
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				if opened {
					depth--
					if depth == 0 {
						return i
					}
				}
			case ';':
				if !opened {
					return i
				}
			}
		}
	}
	if !opened {
		return start
	}
	return len(lines) - 1
}

func indentEnd(lines []string, start int) int {
	base := parse.Indent(lines[start])
	last := start
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if parse.Indent(lines[i]) <= base {
			break
		}
		last = i
	}
	return last
}

func keywordEnd(lines []string, start int) int {
	base := parse.Indent(lines[start])
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if parse.Indent(lines[i]) == base && (trimmed == "end" || strings.HasPrefix(trimmed, "end ") || strings.HasPrefix(trimmed, "end.")) {
			return i
		}
	}
	return start
}
