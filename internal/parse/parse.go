// Package parse extracts imports and function definitions from source text
// with per-language line rules.
package parse

import (
	"sort"
	"strings"

	"github.com/phobologic/repolens/internal/lang"
	"github.com/phobologic/repolens/internal/model"
)

// Lines splits content into physical lines without trailing carriage returns.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ExtractImports returns the unique module identifiers imported by content,
// sorted. Unknown languages yield nil. The text is scanned raw, so import
// statements inside comments or strings are picked up too.
func ExtractImports(content string, tag model.LanguageTag) []string {
	l := lang.Lookup(tag)
	if l == nil || content == "" {
		return nil
	}

	lines := Lines(content)
	var found []string
	if l.ImportScanner != nil {
		found = l.ImportScanner(lines)
	} else {
		found = applyImportRules(l.Imports, lines)
	}
	return dedupe(found)
}

func applyImportRules(rules []lang.ImportRule, lines []string) []string {
	var found []string
	for _, line := range lines {
		for _, rule := range rules {
			for _, m := range rule.Pattern.FindAllStringSubmatch(line, -1) {
				if rule.Split != nil {
					found = append(found, rule.Split(m[1])...)
				} else {
					found = append(found, m[1])
				}
			}
		}
	}
	return found
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ExtractFunctions returns one record per rule match, in line order. A line
// matched by several rules yields several records.
func ExtractFunctions(content string, tag model.LanguageTag) []model.FunctionRecord {
	l := lang.Lookup(tag)
	if l == nil || content == "" {
		return nil
	}

	var funcs []model.FunctionRecord
	for i, line := range Lines(content) {
		for _, rule := range l.Functions {
			rec, ok := matchFunction(rule, line, l.RecordIndent)
			if !ok {
				continue
			}
			rec.Line = i + 1
			funcs = append(funcs, rec)
		}
	}
	return funcs
}

func matchFunction(rule lang.FunctionRule, line string, recordIndent bool) (model.FunctionRecord, bool) {
	m := rule.Pattern.FindStringSubmatch(line)
	if m == nil {
		return model.FunctionRecord{}, false
	}

	groups := make(map[string]string, 3)
	for i, name := range rule.Pattern.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	name := groups["name"]
	if name == "" {
		return model.FunctionRecord{}, false
	}
	if rule.Guarded && (lang.IsControlFlow(name) || lang.IsControlFlow(groups["type"])) {
		return model.FunctionRecord{}, false
	}

	indent := Indent(line)
	kind := rule.Kind
	if rule.KindOf != nil {
		kind = rule.KindOf(groups, indent)
	}

	rec := model.FunctionRecord{Name: name, Kind: kind}
	if recordIndent {
		rec.Indent = &indent
	}
	return rec, true
}

// Indent returns the number of leading space or tab characters.
func Indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
