// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/phobologic/repolens/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format.
func Encode(rep *model.Report) string {
	parts := header(rep)
	parts = append(parts,
		filesSection(rep),
		functionsSection(rep.Files),
		dependenciesSection(rep),
		cyclesSection(rep),
		manifestsSection(rep),
		unusedSection(rep),
		languagesSection(rep),
	)
	if len(rep.Skipped) > 0 {
		parts = append(parts, skippedSection(rep))
	}
	return strings.Join(parts, "\n")
}

// EncodeDependencies renders only the dependency analysis of rep: cycles,
// manifests and unused declarations.
func EncodeDependencies(rep *model.Report) string {
	parts := header(rep)
	parts = append(parts,
		cyclesSection(rep),
		manifestsSection(rep),
		unusedSection(rep),
	)
	return strings.Join(parts, "\n")
}

// EncodeFile renders the metadata of a single file with its functions.
func EncodeFile(meta *model.FileMetadata) string {
	parts := []string{
		fmt.Sprintf("file: %s", encodeValue(meta.Path)),
		fmt.Sprintf("language: %s", languageValue(meta.Language)),
		fmt.Sprintf("lines: %d", meta.LineCount),
		fmt.Sprintf("complexity: %d", meta.Complexity),
		fmt.Sprintf("band: %s", meta.ComplexityBand),
		functionsSection([]model.FileMetadata{*meta}),
		Table("imports", []string{"import"}, column(meta.Imports)),
	}
	return strings.Join(parts, "\n")
}

// Table renders one tabular TOON block.
func Table(name string, columns []string, rows [][]string) string {
	return formatTabular(name, columns, rows)
}

func header(rep *model.Report) []string {
	parts := []string{fmt.Sprintf("repo: %s", encodeValue(rep.Repo))}
	if rep.Revision != "" {
		parts = append(parts, fmt.Sprintf("revision: %s", encodeValue(rep.Revision)))
	}
	return parts
}

func languageValue(tag model.LanguageTag) string {
	if tag == "" {
		return "null"
	}
	return encodeValue(string(tag))
}

func column(values []string) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v})
	}
	return rows
}

func filesSection(rep *model.Report) string {
	var rows [][]string
	for i := range rep.Files {
		f := &rep.Files[i]
		rows = append(rows, []string{
			f.Path,
			string(f.Language),
			strconv.Itoa(f.LineCount),
			strconv.Itoa(f.Complexity),
			string(f.ComplexityBand),
			fmt.Sprintf("%.4f", rep.Ranks[f.Path]),
		})
	}
	return formatTabular("files", []string{"path", "language", "lines", "complexity", "band", "rank"}, rows)
}

func functionsSection(files []model.FileMetadata) string {
	var rows [][]string
	for i := range files {
		f := &files[i]
		for j := range f.Functions {
			fn := &f.Functions[j]
			rows = append(rows, []string{
				f.Path,
				fn.Name,
				string(fn.Kind),
				strconv.Itoa(fn.Line),
				strconv.Itoa(fn.EndLine),
				strconv.Itoa(fn.Complexity),
			})
		}
	}
	return formatTabular("functions", []string{"file", "name", "kind", "line", "end", "complexity"}, rows)
}

func dependenciesSection(rep *model.Report) string {
	var rows [][]string
	for i := range rep.Graph.Edges {
		e := &rep.Graph.Edges[i]
		rows = append(rows, []string{e.From, e.To, e.Import, edgeKind(e)})
	}
	return formatTabular("dependencies", []string{"source", "target", "import", "kind"}, rows)
}

func cyclesSection(rep *model.Report) string {
	var rows [][]string
	for _, c := range rep.Cycles {
		rows = append(rows, []string{strconv.Itoa(len(c)), strings.Join(c, " -> ")})
	}
	return formatTabular("cycles", []string{"length", "files"}, rows)
}

func manifestsSection(rep *model.Report) string {
	var rows [][]string
	for i := range rep.Manifests {
		m := &rep.Manifests[i]
		rows = append(rows, []string{
			m.Path,
			string(m.Kind),
			m.Name,
			strconv.Itoa(len(m.Dependencies)),
			strconv.Itoa(len(m.DevDependencies)),
		})
	}
	return formatTabular("manifests", []string{"path", "kind", "name", "deps", "devDeps"}, rows)
}

func unusedSection(rep *model.Report) string {
	return formatTabular("unused", []string{"dependency"}, column(rep.Unused))
}

func languagesSection(rep *model.Report) string {
	var rows [][]string
	for i := range rep.Languages {
		s := &rep.Languages[i]
		rows = append(rows, []string{
			string(s.Language),
			strconv.Itoa(s.FileCount),
			strconv.Itoa(s.TotalLines),
			strconv.FormatInt(s.TotalSize, 10),
			fmt.Sprintf("%.2f", s.Percentage),
		})
	}
	return formatTabular("languages", []string{"language", "files", "lines", "bytes", "percent"}, rows)
}

func skippedSection(rep *model.Report) string {
	skipped := append([]string(nil), rep.Skipped...)
	sort.Strings(skipped)
	return formatTabular("skipped", []string{"path"}, column(skipped))
}

func edgeKind(e *model.Edge) string {
	if e.External {
		return "external"
	}
	return "local"
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
