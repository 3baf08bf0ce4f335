// Package stats aggregates file metadata per language.
package stats

import (
	"sort"

	"github.com/phobologic/repolens/internal/model"
)

// Languages computes per-language totals for files. Unclassified files are
// left out; percentages are of the classified lines and are zero when there
// are none.
func Languages(files []model.FileMetadata) []model.LanguageStat {
	byLang := make(map[model.LanguageTag]*model.LanguageStat)
	var totalLines int
	for i := range files {
		f := &files[i]
		if f.Language == "" {
			continue
		}
		s, ok := byLang[f.Language]
		if !ok {
			s = &model.LanguageStat{Language: f.Language}
			byLang[f.Language] = s
		}
		s.FileCount++
		s.TotalLines += f.LineCount
		s.TotalSize += f.ByteSize
		totalLines += f.LineCount
	}

	out := make([]model.LanguageStat, 0, len(byLang))
	for _, s := range byLang {
		if totalLines > 0 {
			s.Percentage = float64(s.TotalLines) * 100 / float64(totalLines)
		}
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalLines != out[j].TotalLines {
			return out[i].TotalLines > out[j].TotalLines
		}
		return out[i].Language < out[j].Language
	})
	return out
}
