// Package ranking narrows a report to the files worth showing.
package ranking

import (
	"sort"
	"strings"

	"github.com/phobologic/repolens/internal/discover"
	"github.com/phobologic/repolens/internal/model"
)

// SelectFiles returns a new Report with only the maxFiles highest-ranked
// files, ordered by rank. If maxFiles is <= 0 or >= len(files), rep is
// returned unchanged.
func SelectFiles(rep *model.Report, maxFiles int) *model.Report {
	if maxFiles <= 0 || maxFiles >= len(rep.Files) {
		return rep
	}
	files := append([]model.FileMetadata(nil), rep.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := rep.Ranks[files[i].Path], rep.Ranks[files[j].Path]
		if ri != rj {
			return ri > rj
		}
		return files[i].Path < files[j].Path
	})
	return restrict(rep, files[:maxFiles], false)
}

// Hotspots returns a new Report with the maxFiles most complex non-test
// files, most complex first. maxFiles <= 0 keeps every non-test file.
func Hotspots(rep *model.Report, maxFiles int) *model.Report {
	var files []model.FileMetadata
	for i := range rep.Files {
		if !discover.IsTestFile(rep.Files[i].Path) {
			files = append(files, rep.Files[i])
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Complexity != files[j].Complexity {
			return files[i].Complexity > files[j].Complexity
		}
		return files[i].Path < files[j].Path
	})
	if maxFiles > 0 && maxFiles < len(files) {
		files = files[:maxFiles]
	}
	return restrict(rep, files, false)
}

// FilterByFile returns a new Report containing only files whose path
// contains substr (case-insensitive), with every edge touching them.
func FilterByFile(rep *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileMetadata
	for i := range rep.Files {
		if strings.Contains(strings.ToLower(rep.Files[i].Path), lower) {
			files = append(files, rep.Files[i])
		}
	}
	return restrict(rep, files, true)
}

// restrict builds a report over files. Edges leaving a kept file always
// survive when they are external; local edges need both ends kept unless
// touching is set, in which case one kept end is enough.
func restrict(rep *model.Report, files []model.FileMetadata, touching bool) *model.Report {
	keep := make(map[string]struct{}, len(files))
	for i := range files {
		keep[files[i].Path] = struct{}{}
	}
	has := func(p string) bool {
		_, ok := keep[p]
		return ok
	}

	var edges []model.Edge
	endpoints := make(map[string]struct{})
	for _, e := range rep.Graph.Edges {
		from, to := has(e.From), has(e.To)
		var ok bool
		switch {
		case e.External:
			ok = from
		case touching:
			ok = from || to
		default:
			ok = from && to
		}
		if ok {
			edges = append(edges, e)
			endpoints[e.From] = struct{}{}
			endpoints[e.To] = struct{}{}
		}
	}

	var nodes []model.Node
	for _, n := range rep.Graph.Nodes {
		if _, ok := endpoints[n.ID]; ok || has(n.ID) {
			nodes = append(nodes, n)
		}
	}

	var cycles []model.Cycle
	for _, c := range rep.Cycles {
		all, some := true, false
		for _, id := range c {
			if has(id) {
				some = true
			} else {
				all = false
			}
		}
		if all || (touching && some) {
			cycles = append(cycles, c)
		}
	}

	var ranks map[string]float64
	if rep.Ranks != nil {
		ranks = make(map[string]float64, len(files))
		for p := range keep {
			if r, ok := rep.Ranks[p]; ok {
				ranks[p] = r
			}
		}
	}

	out := *rep
	out.Files = files
	out.Graph = model.DependencyGraph{Nodes: nodes, Edges: edges}
	out.Cycles = cycles
	out.Ranks = ranks
	return &out
}
