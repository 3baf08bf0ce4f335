// Package graph builds the import graph of an analyzed file set and runs
// cycle, unused-dependency and centrality analysis over it.
package graph

import (
	"path"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/phobologic/repolens/internal/model"
)

// FileImports is the per-file input of BuildGraph.
type FileImports struct {
	Path     string
	Language model.LanguageTag
	Imports  []string
}

// GoModule is a Go module rooted at Dir (slash path, "" for the repository
// root) with the module path declared in its go.mod.
type GoModule struct {
	Dir  string
	Path string
}

// BuildGraph creates one node per file and one edge per import. Imports
// that resolve to another analyzed file become local edges; the rest point
// at an external node keyed by the raw import string. Go imports resolve
// only inside the given modules.
func BuildGraph(files []FileImports, modules ...GoModule) model.DependencyGraph {
	idx := newIndex(files, modules)

	g := model.DependencyGraph{
		Nodes: make([]model.Node, 0, len(files)),
	}
	for _, f := range files {
		g.Nodes = append(g.Nodes, model.Node{ID: f.Path})
	}

	external := make(map[string]struct{})
	for _, f := range files {
		for _, imp := range f.Imports {
			if target, ok := idx.resolve(f, imp); ok {
				g.Edges = append(g.Edges, model.Edge{From: f.Path, To: target, Import: imp, Weight: 1})
				continue
			}
			g.Edges = append(g.Edges, model.Edge{From: f.Path, To: imp, Import: imp, External: true, Weight: 1})
			if _, seen := external[imp]; !seen {
				external[imp] = struct{}{}
				g.Nodes = append(g.Nodes, model.Node{ID: imp, External: true})
			}
		}
	}
	return g
}

// LocalEdges returns the file-to-file edges of g.
func LocalEdges(g model.DependencyGraph) []model.Edge {
	var local []model.Edge
	for _, e := range g.Edges {
		if !e.External {
			local = append(local, e)
		}
	}
	return local
}

// localGraph maps file nodes to dense gonum IDs in node order.
type localGraph struct {
	directed  *simple.DirectedGraph
	ids       map[string]int64
	paths     []string
	adj       [][]int64 // sorted successors, self edges excluded
	selfLoops map[int64]bool
}

func toLocalGraph(g model.DependencyGraph) *localGraph {
	lg := &localGraph{
		directed:  simple.NewDirectedGraph(),
		ids:       make(map[string]int64),
		selfLoops: make(map[int64]bool),
	}
	for _, n := range g.Nodes {
		if n.External {
			continue
		}
		if _, dup := lg.ids[n.ID]; dup {
			continue
		}
		id := int64(len(lg.paths))
		lg.ids[n.ID] = id
		lg.paths = append(lg.paths, n.ID)
		lg.directed.AddNode(simple.Node(id))
	}
	lg.adj = make([][]int64, len(lg.paths))

	for _, e := range LocalEdges(g) {
		from, fromOK := lg.ids[e.From]
		to, toOK := lg.ids[e.To]
		if !fromOK || !toOK {
			continue
		}
		// gonum simple graphs reject self edges; they are tracked separately
		if from == to {
			lg.selfLoops[from] = true
			continue
		}
		if lg.directed.HasEdgeFromTo(from, to) {
			continue
		}
		lg.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		lg.adj[from] = append(lg.adj[from], to)
	}
	for _, succ := range lg.adj {
		sort.Slice(succ, func(i, j int) bool { return succ[i] < succ[j] })
	}
	return lg
}

// FindCycles reports the elementary cycles among local edges, including
// self-imports. Each cycle starts at its participant that comes first in
// node order; cycles are ordered by their participants' positions, a
// shorter cycle first when one is a prefix of another. With limit > 0 the
// search stops after the first limit cycles in that order.
func FindCycles(g model.DependencyGraph, limit int) []model.Cycle {
	lg := toLocalGraph(g)
	if len(lg.paths) == 0 {
		return nil
	}

	c := newCircuits(lg, limit)
	for s := range lg.paths {
		if c.full() {
			break
		}
		c.from(int64(s))
	}

	out := make([]model.Cycle, 0, len(c.cycles))
	for _, ids := range c.cycles {
		cycle := make(model.Cycle, len(ids))
		for i, id := range ids {
			cycle[i] = lg.paths[id]
		}
		out = append(out, cycle)
	}
	return out
}

// circuits enumerates elementary cycles with Johnson's algorithm. Cycles
// are found least vertex first, restricted to that vertex's strongly
// connected component, and successors are visited in ascending order, so
// they come out already sorted and the search can stop at a limit.
type circuits struct {
	lg      *localGraph
	limit   int
	comp    []int
	members [][]int64

	start    int64
	blocked  []bool
	blockMap []map[int64]struct{}
	stack    []int64
	cycles   [][]int64
}

func newCircuits(lg *localGraph, limit int) *circuits {
	n := len(lg.paths)
	c := &circuits{
		lg:       lg,
		limit:    limit,
		comp:     make([]int, n),
		blocked:  make([]bool, n),
		blockMap: make([]map[int64]struct{}, n),
	}
	for i, scc := range topo.TarjanSCC(lg.directed) {
		ids := make([]int64, len(scc))
		for j, node := range scc {
			ids[j] = node.ID()
			c.comp[node.ID()] = i
		}
		c.members = append(c.members, ids)
	}
	for i := range c.blockMap {
		c.blockMap[i] = make(map[int64]struct{})
	}
	return c
}

func (c *circuits) full() bool {
	return c.limit > 0 && len(c.cycles) >= c.limit
}

func (c *circuits) emit() {
	c.cycles = append(c.cycles, append([]int64(nil), c.stack...))
}

// from finds every cycle whose least vertex is s.
func (c *circuits) from(s int64) {
	c.start = s
	if c.lg.selfLoops[s] {
		c.stack = append(c.stack[:0], s)
		c.emit()
		c.stack = c.stack[:0]
		if c.full() {
			return
		}
	}
	scc := c.members[c.comp[s]]
	if len(scc) < 2 {
		return
	}
	for _, v := range scc {
		c.blocked[v] = false
		clear(c.blockMap[v])
	}
	c.circuit(s)
	c.stack = c.stack[:0]
}

func (c *circuits) inScope(w int64) bool {
	return w >= c.start && c.comp[w] == c.comp[c.start]
}

func (c *circuits) circuit(v int64) bool {
	found := false
	c.stack = append(c.stack, v)
	c.blocked[v] = true
	for _, w := range c.lg.adj[v] {
		if c.full() {
			break
		}
		if !c.inScope(w) {
			continue
		}
		if w == c.start {
			c.emit()
			found = true
		} else if !c.blocked[w] && c.circuit(w) {
			found = true
		}
	}
	if found {
		c.unblock(v)
	} else {
		for _, w := range c.lg.adj[v] {
			if c.inScope(w) {
				c.blockMap[w][v] = struct{}{}
			}
		}
	}
	c.stack = c.stack[:len(c.stack)-1]
	return found
}

func (c *circuits) unblock(u int64) {
	c.blocked[u] = false
	for w := range c.blockMap[u] {
		delete(c.blockMap[u], w)
		if c.blocked[w] {
			c.unblock(w)
		}
	}
}

// UnusedOption adjusts how FindUnused matches names.
type UnusedOption func(*unusedMatcher)

type unusedMatcher struct {
	foldCase bool
}

// IgnoreCase matches dependency names and imports case-insensitively, as
// the Python package index treats project names.
func IgnoreCase() UnusedOption {
	return func(m *unusedMatcher) {
		m.foldCase = true
	}
}

// FindUnused returns the declared dependencies, in the given order, that no
// file imports. A dependency counts as used when an import equals it or
// names a subpath, submodule or item of it ("lodash/fp", "yaml.loader",
// "serde::Deserialize"); hyphens and underscores are interchangeable, and
// with IgnoreCase so is letter case. Scoped packages such as "@scope/pkg"
// are matched as whole names.
func FindUnused(deps []string, files []FileImports, opts ...UnusedOption) []string {
	var m unusedMatcher
	for _, opt := range opts {
		opt(&m)
	}

	var imports []string
	for _, f := range files {
		for _, imp := range f.Imports {
			if m.foldCase {
				imp = strings.ToLower(imp)
			}
			imports = append(imports, imp)
		}
	}

	unused := make([]string, 0)
	for _, dep := range deps {
		name := dep
		if m.foldCase {
			name = strings.ToLower(dep)
		}
		if !isImported(name, imports) {
			unused = append(unused, dep)
		}
	}
	return unused
}

func isImported(dep string, imports []string) bool {
	alt := strings.ReplaceAll(dep, "-", "_")
	for _, imp := range imports {
		if usesDependency(dep, imp) || (alt != dep && usesDependency(alt, imp)) {
			return true
		}
	}
	return false
}

func usesDependency(dep, imp string) bool {
	if imp == dep {
		return true
	}
	for _, sep := range []string{"/", ".", "::"} {
		if strings.HasPrefix(imp, dep+sep) {
			return true
		}
	}
	return false
}

// Rank computes PageRank over the local edges of g. Without local edges
// every file gets the same rank.
func Rank(g model.DependencyGraph) map[string]float64 {
	lg := toLocalGraph(g)
	n := len(lg.paths)
	if n == 0 {
		return nil
	}

	ranks := make(map[string]float64, n)
	if lg.directed.Edges().Len() == 0 {
		uniform := 1.0 / float64(n)
		for _, p := range lg.paths {
			ranks[p] = uniform
		}
		return ranks
	}

	for id, r := range network.PageRank(lg.directed, 0.85, 1e-6) {
		ranks[lg.paths[id]] = r
	}
	return ranks
}

// dirOf returns the slash-separated directory of p, "" at the root.
func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}
