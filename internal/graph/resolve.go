package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/phobologic/repolens/internal/model"
)

// index locates analyzed files by exact path, by path without extension
// and by directory.
type index struct {
	exact map[string]struct{}
	stems map[string]string   // stem → first path with that stem
	dirs  map[string][]string // dir → paths in input order
	// sortedStems and sortedPaths support suffix lookups.
	sortedStems []string
	sortedPaths []string
	// goModules is ordered longest module path first.
	goModules []GoModule
}

// indexFiles are the conventional module entry points tried for a
// directory import.
var indexFiles = []string{"index", "__init__", "mod", "main", "lib"}

func newIndex(files []FileImports, modules []GoModule) *index {
	idx := &index{
		exact:     make(map[string]struct{}, len(files)),
		stems:     make(map[string]string, len(files)),
		dirs:      make(map[string][]string),
		goModules: append([]GoModule(nil), modules...),
	}
	sort.SliceStable(idx.goModules, func(i, j int) bool {
		return len(idx.goModules[i].Path) > len(idx.goModules[j].Path)
	})
	for _, f := range files {
		p := f.Path
		if _, dup := idx.exact[p]; !dup {
			idx.sortedPaths = append(idx.sortedPaths, p)
		}
		idx.exact[p] = struct{}{}
		stem := strings.TrimSuffix(p, path.Ext(p))
		if _, ok := idx.stems[stem]; !ok {
			idx.stems[stem] = p
			idx.sortedStems = append(idx.sortedStems, stem)
		}
		d := dirOf(p)
		idx.dirs[d] = append(idx.dirs[d], p)
	}
	sort.Strings(idx.sortedStems)
	sort.Strings(idx.sortedPaths)
	return idx
}

// lookup finds a file for a slash path that may omit its extension or name
// a directory with an entry-point file.
func (idx *index) lookup(p string) (string, bool) {
	p = strings.TrimPrefix(path.Clean(p), "./")
	if p == "." || p == "" || strings.HasPrefix(p, "../") {
		return "", false
	}
	if _, ok := idx.exact[p]; ok {
		return p, true
	}
	if target, ok := idx.stems[p]; ok {
		return target, true
	}
	for _, name := range indexFiles {
		if target, ok := idx.stems[p+"/"+name]; ok {
			return target, true
		}
	}
	return "", false
}

// lookupSuffix finds the first stem (or exact path) ending in "/"+p.
func (idx *index) lookupSuffix(p string) (string, bool) {
	if target, ok := idx.lookup(p); ok {
		return target, true
	}
	suffix := "/" + strings.TrimSuffix(p, path.Ext(p))
	for _, stem := range idx.sortedStems {
		if strings.HasSuffix(stem, suffix) {
			return idx.stems[stem], true
		}
	}
	return "", false
}

// goPackageFile returns a non-test Go file of directory dir, or its first
// test file.
func (idx *index) goPackageFile(dir string) (string, bool) {
	var test string
	for _, p := range idx.dirs[dir] {
		if path.Ext(p) != ".go" {
			continue
		}
		if !strings.HasSuffix(p, "_test.go") {
			return p, true
		}
		if test == "" {
			test = p
		}
	}
	return test, test != ""
}

type resolver func(idx *index, from FileImports, imp string) (string, bool)

// resolvers dispatches import resolution by language. Languages without an
// entry use resolveRelative.
var resolvers = map[model.LanguageTag]resolver{
	"javascript": resolveRelative,
	"typescript": resolveRelative,
	"python":     resolvePython,
	"ruby":       resolveRuby,
	"go":         resolveGo,
	"rust":       resolveRust,
	"java":       resolveNamespace("."),
	"csharp":     resolveNamespace("."),
	"php":        resolvePHP,
	"c":          resolveInclude,
	"cpp":        resolveInclude,
}

func (idx *index) resolve(from FileImports, imp string) (string, bool) {
	r, ok := resolvers[from.Language]
	if !ok {
		r = resolveRelative
	}
	return r(idx, from, imp)
}

func isRelative(imp string) bool {
	return strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../") || imp == "." || imp == ".."
}

// resolveRelative handles "./x" and "../x" against the importing file's
// directory and root-anchored paths; bare package names stay external.
func resolveRelative(idx *index, from FileImports, imp string) (string, bool) {
	switch {
	case isRelative(imp):
		return idx.lookup(path.Join(dirOf(from.Path), imp))
	case strings.HasPrefix(imp, "/"):
		return idx.lookup(strings.TrimPrefix(imp, "/"))
	case strings.Contains(imp, "/"):
		return idx.lookup(imp)
	}
	return "", false
}

// resolvePython handles relative imports against the package directory and
// absolute imports against the importing file's directory, each of its
// ancestors up to the repository root, then src/. A name found nowhere on
// that path stays external even if some other directory has a file of the
// same name.
func resolvePython(idx *index, from FileImports, imp string) (string, bool) {
	dots := len(imp) - len(strings.TrimLeft(imp, "."))
	rest := strings.ReplaceAll(imp[dots:], ".", "/")
	if dots > 0 {
		base := dirOf(from.Path)
		for i := 1; i < dots; i++ {
			base = dirOf(base)
		}
		return idx.lookup(path.Join(base, rest))
	}
	for d := dirOf(from.Path); ; d = dirOf(d) {
		if target, ok := idx.lookup(path.Join(d, rest)); ok {
			return target, true
		}
		if d == "" {
			break
		}
	}
	return idx.lookup(path.Join("src", rest))
}

func resolveRuby(idx *index, from FileImports, imp string) (string, bool) {
	if target, ok := idx.lookup(path.Join(dirOf(from.Path), imp)); ok {
		return target, true
	}
	if target, ok := idx.lookup(imp); ok {
		return target, true
	}
	return idx.lookup(path.Join("lib", imp))
}

// resolveGo maps an import inside one of the repository's modules to a
// file of the package directory it names. Everything else, standard
// library included, stays external.
func resolveGo(idx *index, _ FileImports, imp string) (string, bool) {
	for _, m := range idx.goModules {
		if m.Path == "" || (imp != m.Path && !strings.HasPrefix(imp, m.Path+"/")) {
			continue
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(imp, m.Path), "/")
		dir := path.Join(m.Dir, rel)
		if dir == "." {
			dir = ""
		}
		return idx.goPackageFile(dir)
	}
	return "", false
}

// resolveRust maps crate::a::b, self::x, super::x and mod declarations to
// files, dropping trailing item segments until a file matches.
func resolveRust(idx *index, from FileImports, imp string) (string, bool) {
	segs := strings.Split(strings.TrimPrefix(imp, "::"), "::")
	var base string
	switch segs[0] {
	case "crate":
		base, segs = crateRoot(from.Path), segs[1:]
	case "self":
		base, segs = dirOf(from.Path), segs[1:]
	case "super":
		base = dirOf(dirOf(from.Path))
		segs = segs[1:]
	default:
		if len(segs) != 1 {
			return "", false
		}
		// mod foo;
		base = dirOf(from.Path)
	}
	for n := len(segs); n > 0; n-- {
		if target, ok := idx.lookup(path.Join(base, path.Join(segs[:n]...))); ok {
			return target, true
		}
	}
	return "", false
}

// crateRoot returns the src directory enclosing p, or p's directory.
func crateRoot(p string) string {
	for d := dirOf(p); d != ""; d = dirOf(d) {
		if path.Base(d) == "src" {
			return d
		}
	}
	return dirOf(p)
}

func resolveNamespace(sep string) resolver {
	return func(idx *index, _ FileImports, imp string) (string, bool) {
		imp = strings.TrimSuffix(imp, sep+"*")
		return idx.lookupSuffix(strings.ReplaceAll(imp, sep, "/"))
	}
}

func resolvePHP(idx *index, from FileImports, imp string) (string, bool) {
	if strings.Contains(imp, ".") {
		// require/include of a file path
		if target, ok := idx.lookup(path.Join(dirOf(from.Path), imp)); ok {
			return target, true
		}
		return idx.lookup(imp)
	}
	return resolveNamespace(`\`)(idx, from, imp)
}

func resolveInclude(idx *index, from FileImports, imp string) (string, bool) {
	if target, ok := idx.lookup(path.Join(dirOf(from.Path), imp)); ok {
		return target, true
	}
	if _, ok := idx.exact[imp]; ok {
		return imp, true
	}
	suffix := "/" + imp
	for _, p := range idx.sortedPaths {
		if strings.HasSuffix(p, suffix) {
			return p, true
		}
	}
	return "", false
}
