// Package analyze runs the per-file analysis pipeline over a file set and
// assembles the repository-level report.
package analyze

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/repolens/internal/complexity"
	"github.com/phobologic/repolens/internal/graph"
	"github.com/phobologic/repolens/internal/lang"
	"github.com/phobologic/repolens/internal/logging"
	"github.com/phobologic/repolens/internal/manifest"
	"github.com/phobologic/repolens/internal/model"
	"github.com/phobologic/repolens/internal/parse"
	"github.com/phobologic/repolens/internal/stats"
)

// File computes the metadata of a single file. It is a pure function of
// its input.
func File(f model.SourceFile) model.FileMetadata {
	p := strings.ReplaceAll(f.Path, `\`, "/")
	base := path.Base(p)
	tag := lang.Classify(base)

	size := f.Size
	if size == 0 {
		size = int64(len(f.Content))
	}

	meta := model.FileMetadata{
		Filename:  base,
		Path:      p,
		Extension: strings.ToLower(strings.TrimPrefix(lang.Extension(base), ".")),
		Language:  tag,
		LineCount: lineCount(f.Content),
		ByteSize:  size,
		IsEmpty:   strings.TrimSpace(f.Content) == "",
		Imports:   parse.ExtractImports(f.Content, tag),
	}
	meta.Functions = complexity.Functions(f.Content, tag, parse.ExtractFunctions(f.Content, tag))
	meta.Complexity = complexity.Score(f.Content, tag)
	meta.ComplexityWeight = complexity.Weight(meta.Complexity)
	meta.ComplexityBand = complexity.BandOf(meta.Complexity)

	if meta.Imports == nil {
		meta.Imports = []string{}
	}
	if meta.Functions == nil {
		meta.Functions = []model.FunctionRecord{}
	}
	return meta
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}

// Analyzer runs File over many files concurrently.
type Analyzer struct {
	workers    int
	logger     *slog.Logger
	memo       *lru.Cache[string, model.FileMetadata]
	maxCycles  int
	includeDev bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of files analyzed at once (<= 0 means
// GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithLogger sets the logger used for warnings about skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithMemo keeps up to size per-file results keyed by path and content
// digest, reused by later runs of the same Analyzer.
func WithMemo(size int) Option {
	return func(a *Analyzer) {
		if size <= 0 {
			a.memo = nil
			return
		}
		a.memo, _ = lru.New[string, model.FileMetadata](size)
	}
}

// WithMaxCycles truncates the reported cycles (0 = no limit).
func WithMaxCycles(n int) Option {
	return func(a *Analyzer) {
		a.maxCycles = n
	}
}

// WithDevDependencies includes development dependencies in the unused
// dependency check.
func WithDevDependencies(include bool) Option {
	return func(a *Analyzer) {
		a.includeDev = include
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	return a
}

// Run analyzes files and builds the report. Manifests are parsed instead
// of analyzed as code. A file whose analysis fails is listed in
// Report.Skipped and the rest are still reported. When ctx is cancelled
// the report covers the files finished so far, repository-level analysis
// stops at the next stage boundary and ctx's error is returned alongside it.
func (a *Analyzer) Run(ctx context.Context, files []model.SourceFile) (*model.Report, error) {
	rep := &model.Report{
		Files:     []model.FileMetadata{},
		Manifests: []model.Manifest{},
	}

	var code []model.SourceFile
	for _, f := range files {
		if !manifest.IsManifest(f.Path) {
			code = append(code, f)
			continue
		}
		m := manifest.Parse(f.Path, f.Content)
		if m == nil {
			a.logger.Warn("unparseable manifest", "path", f.Path)
			rep.Skipped = append(rep.Skipped, f.Path)
			continue
		}
		rep.Manifests = append(rep.Manifests, *m)
	}

	results := make([]model.FileMetadata, len(code))
	done := make([]bool, len(code))
	failed := make([]bool, len(code))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range code {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta, err := a.analyzeOne(code[i])
			if err != nil {
				a.logger.Warn("skipping file", "path", code[i].Path, "error", err)
				failed[i] = true
				return nil
			}
			results[i] = meta
			done[i] = true
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	for i := range code {
		switch {
		case done[i]:
			rep.Files = append(rep.Files, results[i])
		case failed[i]:
			rep.Skipped = append(rep.Skipped, code[i].Path)
		}
	}

	if err := a.assemble(ctx, rep); runErr == nil {
		runErr = err
	}
	return rep, runErr
}

func (a *Analyzer) analyzeOne(f model.SourceFile) (meta model.FileMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	if a.memo == nil {
		return File(f), nil
	}
	key := memoKey(f)
	if cached, ok := a.memo.Get(key); ok {
		return cached, nil
	}
	meta = File(f)
	a.memo.Add(key, meta)
	return meta, nil
}

func memoKey(f model.SourceFile) string {
	sum := sha256.Sum256([]byte(f.Content))
	return fmt.Sprintf("%s\x00%d\x00%s", f.Path, f.Size, hex.EncodeToString(sum[:]))
}

// assemble runs the repository-level analyses once all files are in. ctx
// is checked between stages; results of the stages already run stay in rep.
func (a *Analyzer) assemble(ctx context.Context, rep *model.Report) error {
	imports := make([]graph.FileImports, len(rep.Files))
	for i := range rep.Files {
		f := &rep.Files[i]
		imports[i] = graph.FileImports{Path: f.Path, Language: f.Language, Imports: f.Imports}
	}

	rep.Cycles = []model.Cycle{}
	rep.Unused = []string{}
	rep.Languages = stats.Languages(rep.Files)
	rep.Graph = graph.BuildGraph(imports, goModules(rep.Manifests)...)
	if err := ctx.Err(); err != nil {
		return err
	}

	if cycles := graph.FindCycles(rep.Graph, a.maxCycles); len(cycles) > 0 {
		rep.Cycles = cycles
	}
	if a.maxCycles > 0 && len(rep.Cycles) == a.maxCycles {
		a.logger.Info("cycle limit reached", "max", a.maxCycles)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rep.Unused = a.unused(rep.Manifests, imports)
	rep.Ranks = graph.Rank(rep.Graph)
	return ctx.Err()
}

// goModules lists the Go modules declared by the go.mod manifests.
func goModules(manifests []model.Manifest) []graph.GoModule {
	var mods []graph.GoModule
	for _, m := range manifests {
		if m.Kind != model.GoModManifest || m.Name == "" {
			continue
		}
		dir := path.Dir(m.Path)
		if dir == "." {
			dir = ""
		}
		mods = append(mods, graph.GoModule{Dir: dir, Path: m.Name})
	}
	return mods
}

// manifestLanguages lists the languages whose imports can use the
// dependencies of each manifest kind.
var manifestLanguages = map[model.ManifestKind][]model.LanguageTag{
	model.PackageJSONManifest:  {"javascript", "typescript"},
	model.RequirementsManifest: {"python"},
	model.CargoManifestKind:    {"rust"},
	model.GoModManifest:        {"go"},
}

// unused checks each manifest against the files below its directory
// written in a language that manifest serves.
func (a *Analyzer) unused(manifests []model.Manifest, files []graph.FileImports) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range manifests {
		m := &manifests[i]
		dir := path.Dir(m.Path)
		langs := manifestLanguages[m.Kind]

		var scoped []graph.FileImports
		for _, f := range files {
			if !underDir(f.Path, dir) || !containsTag(langs, f.Language) {
				continue
			}
			scoped = append(scoped, f)
		}
		if len(scoped) == 0 {
			continue
		}

		var opts []graph.UnusedOption
		if m.Kind == model.RequirementsManifest {
			opts = append(opts, graph.IgnoreCase())
		}
		for _, name := range graph.FindUnused(manifest.DeclaredNames(m, a.includeDev), scoped, opts...) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func underDir(p, dir string) bool {
	return dir == "." || dir == "" || strings.HasPrefix(p, dir+"/")
}

func containsTag(tags []model.LanguageTag, tag model.LanguageTag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
