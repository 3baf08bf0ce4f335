package analyze

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/repolens/internal/model"
)

const aJS = `import { b } from './b';
function foo(x) {
  if (x) {
    return b();
  }
}
`

const bJS = "export const b = () => 1;\n"

func TestFile(t *testing.T) {
	t.Parallel()

	meta := File(model.SourceFile{Path: `src\a.js`, Content: aJS})

	assert.Equal(t, "a.js", meta.Filename)
	assert.Equal(t, "src/a.js", meta.Path)
	assert.Equal(t, "js", meta.Extension)
	assert.Equal(t, model.LanguageTag("javascript"), meta.Language)
	assert.Equal(t, 6, meta.LineCount)
	assert.Equal(t, int64(len(aJS)), meta.ByteSize)
	assert.False(t, meta.IsEmpty)
	assert.Equal(t, []string{"./b"}, meta.Imports)
	require.Len(t, meta.Functions, 1)
	assert.Equal(t, "foo", meta.Functions[0].Name)
	assert.Equal(t, 2, meta.Functions[0].Line)
	assert.Equal(t, 2, meta.Complexity)
	assert.InDelta(t, 0.1, meta.ComplexityWeight, 1e-9)
	assert.Equal(t, model.BandLow, meta.ComplexityBand)
}

func TestFileUnclassified(t *testing.T) {
	t.Parallel()

	meta := File(model.SourceFile{Path: "notes.xyz", Content: "", Size: 42})
	assert.Equal(t, model.LanguageTag(""), meta.Language)
	assert.Equal(t, "xyz", meta.Extension)
	assert.True(t, meta.IsEmpty)
	assert.Zero(t, meta.LineCount)
	assert.Equal(t, int64(42), meta.ByteSize)
	assert.NotNil(t, meta.Imports)
	assert.NotNil(t, meta.Functions)
	assert.Equal(t, 1, meta.Complexity)
}

func TestRun(t *testing.T) {
	t.Parallel()

	rep, err := New(WithWorkers(2)).Run(context.Background(), []model.SourceFile{
		{Path: "a.js", Content: aJS},
		{Path: "b.js", Content: bJS},
	})
	require.NoError(t, err)

	require.Len(t, rep.Files, 2)
	assert.Equal(t, "a.js", rep.Files[0].Path)
	assert.Equal(t, "b.js", rep.Files[1].Path)
	assert.Equal(t, 1, rep.Files[1].Complexity)

	require.Len(t, rep.Graph.Edges, 1)
	assert.Equal(t, model.Edge{From: "a.js", To: "b.js", Import: "./b", Weight: 1}, rep.Graph.Edges[0])
	assert.Empty(t, rep.Cycles)
	assert.NotNil(t, rep.Cycles)
	assert.Empty(t, rep.Manifests)
	assert.Empty(t, rep.Unused)

	require.Len(t, rep.Languages, 1)
	assert.Equal(t, 2, rep.Languages[0].FileCount)
	assert.Greater(t, rep.Ranks["b.js"], rep.Ranks["a.js"])
}

func TestRunPreservesOrder(t *testing.T) {
	t.Parallel()

	var files []model.SourceFile
	for _, name := range []string{"z.py", "m.py", "a.py", "q.py", "b.py", "k.py"} {
		files = append(files, model.SourceFile{Path: name, Content: "x = 1\n"})
	}

	rep, err := New(WithWorkers(3)).Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, rep.Files, len(files))
	for i, f := range files {
		assert.Equal(t, f.Path, rep.Files[i].Path)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := New().Run(ctx, []model.SourceFile{{Path: "a.js", Content: aJS}})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.Empty(t, rep.Files)
}

func TestRunManifests(t *testing.T) {
	t.Parallel()

	rep, err := New().Run(context.Background(), []model.SourceFile{
		{Path: "package.json", Content: `{"name":"web","dependencies":{"react":"^18.0.0","left-pad":"1.0.0"},"devDependencies":{"jest":"29"}}`},
		{Path: "app.js", Content: "import React from 'react';\n"},
		{Path: "broken/package.json", Content: "{not json"},
	})
	require.NoError(t, err)

	require.Len(t, rep.Files, 1)
	assert.Equal(t, "app.js", rep.Files[0].Path)
	require.Len(t, rep.Manifests, 1)
	assert.Equal(t, "web", rep.Manifests[0].Name)
	assert.Equal(t, []string{"broken/package.json"}, rep.Skipped)
	assert.Equal(t, []string{"left-pad"}, rep.Unused)
}

func TestRunDevDependencies(t *testing.T) {
	t.Parallel()

	files := []model.SourceFile{
		{Path: "package.json", Content: `{"dependencies":{"react":"18"},"devDependencies":{"jest":"29"}}`},
		{Path: "app.js", Content: "import React from 'react';\n"},
	}

	rep, err := New(WithDevDependencies(true)).Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, []string{"jest"}, rep.Unused)
}

func TestRunUnusedScopedPerManifest(t *testing.T) {
	t.Parallel()

	rep, err := New().Run(context.Background(), []model.SourceFile{
		{Path: "web/package.json", Content: `{"dependencies":{"lodash":"4","react":"18"}}`},
		{Path: "web/app.js", Content: "import React from 'react';\n"},
		{Path: "api/app.js", Content: "const _ = require('lodash');\n"},
		{Path: "requirements.txt", Content: "requests\nflask==2.0\n"},
		{Path: "api/server.py", Content: "import flask\n"},
		{Path: "web/util.js", Content: "import requests from 'requests';\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lodash", "requests"}, rep.Unused)
}

func TestRunRequirementsIgnoreCase(t *testing.T) {
	t.Parallel()

	rep, err := New().Run(context.Background(), []model.SourceFile{
		{Path: "requirements.txt", Content: "Flask==2.0\nRequests\n"},
		{Path: "app.py", Content: "import flask\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Requests"}, rep.Unused)
}

func TestRunGoModuleImports(t *testing.T) {
	t.Parallel()

	rep, err := New().Run(context.Background(), []model.SourceFile{
		{Path: "go.mod", Content: "module example.com/shop\n\ngo 1.22\n\nrequire github.com/pkg/errors v0.9.1\n"},
		{Path: "main.go", Content: "package main\n\nimport (\n\t\"example.com/shop/errors\"\n\t\"github.com/pkg/errors\"\n)\n"},
		{Path: "errors/errors.go", Content: "package errors\n"},
	})
	require.NoError(t, err)

	var pairs []string
	for _, e := range rep.Graph.Edges {
		pairs = append(pairs, fmt.Sprintf("%s>%s external=%t", e.From, e.To, e.External))
	}
	assert.Equal(t, []string{
		"main.go>errors/errors.go external=false",
		"main.go>github.com/pkg/errors external=true",
	}, pairs)
	assert.Empty(t, rep.Unused)
}

func TestRunMaxCyclesDenseGraph(t *testing.T) {
	t.Parallel()

	const n = 30
	files := make([]model.SourceFile, n)
	for i := range files {
		var b strings.Builder
		for j := 0; j < n; j++ {
			if j != i {
				fmt.Fprintf(&b, "import './m%02d';\n", j)
			}
		}
		files[i] = model.SourceFile{Path: fmt.Sprintf("m%02d.js", i), Content: b.String()}
	}

	done := make(chan *model.Report, 1)
	go func() {
		rep, err := New(WithMaxCycles(10)).Run(context.Background(), files)
		assert.NoError(t, err)
		done <- rep
	}()

	select {
	case rep := <-done:
		require.Len(t, rep.Cycles, 10)
		assert.Equal(t, model.Cycle{"m00.js", "m01.js"}, rep.Cycles[0])
	case <-time.After(10 * time.Second):
		t.Fatal("analysis with a cycle limit did not finish")
	}
}

func TestRunMaxCycles(t *testing.T) {
	t.Parallel()

	files := []model.SourceFile{
		{Path: "a.js", Content: "import './b';\n"},
		{Path: "b.js", Content: "import './a';\n"},
		{Path: "c.js", Content: "import './d';\n"},
		{Path: "d.js", Content: "import './c';\n"},
	}

	rep, err := New().Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, []model.Cycle{{"a.js", "b.js"}, {"c.js", "d.js"}}, rep.Cycles)

	rep, err = New(WithMaxCycles(1)).Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, []model.Cycle{{"a.js", "b.js"}}, rep.Cycles)
}

func TestRunMemo(t *testing.T) {
	t.Parallel()

	a := New(WithMemo(8))
	files := []model.SourceFile{
		{Path: "a.js", Content: aJS},
		{Path: "b.js", Content: bJS},
	}

	first, err := a.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, a.memo.Len())

	second, err := a.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, 2, a.memo.Len())

	files[1].Content = bJS + "// changed\n"
	_, err = a.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 3, a.memo.Len())
}

func TestMemoDisabled(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New(WithMemo(0)).memo)
}
