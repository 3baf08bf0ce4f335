// Package model defines core data structures for repolens.
package model

import "encoding/json"

// LanguageTag identifies the language of a file. The empty tag means the
// file could not be classified and is encoded as null.
type LanguageTag string

// MarshalJSON encodes the empty tag as null.
func (t LanguageTag) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// MarshalYAML encodes the empty tag as null.
func (t LanguageTag) MarshalYAML() (any, error) {
	if t == "" {
		return nil, nil
	}
	return string(t), nil
}

// FunctionKind distinguishes free functions from methods.
type FunctionKind string

const (
	Function FunctionKind = "function"
	Method   FunctionKind = "method"
)

// FunctionRecord is a function or method definition found in a file.
// Line and EndLine are 1-based and refer to the original source text.
type FunctionRecord struct {
	Name       string       `json:"name" yaml:"name"`
	Line       int          `json:"line" yaml:"line"`
	Kind       FunctionKind `json:"kind" yaml:"kind"`
	Indent     *int         `json:"indent,omitempty" yaml:"indent,omitempty"`
	EndLine    int          `json:"endLine,omitempty" yaml:"endLine,omitempty"`
	Complexity int          `json:"complexity,omitempty" yaml:"complexity,omitempty"`
}

// ComplexityBand buckets a complexity score.
type ComplexityBand string

const (
	BandLow    ComplexityBand = "low"
	BandMedium ComplexityBand = "medium"
	BandHigh   ComplexityBand = "high"
)

// FileMetadata is the analysis result for a single file.
type FileMetadata struct {
	Filename         string           `json:"filename" yaml:"filename"`
	Path             string           `json:"path" yaml:"path"`
	Extension        string           `json:"extension" yaml:"extension"`
	Language         LanguageTag      `json:"language" yaml:"language"`
	LineCount        int              `json:"lineCount" yaml:"lineCount"`
	ByteSize         int64            `json:"byteSize" yaml:"byteSize"`
	IsEmpty          bool             `json:"isEmpty" yaml:"isEmpty"`
	Imports          []string         `json:"imports" yaml:"imports"`
	Functions        []FunctionRecord `json:"functions" yaml:"functions"`
	Complexity       int              `json:"complexity" yaml:"complexity"`
	ComplexityWeight float64          `json:"complexityWeight" yaml:"complexityWeight"`
	ComplexityBand   ComplexityBand   `json:"complexityBand" yaml:"complexityBand"`
}

// SourceFile is a file supplied for analysis. Size is the size reported by
// the fetching side; zero means len(Content).
type SourceFile struct {
	Path    string
	Content string
	Size    int64
}

// Wildcard is the version recorded for a dependency declared without a
// version constraint.
const Wildcard = "*"

// ManifestKind names a supported manifest format.
type ManifestKind string

const (
	PackageJSONManifest  ManifestKind = "package.json"
	RequirementsManifest ManifestKind = "requirements.txt"
	CargoManifestKind    ManifestKind = "Cargo.toml"
	GoModManifest        ManifestKind = "go.mod"
)

// PackageJSON holds the fields of a package.json that repolens reports.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Author          string            `json:"author"`
	License         string            `json:"license"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// Requirements maps a Python package name to its version specifier, or
// Wildcard when unpinned.
type Requirements map[string]string

// CargoManifest holds the dependency tables of a Cargo.toml.
type CargoManifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// GoModule holds the requirements of a go.mod.
type GoModule struct {
	Module       string            `json:"module"`
	GoVersion    string            `json:"goVersion,omitempty"`
	Requires     map[string]string `json:"requires"`
	IndirectDeps map[string]string `json:"indirect,omitempty"`
}

// Manifest is the format-independent view of a parsed manifest.
type Manifest struct {
	Path            string            `json:"path" yaml:"path"`
	Kind            ManifestKind      `json:"kind" yaml:"kind"`
	Name            string            `json:"name,omitempty" yaml:"name,omitempty"`
	Version         string            `json:"version,omitempty" yaml:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies" yaml:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies,omitempty" yaml:"devDependencies,omitempty"`
}

// Node is a vertex in the dependency graph: an analyzed file, or an
// external module keyed by its raw import string.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty"`
}

// Edge represents one import: From imports To via the Import string.
// Parallel edges between the same pair are allowed.
type Edge struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Import   string `json:"import" yaml:"import"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty"`
	Weight   int    `json:"weight" yaml:"weight"`
}

// DependencyGraph is the import graph of an analyzed file set.
type DependencyGraph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Cycle is a sequence of file paths where each imports the next and the
// last imports the first. A single-element cycle is a self-import.
type Cycle []string

// LanguageStat aggregates the files of one language.
type LanguageStat struct {
	Language   LanguageTag `json:"language" yaml:"language"`
	FileCount  int         `json:"fileCount" yaml:"fileCount"`
	TotalLines int         `json:"totalLines" yaml:"totalLines"`
	TotalSize  int64       `json:"totalSize" yaml:"totalSize"`
	Percentage float64     `json:"percentageOfTotalLines" yaml:"percentageOfTotalLines"`
}

// Report is the complete analysis of a file set, ready for serialization.
type Report struct {
	Repo      string             `json:"repo" yaml:"repo"`
	Revision  string             `json:"revision,omitempty" yaml:"revision,omitempty"`
	Files     []FileMetadata     `json:"files" yaml:"files"`
	Manifests []Manifest         `json:"manifests" yaml:"manifests"`
	Graph     DependencyGraph    `json:"graph" yaml:"graph"`
	Cycles    []Cycle            `json:"cycles" yaml:"cycles"`
	Unused    []string           `json:"unusedDependencies" yaml:"unusedDependencies"`
	Languages []LanguageStat     `json:"languages" yaml:"languages"`
	Ranks     map[string]float64 `json:"ranks,omitempty" yaml:"ranks,omitempty"`
	Skipped   []string           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
