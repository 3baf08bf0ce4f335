package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/repolens/internal/analyze"
	"github.com/phobologic/repolens/internal/config"
	"github.com/phobologic/repolens/internal/model"
	"github.com/phobologic/repolens/internal/toon"
)

type classification struct {
	Path      string            `json:"path" yaml:"path"`
	Language  model.LanguageTag `json:"language" yaml:"language"`
	Extension string            `json:"extension" yaml:"extension"`
}

func newClassifyCmd(s *settings, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Print the language of each file name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(s)
			if err != nil {
				return err
			}
			out := make([]classification, len(args))
			rows := make([][]string, len(args))
			for i, name := range args {
				meta := analyze.File(model.SourceFile{Path: name})
				out[i] = classification{Path: name, Language: meta.Language, Extension: meta.Extension}
				rows[i] = []string{name, string(meta.Language), meta.Extension}
			}
			return write(stdout, format, out, func() string {
				return toon.Table("files", []string{"path", "language", "extension"}, rows)
			})
		},
	}
}

func newComplexityCmd(s *settings, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "complexity <file>",
		Short: "Score a single file and each of its functions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(s)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			meta := analyze.File(model.SourceFile{Path: args[0], Content: string(content)})
			return write(stdout, format, meta, func() string { return toon.EncodeFile(&meta) })
		},
	}
}

type depsView struct {
	Repo      string           `json:"repo" yaml:"repo"`
	Revision  string           `json:"revision,omitempty" yaml:"revision,omitempty"`
	Cycles    []model.Cycle    `json:"cycles" yaml:"cycles"`
	Manifests []model.Manifest `json:"manifests" yaml:"manifests"`
	Unused    []string         `json:"unusedDependencies" yaml:"unusedDependencies"`
}

func newDepsCmd(s *settings, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "deps [path]",
		Short: "Report dependency cycles and unused manifest dependencies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, cfg, err := s.report(cmd.Context(), args, stderr)
			if err != nil {
				return err
			}
			view := depsView{
				Repo:      rep.Repo,
				Revision:  rep.Revision,
				Cycles:    rep.Cycles,
				Manifests: rep.Manifests,
				Unused:    rep.Unused,
			}
			return write(stdout, cfg.Format, view, func() string { return toon.EncodeDependencies(rep) })
		},
	}
}

// outputFormat reads --format for commands that do not load a repository
// config.
func outputFormat(s *settings) (string, error) {
	cfg := config.Config{Format: s.v.GetString("format"), MaxFileSize: 1}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfg.Format, nil
}
