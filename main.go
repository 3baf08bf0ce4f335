// repolens maps a repository's languages, imports, functions, complexity and
// dependency structure in TOON, JSON or YAML.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/repolens/internal/analyze"
	"github.com/phobologic/repolens/internal/cache"
	"github.com/phobologic/repolens/internal/config"
	"github.com/phobologic/repolens/internal/discover"
	"github.com/phobologic/repolens/internal/logging"
	"github.com/phobologic/repolens/internal/model"
	"github.com/phobologic/repolens/internal/ranking"
	"github.com/phobologic/repolens/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

// settings carries the viper instance and the flags that are not config keys.
type settings struct {
	v          *viper.Viper
	configFile string
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"max-files":        "max_files",
	"max-file-size":    "max_file_size",
	"workers":          "workers",
	"langs":            "languages",
	"include":          "include",
	"exclude":          "exclude",
	"format":           "format",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"cache":            "cache_dir",
	"max-cycles":       "max_cycles",
	"dev-dependencies": "dev_dependencies",
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	s := &settings{v: viper.New()}
	config.SetDefaults(s.v)

	var (
		fileFilter string
		hotspots   bool
	)

	root := &cobra.Command{
		Use:           "repolens [path]",
		Short:         "Map a repository's structure, complexity and dependencies",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, cfg, err := s.report(cmd.Context(), args, stderr)
			if err != nil {
				return err
			}
			if fileFilter != "" {
				rep = ranking.FilterByFile(rep, fileFilter)
				if len(rep.Files) == 0 {
					return fmt.Errorf("no files matching %q", fileFilter)
				}
			}
			if hotspots {
				rep = ranking.Hotspots(rep, cfg.MaxFiles)
			} else {
				rep = ranking.SelectFiles(rep, cfg.MaxFiles)
			}
			return write(stdout, cfg.Format, rep, func() string { return toon.Encode(rep) })
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("repolens {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&s.configFile, "config", "", "config file (default <path>/.repolens.yaml)")
	pf.IntP("max-files", "n", 50, "maximum number of files to include (0 for all)")
	pf.Int("max-file-size", 1_000_000, "skip files larger than this many bytes")
	pf.Int("workers", 0, "concurrent analysis workers (0 for GOMAXPROCS)")
	pf.StringSliceP("langs", "l", nil, "comma-separated languages to include")
	pf.StringSlice("include", nil, "only analyze paths matching these glob patterns")
	pf.StringSlice("exclude", nil, "skip paths matching these glob patterns")
	pf.String("format", "toon", "output format: toon, json or yaml")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("cache", "", "directory for cached reports")
	pf.Int("max-cycles", 100, "maximum number of cycles to report (0 for all)")
	pf.Bool("dev-dependencies", false, "count dev dependencies in unused-dependency detection")
	bindFlags(s.v, pf)

	root.Flags().StringVarP(&fileFilter, "file", "f", "", "only show files whose path contains this substring")
	root.Flags().BoolVar(&hotspots, "hotspots", false, "select the most complex files instead of the most central")
	root.Flags().BoolP("version", "V", false, "show version and exit")

	root.AddCommand(
		newClassifyCmd(s, stdout),
		newComplexityCmd(s, stdout),
		newDepsCmd(s, stdout, stderr),
		newInitCmd(stdout, stderr),
	)
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// report resolves the root, loads configuration and produces the full
// report, from the cache when it is still valid.
func (s *settings) report(ctx context.Context, args []string, stderr io.Writer) (*model.Report, *config.Config, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, nil, fmt.Errorf("root path: %w", err)
	} else if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: %w", root, discover.ErrNotDirectory)
	}

	cfg, err := config.Load(s.v, root, s.configFile)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(stderr, logging.LevelFromString(cfg.LogLevel), logging.Format(cfg.LogFormat))

	entries, err := discover.Files(root, discover.Options{
		Languages: cfg.Languages,
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, errors.New("no analyzable files found")
	}

	var store *cache.Store
	fingerprint := cache.Fingerprint(version,
		strings.Join(cfg.Languages, ","),
		strings.Join(cfg.Include, ","),
		strings.Join(cfg.Exclude, ","),
		strconv.Itoa(cfg.MaxFileSize),
		strconv.Itoa(cfg.MaxCycles),
		strconv.FormatBool(cfg.DevDependencies),
	)
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	if cfg.CacheDir != "" {
		store = cache.New(cfg.CacheDir)
		if rep, ok := store.Get(root, fingerprint, paths); ok {
			logger.Debug("using cached report", "dir", cfg.CacheDir)
			return rep, cfg, nil
		}
	}

	files, skipped := discover.Read(root, entries, int64(cfg.MaxFileSize), logger)
	if len(files) == 0 {
		return nil, nil, errors.New("no analyzable files found (all exceeded size limit or were unreadable)")
	}

	a := analyze.New(
		analyze.WithWorkers(cfg.Workers),
		analyze.WithLogger(logger),
		analyze.WithMemo(cfg.MemoSize),
		analyze.WithMaxCycles(cfg.MaxCycles),
		analyze.WithDevDependencies(cfg.DevDependencies),
	)
	rep, err := a.Run(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("analyzing: %w", err)
	}
	rep.Repo = filepath.Base(root)
	rep.Skipped = append(rep.Skipped, skipped...)
	if rev, err := cache.Revision(root); err == nil {
		rep.Revision = rev
	} else {
		logger.Debug("no revision", "error", err)
	}

	if store != nil {
		if err := store.Put(root, fingerprint, rep); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return rep, cfg, nil
}

// write encodes v as JSON or YAML, or prints the TOON rendering.
func write(w io.Writer, format string, v any, toonText func() string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, toonText())
		return err
	}
}
