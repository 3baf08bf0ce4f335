package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- repolens:start -->"
	sentinelEnd   = "<!-- repolens:end -->"
)

// newInitCmd builds the `repolens init` subcommand, which writes (or updates)
// a repolens usage section in a CLAUDE.md file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a repolens usage section to a CLAUDE.md file",
		Long: `Write a repolens usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote repolens section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped repolens documentation block.
func generateSection() string {
	body := `## repolens: Repository Structure and Complexity

Run ` + "`repolens`" + ` via the Bash tool before changing an unfamiliar codebase. It
lists the most central files, every function with its complexity, the import
graph between files, dependency cycles and manifest dependencies that nothing
imports.

**Availability:** Check with ` + "`repolens --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
repolens                                   # current directory, all languages
repolens /path/to/repo                     # explicit path
repolens -l go,typescript                  # filter by language
repolens -n 20                             # limit to top 20 files (large repos)
repolens --hotspots -n 10                  # the 10 most complex non-test files
repolens -f internal/graph                 # files under a path, with their edges
repolens --cache .repolens-cache           # cache reports (fast on repeat runs)
repolens deps                              # only cycles and unused dependencies
repolens complexity path/to/file.py        # per-function scores for one file
` + "```" + `

**Caching:** Use ` + "`--cache <dir>`" + ` to avoid re-analysis on every call. Add the
directory to ` + "`.gitignore`" + `. Settings can also live in ` + "`.repolens.yaml`" + `.

**All flags:** ` + "`repolens --help`" + `

**How to use the output:**

1. **Read files in ranked order.** The ` + "`files`" + ` table is sorted by PageRank
   over the import graph (most depended-on first).

2. **Use ` + "`functions`" + ` to find definitions.** It lists every function and
   method with its line range and complexity; ` + "`high`" + ` band files deserve
   extra care when editing.

3. **Check ` + "`cycles`" + ` before moving code between files.** A new import
   that closes a cycle shows up there on the next run.

4. **Treat ` + "`unused`" + ` as candidates, not facts.** Detection is lexical; a
   dependency loaded by configuration or reflection is reported as unused.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
