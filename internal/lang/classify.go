package lang

import (
	"path"
	"strings"
	"sync"

	"github.com/phobologic/repolens/internal/model"
)

// otherExtensions covers languages that are classified but have no
// extraction rules. Extensions of registered languages come from the
// Language entries themselves.
var otherExtensions = map[string]model.LanguageTag{
	".kt":       "kotlin",
	".kts":      "kotlin",
	".scala":    "scala",
	".groovy":   "groovy",
	".gradle":   "groovy",
	".swift":    "swift",
	".m":        "objectivec",
	".mm":       "objectivec",
	".dart":     "dart",
	".lua":      "lua",
	".r":        "r",
	".pl":       "perl",
	".pm":       "perl",
	".sh":       "shell",
	".bash":     "shell",
	".zsh":      "shell",
	".ps1":      "powershell",
	".sql":      "sql",
	".html":     "html",
	".htm":      "html",
	".css":      "css",
	".scss":     "scss",
	".sass":     "sass",
	".less":     "less",
	".vue":      "vue",
	".svelte":   "svelte",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".xml":      "xml",
	".md":       "markdown",
	".markdown": "markdown",
	".ex":       "elixir",
	".exs":      "elixir",
	".erl":      "erlang",
	".hs":       "haskell",
	".clj":      "clojure",
	".fs":       "fsharp",
	".jl":       "julia",
	".tf":       "terraform",
	".proto":    "protobuf",
	".graphql":  "graphql",
	".gql":      "graphql",
}

// basenames classifies extensionless files by their lower-cased name.
var basenames = map[string]model.LanguageTag{
	"dockerfile":  "dockerfile",
	"makefile":    "makefile",
	"jenkinsfile": "groovy",
	"vagrantfile": "ruby",
}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]model.LanguageTag
var extensionOnce sync.Once

func getExtensionMap() map[string]model.LanguageTag {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]model.LanguageTag, len(otherExtensions)+32)
		for ext, tag := range otherExtensions {
			extensionMap[ext] = tag
		}
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language for a file extension such as ".go"
// (case-insensitive), or "" if unknown.
func ForExtension(ext string) model.LanguageTag {
	return getExtensionMap()[strings.ToLower(ext)]
}

// Classify returns the language of filename, which may carry a directory
// prefix. Unknown files yield "".
func Classify(filename string) model.LanguageTag {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if tag := ForExtension(Extension(base)); tag != "" {
		return tag
	}

	lower := strings.ToLower(base)
	if tag, ok := basenames[lower]; ok {
		return tag
	}
	if strings.HasPrefix(lower, ".env") {
		return "env"
	}
	return ""
}

// Extension returns the extension of base including the dot. A leading dot
// alone does not start an extension, so ".env" has none.
func Extension(base string) string {
	trimmed := strings.TrimLeft(base, ".")
	i := strings.LastIndexByte(trimmed, '.')
	if i < 0 {
		return ""
	}
	return trimmed[i:]
}
