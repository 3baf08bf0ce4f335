// Package manifest parses dependency manifests (package.json,
// requirements.txt, Cargo.toml, go.mod). Unparseable input yields nil,
// never an error.
package manifest

import (
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"

	"github.com/phobologic/repolens/internal/model"
)

// IsManifest reports whether filePath names a supported manifest.
func IsManifest(filePath string) bool {
	_, ok := kindOf(filePath)
	return ok
}

func kindOf(filePath string) (model.ManifestKind, bool) {
	switch base := path.Base(strings.ReplaceAll(filePath, `\`, "/")); {
	case base == "package.json":
		return model.PackageJSONManifest, true
	case base == "requirements.txt", strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt"):
		return model.RequirementsManifest, true
	case base == "Cargo.toml":
		return model.CargoManifestKind, true
	case base == "go.mod":
		return model.GoModManifest, true
	}
	return "", false
}

// Parse dispatches on the base name of filePath and returns the uniform
// manifest record, or nil if the file is not a manifest or cannot be parsed.
func Parse(filePath, content string) *model.Manifest {
	kind, ok := kindOf(filePath)
	if !ok {
		return nil
	}
	m := &model.Manifest{Path: filePath, Kind: kind}

	switch kind {
	case model.PackageJSONManifest:
		pkg := ParsePackageJSON(content)
		if pkg == nil {
			return nil
		}
		m.Name, m.Version = pkg.Name, pkg.Version
		m.Dependencies, m.DevDependencies = pkg.Dependencies, pkg.DevDependencies
	case model.RequirementsManifest:
		m.Dependencies = ParseRequirementsTxt(content)
	case model.CargoManifestKind:
		cargo := ParseCargoToml(content)
		if cargo == nil {
			return nil
		}
		m.Name, m.Version = cargo.Name, cargo.Version
		m.Dependencies, m.DevDependencies = cargo.Dependencies, cargo.DevDependencies
	case model.GoModManifest:
		mod := ParseGoMod(filePath, content)
		if mod == nil {
			return nil
		}
		m.Name, m.Version = mod.Module, mod.GoVersion
		m.Dependencies, m.DevDependencies = mod.Requires, mod.IndirectDeps
	}

	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	return m
}

// DeclaredNames returns the sorted dependency names of m, including
// development dependencies when dev is set.
func DeclaredNames(m *model.Manifest, dev bool) []string {
	seen := make(map[string]struct{}, len(m.Dependencies)+len(m.DevDependencies))
	for name := range m.Dependencies {
		seen[name] = struct{}{}
	}
	if dev {
		for name := range m.DevDependencies {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Author          json.RawMessage   `json:"author"`
	License         json.RawMessage   `json:"license"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// ParsePackageJSON parses a package.json. Invalid JSON yields nil.
func ParsePackageJSON(content string) *model.PackageJSON {
	var raw packageJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil
	}
	return &model.PackageJSON{
		Name:            raw.Name,
		Version:         raw.Version,
		Description:     raw.Description,
		Author:          nameOrString(raw.Author),
		License:         licenseString(raw.License),
		Dependencies:    orEmpty(raw.Dependencies),
		DevDependencies: orEmpty(raw.DevDependencies),
		Scripts:         orEmpty(raw.Scripts),
	}
}

// nameOrString accepts "Jane <j@x>" or {"name": "Jane"}.
func nameOrString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Name
	}
	return ""
}

// licenseString accepts "MIT" or the legacy {"type": "MIT"}.
func licenseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Type
	}
	return ""
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

var requirementRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*((?:===|==|>=|<=|~=|!=|>|<)\s*\S.*)?$`)

// ParseRequirementsTxt parses a pip requirements file. Comment, blank and
// option lines (-r, -e, --index-url) are skipped; unpinned packages map to
// model.Wildcard.
func ParseRequirementsTxt(content string) model.Requirements {
	reqs := model.Requirements{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		m := requirementRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		version := strings.ReplaceAll(m[2], " ", "")
		if version == "" {
			version = model.Wildcard
		}
		reqs[m[1]] = version
	}
	return reqs
}

// ParseCargoToml reads the [package], [dependencies] and [dev-dependencies]
// tables of a Cargo.toml. Invalid TOML yields nil. A dependency given as an
// inline table contributes its version key, or model.Wildcard when it has
// none (path or git dependencies).
func ParseCargoToml(content string) *model.CargoManifest {
	var doc map[string]any
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}

	cargo := &model.CargoManifest{
		Dependencies:    cargoTable(doc["dependencies"]),
		DevDependencies: cargoTable(doc["dev-dependencies"]),
	}
	if pkg, ok := doc["package"].(map[string]any); ok {
		cargo.Name, _ = pkg["name"].(string)
		cargo.Version, _ = pkg["version"].(string)
	}
	return cargo
}

func cargoTable(v any) map[string]string {
	deps := map[string]string{}
	table, ok := v.(map[string]any)
	if !ok {
		return deps
	}
	for name, spec := range table {
		switch s := spec.(type) {
		case string:
			deps[name] = versionOrWildcard(s)
		case map[string]any:
			version, _ := s["version"].(string)
			deps[name] = versionOrWildcard(version)
		default:
			deps[name] = model.Wildcard
		}
	}
	return deps
}

func versionOrWildcard(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.Wildcard
	}
	return v
}

// ParseGoMod parses a go.mod file. Invalid input yields nil.
func ParseGoMod(filePath, content string) *model.GoModule {
	f, err := modfile.ParseLax(filePath, []byte(content), nil)
	if err != nil || f.Module == nil {
		return nil
	}
	mod := &model.GoModule{
		Module:   f.Module.Mod.Path,
		Requires: map[string]string{},
	}
	if f.Go != nil {
		mod.GoVersion = f.Go.Version
	}
	for _, r := range f.Require {
		if r.Indirect {
			if mod.IndirectDeps == nil {
				mod.IndirectDeps = map[string]string{}
			}
			mod.IndirectDeps[r.Mod.Path] = r.Mod.Version
			continue
		}
		mod.Requires[r.Mod.Path] = r.Mod.Version
	}
	return mod
}
