// Package deps extracts declared third-party dependencies from the
// manifest files of the project a source unit belongs to.
package deps

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// manifestNames are the files that mark a project root, keyed by language.
var manifestNames = map[models.Language][]string{
	models.LangPython: {"requirements.txt", "setup.py", "pyproject.toml"},
	models.LangGo:     {"go.mod"},
	models.LangJava:   {"pom.xml", "build.gradle", "build.gradle.kts"},
}

// maxAscent bounds the walk from the analyzed file toward the filesystem root.
const maxAscent = 10

// Checker locates and parses dependency manifests.
type Checker struct {
	logger *zap.Logger
}

// NewChecker creates a dependency checker.
func NewChecker(logger *zap.Logger) *Checker {
	return &Checker{logger: logger}
}

// Check walks up from the file's directory looking for a manifest of
// the file's language and returns the dependencies it declares. A file
// with no reachable manifest yields no dependencies and no error.
func (c *Checker) Check(filePath string, language models.Language) ([]models.Dependency, error) {
	names := manifestNames[language]
	if len(names) == 0 {
		return nil, nil
	}

	dir := filepath.Dir(filePath)
	for i := 0; i < maxAscent; i++ {
		for _, name := range names {
			manifest := filepath.Join(dir, name)
			if _, err := os.Stat(manifest); err != nil {
				continue
			}
			deps, err := c.parseManifest(manifest, name)
			if err != nil {
				c.logger.Warn("Failed to parse manifest",
					zap.String("manifest", manifest), zap.Error(err))
				continue
			}
			return deps, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, nil
}

func (c *Checker) parseManifest(path, name string) ([]models.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch name {
	case "requirements.txt":
		return parseRequirements(data, path), nil
	case "go.mod":
		return parseGoMod(data, path)
	case "pom.xml":
		return parsePom(data, path)
	case "build.gradle", "build.gradle.kts":
		return parseGradle(data, path), nil
	}
	// setup.py / pyproject.toml mark the root but carry no flat
	// requirement list this checker can read
	return nil, nil
}

var requirementRe = regexp.MustCompile(`^([\w\-_\.]+)\s*(?:([><=!~]+)\s*([\d\.\w\*]+))?`)

// parseRequirements reads pip requirements, one per line.
func parseRequirements(data []byte, source string) []models.Dependency {
	var deps []models.Dependency
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := requirementRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		dep := models.Dependency{
			Name:       m[1],
			Version:    m[3],
			Constraint: m[2],
			Source:     source,
		}
		if dep.Version == "" {
			dep.Version = "unknown"
		}
		deps = append(deps, dep)
	}
	return deps
}

// parseGoMod reads the require block of a go.mod file, skipping
// indirect entries.
func parseGoMod(data []byte, source string) ([]models.Dependency, error) {
	f, err := modfile.Parse(source, data, nil)
	if err != nil {
		return nil, err
	}
	var deps []models.Dependency
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		deps = append(deps, models.Dependency{
			Name:    r.Mod.Path,
			Version: r.Mod.Version,
			Source:  source,
		})
	}
	return deps, nil
}

type pomProject struct {
	Dependencies struct {
		Dependency []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
			Version    string `xml:"version"`
		} `xml:"dependency"`
	} `xml:"dependencies"`
}

// parsePom reads the top-level <dependencies> of a Maven POM.
func parsePom(data []byte, source string) ([]models.Dependency, error) {
	var project pomProject
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, err
	}
	var deps []models.Dependency
	for _, d := range project.Dependencies.Dependency {
		name := d.ArtifactID
		if d.GroupID != "" {
			name = d.GroupID + ":" + d.ArtifactID
		}
		version := d.Version
		if version == "" || strings.HasPrefix(version, "${") {
			version = "unknown"
		}
		deps = append(deps, models.Dependency{
			Name:    name,
			Version: version,
			Source:  source,
		})
	}
	return deps, nil
}

var gradleDepRe = regexp.MustCompile(`(?m)^\s*(?:implementation|api|compile|testImplementation|runtimeOnly)\s*[\(]?\s*['"]([^:'"]+):([^:'"]+):?([^'"]*)['"]`)

// parseGradle extracts coordinate-style dependency declarations.
func parseGradle(data []byte, source string) []models.Dependency {
	var deps []models.Dependency
	for _, m := range gradleDepRe.FindAllStringSubmatch(string(data), -1) {
		version := m[3]
		if version == "" {
			version = "unknown"
		}
		deps = append(deps, models.Dependency{
			Name:    m[1] + ":" + m[2],
			Version: version,
			Source:  source,
		})
	}
	return deps
}
