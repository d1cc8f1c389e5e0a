package procmon

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// ErrToolchainUnavailable is returned when the compiler for the target
// language cannot be found. Callers degrade to static-only analysis.
var ErrToolchainUnavailable = errors.New("procmon: toolchain not available")

// goRootMarkers identify the module root a Go file belongs to.
var goRootMarkers = []string{"go.mod", "go.work"}

// Builder compiles Go and Java targets into a scratch directory before
// monitored execution.
type Builder struct {
	cfg    config.DynamicConfig
	logger *zap.Logger
}

// NewBuilder creates a builder.
func NewBuilder(cfg config.DynamicConfig, logger *zap.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// BuildGo compiles the package containing the file. The returned
// binary path is empty when compilation failed; the build result holds
// the compiler output either way.
func (b *Builder) BuildGo(ctx context.Context, sourcePath, buildDir string) (*models.BuildResult, string, error) {
	tool, err := exec.LookPath(b.cfg.GoPath)
	if err != nil {
		return nil, "", ErrToolchainUnavailable
	}

	target := filepath.Join(buildDir, "target")
	pkgDir := filepath.Dir(sourcePath)
	root := findGoRoot(pkgDir)

	cmd := exec.CommandContext(ctx, tool, "build", "-o", target, "./"+relOrDot(root, pkgDir))
	cmd.Dir = root
	result := b.runBuild(cmd, tool, sourcePath, target, buildDir)
	if result.ReturnCode != 0 {
		b.logger.Warn("Go build failed",
			zap.String("source", sourcePath), zap.String("stderr", result.Stderr))
		return result, "", nil
	}
	return result, target, nil
}

// BuildJava compiles a single Java file with -d into the build dir and
// returns the class name to run.
func (b *Builder) BuildJava(ctx context.Context, sourcePath, buildDir string) (*models.BuildResult, string, error) {
	tool, err := exec.LookPath(b.cfg.JavacPath)
	if err != nil {
		return nil, "", ErrToolchainUnavailable
	}

	cmd := exec.CommandContext(ctx, tool, "-d", buildDir, sourcePath)
	className := strings.TrimSuffix(filepath.Base(sourcePath), ".java")
	result := b.runBuild(cmd, tool, sourcePath, className, buildDir)
	if result.ReturnCode != 0 {
		b.logger.Warn("Java build failed",
			zap.String("source", sourcePath), zap.String("stderr", result.Stderr))
		return result, "", nil
	}
	return result, className, nil
}

func (b *Builder) runBuild(cmd *exec.Cmd, tool, source, target, dir string) *models.BuildResult {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &models.BuildResult{
		ToolPath:    tool,
		SourcePath:  source,
		BuildTarget: target,
		BuildDir:    dir,
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ReturnCode = exitErr.ExitCode()
		} else {
			result.ReturnCode = -1
			stderr.WriteString(err.Error())
		}
	}
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// findGoRoot walks up from the package directory to the enclosing
// module root, falling back to the package directory itself.
func findGoRoot(dir string) string {
	current := dir
	for i := 0; i < 10; i++ {
		for _, marker := range goRootMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dir
}

// relOrDot returns the package path relative to root as go build
// expects, or "." when they coincide.
func relOrDot(root, pkgDir string) string {
	rel, err := filepath.Rel(root, pkgDir)
	if err != nil || rel == "." {
		return "."
	}
	return filepath.ToSlash(rel)
}
