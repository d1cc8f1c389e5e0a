package sandbox

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

//go:embed shim.py
var shimSource []byte

// ErrInterpreterUnavailable is returned when the configured Python
// interpreter cannot be found. Callers degrade to static-only analysis.
var ErrInterpreterUnavailable = errors.New("sandbox: python interpreter not available")

// Executor runs Python targets out of process under the hook shim.
type Executor struct {
	cfg    config.DynamicConfig
	logger *zap.Logger
}

// NewExecutor creates a sandbox executor.
func NewExecutor(cfg config.DynamicConfig, logger *zap.Logger) *Executor {
	return &Executor{cfg: cfg, logger: logger}
}

// Run executes the target under the shim with the given hook set and
// returns the observed events alongside the process outcome. Timeouts
// are reported in the result, not as an error.
func (e *Executor) Run(ctx context.Context, target string, hooks RuntimeHookSet, extraArgs ...string) (*models.ExecutionResult, error) {
	python, err := exec.LookPath(e.cfg.PythonPath)
	if err != nil {
		return nil, ErrInterpreterUnavailable
	}

	workDir, cleanup, err := e.workDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	shimPath := filepath.Join(workDir, "shim.py")
	if err := os.WriteFile(shimPath, shimSource, 0o644); err != nil {
		return nil, fmt.Errorf("write shim: %w", err)
	}
	logPath := filepath.Join(workDir, "sandbox_"+uuid.NewString()+".log")

	timeout := time.Duration(e.cfg.Timeout) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{shimPath, target}, extraArgs...)
	cmd := exec.CommandContext(runCtx, python, args...)
	cmd.Dir = filepath.Dir(target)
	cmd.Env = append(os.Environ(),
		"GUARDIAN_SANDBOX_LOG="+logPath,
		"GUARDIAN_SANDBOX_HOOKS="+hooks.envValue(),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &models.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
		LogPath:  logPath,
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.TimedOut = true
		result.ReturnCode = -1
		result.Stderr = fmt.Sprintf("Execution timed out after %ds", e.cfg.Timeout)
	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ReturnCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("run target: %w", runErr)
		}
	}

	events, parseErr := ParseLogFile(logPath)
	if parseErr != nil {
		e.logger.Warn("Failed to parse sandbox log",
			zap.String("log", logPath), zap.Error(parseErr))
	}
	result.Events = events

	e.logger.Debug("Sandbox run finished",
		zap.String("target", target),
		zap.Int("return_code", result.ReturnCode),
		zap.Bool("timed_out", result.TimedOut),
		zap.Int("events", len(events)))

	return result, nil
}

// workDir returns the scratch directory for this run. A configured
// directory is reused; otherwise a temp directory is created and
// removed after the run.
func (e *Executor) workDir() (string, func(), error) {
	if e.cfg.WorkDir != "" {
		if err := os.MkdirAll(e.cfg.WorkDir, 0o755); err != nil {
			return "", nil, err
		}
		return e.cfg.WorkDir, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "guardian-sandbox-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}
