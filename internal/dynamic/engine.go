// Package dynamic orchestrates the runtime engines: sandboxed
// execution for Python, compile-and-monitor for Go and Java, and
// fuzzing on top of the sandbox.
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/dynamic/fuzz"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/dynamic/procmon"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/dynamic/sandbox"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Engine runs every applicable dynamic analysis for one source unit.
type Engine struct {
	cfg      config.DynamicConfig
	executor *sandbox.Executor
	monitor  *procmon.Monitor
	builder  *procmon.Builder
	fuzzer   *fuzz.Fuzzer
	logger   *zap.Logger
}

// NewEngine wires the dynamic engines from configuration.
func NewEngine(cfg config.DynamicConfig, logger *zap.Logger) *Engine {
	executor := sandbox.NewExecutor(cfg, logger)
	return &Engine{
		cfg:      cfg,
		executor: executor,
		monitor:  procmon.NewMonitor(cfg, logger),
		builder:  procmon.NewBuilder(cfg, logger),
		fuzzer:   fuzz.NewFuzzer(executor, cfg, logger, time.Now().UnixNano()),
		logger:   logger,
	}
}

// Analyze runs the dynamic engines for the file's language. Missing
// interpreters and toolchains degrade to a note, never an error: the
// static pipeline still produces a result.
func (e *Engine) Analyze(ctx context.Context, filePath string, language models.Language) *models.DynamicResults {
	switch language {
	case models.LangPython:
		return e.analyzePython(ctx, filePath)
	case models.LangGo:
		return e.analyzeCompiled(ctx, filePath, language)
	case models.LangJava:
		return e.analyzeCompiled(ctx, filePath, language)
	}
	return &models.DynamicResults{
		Note: fmt.Sprintf("no dynamic engine for language %q", language),
	}
}

func (e *Engine) analyzePython(ctx context.Context, filePath string) *models.DynamicResults {
	results := &models.DynamicResults{}

	execution, err := e.executor.Run(ctx, filePath, sandbox.DefaultHookSet())
	if err != nil {
		if errors.Is(err, sandbox.ErrInterpreterUnavailable) {
			results.Note = "python interpreter not available; dynamic analysis skipped"
			return results
		}
		results.Note = "sandbox run failed: " + err.Error()
		return results
	}

	results.Execution = execution
	// Scratch-dir logs are removed after the run; only a configured
	// work dir leaves the file behind.
	results.ExecutionLog = executionLogPath(e.cfg.WorkDir, execution.LogPath)
	results.Events = execution.Events
	results.NetworkActivities = sandbox.ExtractNetwork(execution.Events)
	results.FileActivities = sandbox.ExtractFiles(execution.Events)
	results.MemoryFindings = sandbox.ExtractMemory(execution.Events)

	if e.cfg.FuzzEnabled {
		results.FuzzResults = e.fuzzer.Fuzz(ctx, filePath)
	}
	return results
}

func (e *Engine) analyzeCompiled(ctx context.Context, filePath string, language models.Language) *models.DynamicResults {
	results := &models.DynamicResults{}

	buildDir, cleanup, err := e.buildDir()
	if err != nil {
		results.Note = "build dir unavailable: " + err.Error()
		return results
	}
	defer cleanup()

	var (
		build   *models.BuildResult
		runName string
		runArgs []string
	)
	if language == models.LangGo {
		var target string
		build, target, err = e.builder.BuildGo(ctx, filePath, buildDir)
		runName = target
	} else {
		var className string
		build, className, err = e.builder.BuildJava(ctx, filePath, buildDir)
		if className != "" {
			java, lookErr := exec.LookPath("java")
			if lookErr != nil {
				results.Build = build
				results.Note = "java runtime not available; monitored run skipped"
				return results
			}
			runName = java
			runArgs = []string{"-cp", buildDir, className}
		}
	}
	if err != nil {
		if errors.Is(err, procmon.ErrToolchainUnavailable) {
			results.Note = fmt.Sprintf("%s toolchain not available; dynamic analysis skipped", language)
			return results
		}
		results.Note = "build failed: " + err.Error()
		return results
	}

	results.Build = build
	if runName == "" {
		// Compile failure: record the compiler output as the finding
		results.Note = "compile_failed"
		return results
	}

	report, err := e.monitor.Run(ctx, runName, runArgs, buildDir)
	if err != nil {
		results.Note = "monitored run failed: " + err.Error()
		return results
	}

	results.Execution = report.Execution
	results.Events = report.Events
	results.NetworkActivities = report.NetworkActivities
	results.FileActivities = report.FileActivities
	results.MemoryFindings = report.MemoryFindings
	results.MonitorError = report.MonitorError
	return results
}

// executionLogPath returns the log path only when it outlives the run.
func executionLogPath(workDir, logPath string) string {
	if workDir == "" {
		return ""
	}
	return logPath
}

func (e *Engine) buildDir() (string, func(), error) {
	if e.cfg.WorkDir != "" {
		if err := os.MkdirAll(e.cfg.WorkDir, 0o755); err != nil {
			return "", nil, err
		}
		return e.cfg.WorkDir, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "guardian-build-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}
