// Package core drives the analysis pipeline: per-file engine
// orchestration and the multi-file worker pool.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/analysis"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/dynamic"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/parser"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/rules"
	controlflow "github.com/SunXiangyuNico/OSS-Guardian/internal/static/cfg"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/static/deps"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/static/patterns"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/static/syntax"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/static/taint"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// FileAnalyzer runs every enabled engine against one source unit and
// folds the outputs into a complete analysis result.
type FileAnalyzer struct {
	config *config.Config
	logger *zap.Logger

	parser      *parser.Parser
	matcher     *patterns.Matcher
	taint       *taint.Analyzer
	controlflow *controlflow.Analyzer
	syntax      *syntax.Checker
	deps        *deps.Checker
	dynamic     *dynamic.Engine
}

// NewFileAnalyzer loads the rule set and wires the engines.
func NewFileAnalyzer(cfg *config.Config, logger *zap.Logger) (*FileAnalyzer, error) {
	ruleSet, err := rules.NewLoader(cfg.RulesPath, logger).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	logger.Info("Loaded rules", zap.Int("count", len(ruleSet.Rules)))

	return newFileAnalyzer(cfg, logger, ruleSet), nil
}

// newFileAnalyzer wires the engines over an already loaded rule set.
// The tree-sitter parser and the fuzzer's rand source are
// single-threaded, so every concurrent caller needs its own instance;
// the rule set itself is read-only and safe to share.
func newFileAnalyzer(cfg *config.Config, logger *zap.Logger, ruleSet *models.RuleSet) *FileAnalyzer {
	p := parser.NewParser()
	a := &FileAnalyzer{
		config:      cfg,
		logger:      logger,
		parser:      p,
		matcher:     patterns.NewMatcher(ruleSet, logger),
		taint:       taint.NewAnalyzer(logger),
		controlflow: controlflow.NewAnalyzer(p, logger),
		syntax:      syntax.NewChecker(p, logger),
		deps:        deps.NewChecker(logger),
	}
	if cfg.Dynamic.Enabled {
		a.dynamic = dynamic.NewEngine(cfg.Dynamic, logger)
	}
	return a
}

// AnalyzeFile runs the pipeline for one file. The returned result is
// always structurally complete: engine failures and panics set Error
// or a skip reason instead of aborting the run.
func (a *FileAnalyzer) AnalyzeFile(ctx context.Context, file *models.File) (result *models.AnalysisResult) {
	result = &models.AnalysisResult{
		RunID:    uuid.NewString(),
		FilePath: file.Path,
		Language: file.Language,
		Start:    time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("analysis panic: %v", r)
			a.logger.Error("Analysis panicked",
				zap.String("file", file.Path), zap.Any("panic", r))
		}
		result.End = time.Now()
		result.Duration = result.End.Sub(result.Start)
	}()

	switch {
	case isEffectivelyEmpty(file.Content, file.Language):
		result.Skipped = true
		result.SkipReason = "empty or comment-only file"
		return result
	case !file.Language.IsSupported():
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("unsupported language %q", file.Language)
		return result
	case !a.config.LanguageEnabled(string(file.Language)):
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("language %q disabled by configuration", file.Language)
		return result
	}

	result.Static = a.runStatic(ctx, file)

	if a.dynamic != nil {
		result.Dynamic = a.dynamic.Analyze(ctx, file.Path, file.Language)
	}

	result.Breakdown = analysis.Aggregate(result.Static, result.Dynamic)
	result.Threats = analysis.Identify(result.Static, result.Dynamic)
	risk := analysis.AssessRisk(result.Breakdown, len(result.Threats))
	result.Risk = &risk

	a.logger.Debug("File analyzed",
		zap.String("file", file.Path),
		zap.String("language", string(file.Language)),
		zap.Int("threats", len(result.Threats)),
		zap.Int("risk_score", risk.Score))
	return result
}

// runStatic executes the static engines in order. Each engine failure
// is logged and leaves its section empty.
func (a *FileAnalyzer) runStatic(ctx context.Context, file *models.File) *models.StaticResults {
	static := &models.StaticResults{}

	static.PatternMatches = a.matcher.Match(file.Content, file.Language)

	if a.config.EnableTaint {
		static.TaintFlows = a.taint.Analyze(file.Content, file.Language)
	}

	if a.config.EnableCFG {
		blocks, err := a.controlflow.Analyze(ctx, file.Content, file.Language)
		if err != nil {
			a.logger.Warn("Control-flow extraction failed",
				zap.String("file", file.Path), zap.Error(err))
		} else {
			static.CFG = blocks
		}
	}

	if a.config.EnableSyntax {
		static.Syntax = a.syntax.Check(ctx, file.Content, file.Language)
	}

	if a.config.EnableDeps {
		dependencies, err := a.deps.Check(file.Path, file.Language)
		if err != nil {
			a.logger.Warn("Dependency extraction failed",
				zap.String("file", file.Path), zap.Error(err))
		} else {
			static.Dependencies = dependencies
		}
	}

	static.Model = a.buildModel(ctx, file)
	return static
}

func (a *FileAnalyzer) buildModel(ctx context.Context, file *models.File) *models.SourceModel {
	switch file.Language {
	case models.LangPython:
		model, err := a.parser.BuildPythonModel(ctx, file.Content)
		if err != nil {
			a.logger.Warn("Source model unavailable",
				zap.String("file", file.Path), zap.Error(err))
			return nil
		}
		return model
	case models.LangGo:
		return parser.BuildGoModel(file.Content)
	case models.LangJava:
		return parser.BuildJavaModel(file.Content)
	}
	return nil
}

// isEffectivelyEmpty reports whether the file contains no code lines.
// Block comment interiors are approximated by their leading markers.
func isEffectivelyEmpty(content []byte, language models.Language) bool {
	if len(content) == 0 {
		return true
	}

	commentPrefixes := []string{"//", "/*", "*", "*/"}
	if language == models.LangPython {
		commentPrefixes = []string{"#"}
	}

	for _, line := range strings.Split(string(content), "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		comment := false
		for _, prefix := range commentPrefixes {
			if strings.HasPrefix(stripped, prefix) {
				comment = true
				break
			}
		}
		if !comment {
			return false
		}
	}
	return true
}
