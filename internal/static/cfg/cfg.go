// Package cfg extracts control-flow structures from source code.
// Python structures come from the real parse tree. Go and Java use a
// brace-counting heuristic over comment-stripped lines; it mistakes
// braces inside string literals for block delimiters, which is an
// accepted approximation for line-level reporting.
package cfg

import (
	"context"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/parser"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Analyzer extracts control-flow structures per language.
type Analyzer struct {
	parser *parser.Parser
	logger *zap.Logger
}

// NewAnalyzer creates a CFG analyzer.
func NewAnalyzer(p *parser.Parser, logger *zap.Logger) *Analyzer {
	return &Analyzer{parser: p, logger: logger}
}

// Analyze dispatches to the language-specific extractor. Unsupported
// languages yield no structures.
func (a *Analyzer) Analyze(ctx context.Context, source []byte, language models.Language) ([]models.CFGBlock, error) {
	switch language {
	case models.LangPython:
		return a.analyzePython(ctx, source)
	case models.LangGo:
		return analyzeBraces(source, goPatterns), nil
	case models.LangJava:
		return analyzeBraces(source, javaPatterns), nil
	}
	return nil, nil
}
