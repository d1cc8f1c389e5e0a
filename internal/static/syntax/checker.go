// Package syntax validates source units before deeper analysis.
// Python and Java validity comes from parse-tree error nodes; Go uses
// the canonical go/parser.
package syntax

import (
	"context"
	"fmt"

	goparser "go/parser"
	goscanner "go/scanner"
	"go/token"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/parser"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Checker validates syntax per language.
type Checker struct {
	parser *parser.Parser
	logger *zap.Logger
}

// NewChecker creates a syntax checker.
func NewChecker(p *parser.Parser, logger *zap.Logger) *Checker {
	return &Checker{parser: p, logger: logger}
}

// Check validates the source. Languages without a checker report valid
// with a note rather than failing.
func (c *Checker) Check(ctx context.Context, source []byte, language models.Language) *models.SyntaxReport {
	switch language {
	case models.LangPython:
		return c.checkTree(ctx, source, language)
	case models.LangJava:
		return c.checkTree(ctx, source, language)
	case models.LangGo:
		return c.checkGo(source)
	}
	return &models.SyntaxReport{
		Valid: true,
		Note:  fmt.Sprintf("no syntax checker for language %q", language),
	}
}

// checkTree parses with tree-sitter and reports error nodes.
func (c *Checker) checkTree(ctx context.Context, source []byte, language models.Language) *models.SyntaxReport {
	var root func() ([]models.SyntaxError, error)
	if language == models.LangPython {
		root = func() ([]models.SyntaxError, error) {
			tree, err := c.parser.ParsePython(ctx, source)
			if err != nil {
				return nil, err
			}
			return parser.CollectErrors(tree.RootNode()), nil
		}
	} else {
		root = func() ([]models.SyntaxError, error) {
			tree, err := c.parser.ParseJava(ctx, source)
			if err != nil {
				return nil, err
			}
			return parser.CollectErrors(tree.RootNode()), nil
		}
	}

	errs, err := root()
	if err != nil {
		// Parser failure is a degraded check, not an invalid file
		c.logger.Warn("Syntax check unavailable", zap.Error(err))
		return &models.SyntaxReport{Valid: true, Note: "syntax checker unavailable: " + err.Error()}
	}

	return &models.SyntaxReport{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// checkGo validates Go source with the standard parser.
func (c *Checker) checkGo(source []byte) *models.SyntaxReport {
	fset := token.NewFileSet()
	_, err := goparser.ParseFile(fset, "target.go", source, goparser.AllErrors)
	if err == nil {
		return &models.SyntaxReport{Valid: true}
	}

	report := &models.SyntaxReport{Valid: false}
	if list, ok := err.(goscanner.ErrorList); ok {
		for _, e := range list {
			report.Errors = append(report.Errors, models.SyntaxError{
				Line:    e.Pos.Line,
				Column:  e.Pos.Column,
				Message: e.Msg,
			})
		}
	} else {
		report.Errors = append(report.Errors, models.SyntaxError{Message: err.Error()})
	}
	return report
}
