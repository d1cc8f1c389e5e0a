// Package parser builds source models for analyzed files. Python gets
// a real tree-sitter parse tree; Go and Java get lightweight lexical
// inventories extracted with regular expressions.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Parser wraps tree-sitter for the grammars the analyzer parses natively.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		inner: sitter.NewParser(),
	}
}

// ParsePython parses Python source into a tree-sitter syntax tree.
func (p *Parser) ParsePython(ctx context.Context, source []byte) (*sitter.Tree, error) {
	p.inner.SetLanguage(python.GetLanguage())
	tree, err := p.inner.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse python: %w", err)
	}
	return tree, nil
}

// ParseJava parses Java source into a tree-sitter syntax tree.
func (p *Parser) ParseJava(ctx context.Context, source []byte) (*sitter.Tree, error) {
	p.inner.SetLanguage(java.GetLanguage())
	tree, err := p.inner.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse java: %w", err)
	}
	return tree, nil
}

// Walk performs a depth-first traversal of the syntax tree, calling fn for each node.
func Walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// CollectErrors gathers parse error locations from a syntax tree.
func CollectErrors(root *sitter.Node) []models.SyntaxError {
	var errs []models.SyntaxError
	Walk(root, func(node *sitter.Node) {
		if node.IsError() {
			errs = append(errs, models.SyntaxError{
				Line:    int(node.StartPoint().Row) + 1,
				Column:  int(node.StartPoint().Column),
				Message: "syntax error",
			})
		} else if node.IsMissing() {
			errs = append(errs, models.SyntaxError{
				Line:    int(node.StartPoint().Row) + 1,
				Column:  int(node.StartPoint().Column),
				Message: fmt.Sprintf("missing %s", node.Type()),
			})
		}
	})
	return errs
}
