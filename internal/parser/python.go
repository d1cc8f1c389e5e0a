package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// BuildPythonModel parses Python source and extracts its symbol
// inventory from the real parse tree.
func (p *Parser) BuildPythonModel(ctx context.Context, source []byte) (*models.SourceModel, error) {
	tree, err := p.ParsePython(ctx, source)
	if err != nil {
		return nil, err
	}

	model := &models.SourceModel{
		Language: models.LangPython,
		ParseOK:  true,
	}

	root := tree.RootNode()
	if len(CollectErrors(root)) > 0 {
		model.ParseOK = false
	}

	Walk(root, func(node *sitter.Node) {
		switch node.Type() {
		case "function_definition":
			name := childContent(node, "name", source)
			if name == "" {
				return
			}
			sym := models.Symbol{
				Name:    name,
				Kind:    models.SymbolFunction,
				Line:    int(node.StartPoint().Row) + 1,
				EndLine: int(node.EndPoint().Row) + 1,
			}
			if class := enclosingClass(node, source); class != "" {
				sym.Kind = models.SymbolMethod
				sym.ClassName = class
			}
			model.Functions = append(model.Functions, sym)

		case "class_definition":
			name := childContent(node, "name", source)
			if name == "" {
				return
			}
			model.Classes = append(model.Classes, models.Symbol{
				Name:    name,
				Kind:    models.SymbolClass,
				Line:    int(node.StartPoint().Row) + 1,
				EndLine: int(node.EndPoint().Row) + 1,
			})

		case "assignment":
			left := node.ChildByFieldName("left")
			if left != nil && left.Type() == "identifier" {
				model.Variables = append(model.Variables, models.Symbol{
					Name: left.Content(source),
					Kind: models.SymbolVariable,
					Line: int(node.StartPoint().Row) + 1,
				})
			}

		case "import_statement", "import_from_statement":
			for _, path := range pythonImportPaths(node.Content(source)) {
				model.Imports = append(model.Imports, models.ImportRecord{
					Path: path,
					Line: int(node.StartPoint().Row) + 1,
				})
			}
		}
	})

	return model, nil
}

// childContent returns the text of a named child field, or "".
func childContent(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

// enclosingClass climbs the tree looking for a class_definition ancestor.
func enclosingClass(node *sitter.Node, source []byte) string {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Type() == "class_definition" {
			return childContent(parent, "name", source)
		}
	}
	return ""
}

// pythonImportPaths extracts module names from an import statement.
func pythonImportPaths(text string) []string {
	text = strings.TrimSpace(text)

	// from pathlib import Path -> pathlib
	if strings.HasPrefix(text, "from ") {
		rest := strings.TrimPrefix(text, "from ")
		if idx := strings.Index(rest, " import "); idx >= 0 {
			module := strings.TrimSpace(rest[:idx])
			if module != "" {
				return []string{module}
			}
		}
		return nil
	}

	// import os, sys as system -> os, sys
	text = strings.TrimPrefix(text, "import ")
	var paths []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if idx := strings.Index(part, " as "); idx >= 0 {
			part = strings.TrimSpace(part[:idx])
		}
		if part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}
