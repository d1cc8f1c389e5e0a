package cfg

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/parser"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// analyzePython walks the Python parse tree and records if/for/while/try
// structures with their body line numbers.
func (a *Analyzer) analyzePython(ctx context.Context, source []byte) ([]models.CFGBlock, error) {
	tree, err := a.parser.ParsePython(ctx, source)
	if err != nil {
		return nil, err
	}

	var blocks []models.CFGBlock

	parser.Walk(tree.RootNode(), func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement":
			block := models.CFGBlock{
				Kind:      "if",
				StartLine: startLine(n),
				Condition: fieldContent(n, "condition", source),
				BodyLines: sortedUnique(sectionLines(n.ChildByFieldName("consequence"))),
				ElseLines: sortedUnique(alternativeLines(n)),
			}
			block.EndLine = maxLine(block.StartLine, block.BodyLines, block.ElseLines)
			blocks = append(blocks, block)

		case "for_statement":
			cond := fieldContent(n, "left", source)
			if right := fieldContent(n, "right", source); right != "" {
				cond += " in " + right
			}
			block := models.CFGBlock{
				Kind:      "for",
				StartLine: startLine(n),
				Condition: cond,
				BodyLines: sortedUnique(sectionLines(n.ChildByFieldName("body"))),
				ElseLines: sortedUnique(elseClauseLines(n)),
			}
			block.EndLine = maxLine(block.StartLine, block.BodyLines, block.ElseLines)
			blocks = append(blocks, block)

		case "while_statement":
			block := models.CFGBlock{
				Kind:      "while",
				StartLine: startLine(n),
				Condition: fieldContent(n, "condition", source),
				BodyLines: sortedUnique(sectionLines(n.ChildByFieldName("body"))),
				ElseLines: sortedUnique(elseClauseLines(n)),
			}
			block.EndLine = maxLine(block.StartLine, block.BodyLines, block.ElseLines)
			blocks = append(blocks, block)

		case "try_statement":
			block := models.CFGBlock{
				Kind:        "try",
				StartLine:   startLine(n),
				BodyLines:   sortedUnique(sectionLines(n.ChildByFieldName("body"))),
				ExceptLines: sortedUnique(exceptLines(n)),
				ElseLines:   sortedUnique(elseClauseLines(n)),
				FinalLines:  sortedUnique(finallyLines(n)),
			}
			block.EndLine = maxLine(block.StartLine,
				block.BodyLines, block.ExceptLines, block.ElseLines, block.FinalLines)
			blocks = append(blocks, block)
		}
	})

	return blocks, nil
}

func startLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func fieldContent(n *sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

// sectionLines collects the start lines of the statements in a block,
// recursing into nested control structures so their bodies count as
// part of the enclosing body.
func sectionLines(block *sitter.Node) []int {
	if block == nil {
		return nil
	}
	var lines []int
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		lines = append(lines, startLine(stmt))
		lines = append(lines, nestedLines(stmt)...)
	}
	return lines
}

// nestedLines returns the section lines of a control statement, or nil
// for plain statements.
func nestedLines(stmt *sitter.Node) []int {
	switch stmt.Type() {
	case "if_statement":
		return append(sectionLines(stmt.ChildByFieldName("consequence")), alternativeLines(stmt)...)
	case "for_statement", "while_statement":
		return append(sectionLines(stmt.ChildByFieldName("body")), elseClauseLines(stmt)...)
	case "try_statement":
		lines := sectionLines(stmt.ChildByFieldName("body"))
		lines = append(lines, exceptLines(stmt)...)
		lines = append(lines, elseClauseLines(stmt)...)
		lines = append(lines, finallyLines(stmt)...)
		return lines
	}
	return nil
}

// alternativeLines collects else and elif branch lines of an if statement.
func alternativeLines(n *sitter.Node) []int {
	var lines []int
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "else_clause":
			lines = append(lines, clauseBody(child)...)
		case "elif_clause":
			// An elif is itself a branch statement followed by its body
			lines = append(lines, startLine(child))
			lines = append(lines, sectionLines(child.ChildByFieldName("consequence"))...)
		}
	}
	return lines
}

func elseClauseLines(n *sitter.Node) []int {
	var lines []int
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "else_clause" {
			lines = append(lines, clauseBody(child)...)
		}
	}
	return lines
}

func exceptLines(n *sitter.Node) []int {
	var lines []int
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "except_clause" {
			lines = append(lines, clauseBody(child)...)
		}
	}
	return lines
}

func finallyLines(n *sitter.Node) []int {
	var lines []int
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "finally_clause" {
			lines = append(lines, clauseBody(child)...)
		}
	}
	return lines
}

// clauseBody finds the block child of a clause and returns its lines.
func clauseBody(clause *sitter.Node) []int {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() == "block" {
			return sectionLines(child)
		}
	}
	return nil
}

// sortedUnique sorts line numbers and removes duplicates.
func sortedUnique(lines []int) []int {
	if len(lines) == 0 {
		return nil
	}
	sort.Ints(lines)
	out := lines[:1]
	for _, l := range lines[1:] {
		if l != out[len(out)-1] {
			out = append(out, l)
		}
	}
	return out
}

// maxLine returns the largest line across the start and all sections.
func maxLine(start int, sections ...[]int) int {
	m := start
	for _, sec := range sections {
		for _, l := range sec {
			if l > m {
				m = l
			}
		}
	}
	return m
}
