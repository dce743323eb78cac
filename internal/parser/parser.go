// Package parser is the syntax adapter: it wraps per-language tree-sitter
// grammars and normalizes their output into one tree shape the rest of the
// kernel consumes.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
)

// Parse parses source into a Tree for the given language. Recoverable
// syntax errors are embedded as error nodes rather than failing the parse;
// only an unusable parser result is reported as a parse error.
func Parse(ctx context.Context, path string, source []byte, language lang.Language) (*Tree, error) {
	grammar := language.Grammar()
	if grammar == nil {
		return nil, domain.NewParseError(
			fmt.Sprintf("unsupported language %q for %s", language, path), nil)
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar)

	cst, err := p.ParseCtx(ctx, nil, source)
	if cst == nil {
		return nil, domain.NewParseError(fmt.Sprintf("failed to parse %s", path), err)
	}
	defer cst.Close()

	root := cst.RootNode()
	if root == nil {
		return nil, domain.NewParseError(fmt.Sprintf("no parse tree for %s", path), nil)
	}

	tree := &Tree{
		Path:      path,
		Language:  language,
		Source:    source,
		HasErrors: root.HasError(),
	}
	tree.Root = buildNode(root, source, nil)
	return tree, nil
}

// buildNode converts a tree-sitter CST node into our internal node,
// keeping only named children (tokens carry no structural information
// for pattern matching).
func buildNode(ts *sitter.Node, source []byte, parent *Node) *Node {
	node := &Node{
		Kind: ts.Type(),
		Span: domain.Span{
			StartByte: ts.StartByte(),
			EndByte:   ts.EndByte(),
			StartLine: int(ts.StartPoint().Row) + 1,
			StartCol:  int(ts.StartPoint().Column) + 1,
			EndLine:   int(ts.EndPoint().Row) + 1,
			EndCol:    int(ts.EndPoint().Column) + 1,
		},
		Parent: parent,
		Error:  ts.IsError() || ts.IsMissing(),
	}

	count := int(ts.NamedChildCount())
	if count == 0 {
		end := int(ts.EndByte())
		if start := int(ts.StartByte()); start <= end && end <= len(source) {
			node.Text = string(source[start:end])
		}
		return node
	}

	node.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := ts.NamedChild(i)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, buildNode(child, source, node))
	}
	return node
}
