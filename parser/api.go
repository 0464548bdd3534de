package parser

import (
	"fmt"
	"io"

	"github.com/simonNozaki/koys/ast"
)

// ParseReader consumes koy source from an io.Reader and parses it as a program.
func ParseReader(r io.Reader) (*ast.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// ParseExpr parses src as a single expression. A trailing semicolon is allowed.
func ParseExpr(src string) (ast.Expr, error) {
	p, err := newParser("", src)
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolons(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolons(); err != nil {
		return nil, err
	}
	if p.curr.Type != tokenEOF {
		return nil, p.errorf(p.curr.Pos, "unexpected %s after expression", p.describe(p.curr))
	}
	return expr, nil
}

// ParseInteractive parses REPL input: a sequence of named function
// definitions (*ast.FunctionDefinition) and expressions (ast.Expr).
func ParseInteractive(src string) ([]ast.Node, error) {
	p, err := newParser("", src)
	if err != nil {
		return nil, err
	}
	var nodes []ast.Node
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenEOF {
			return nodes, nil
		}
		node, err := p.parseInteractiveElement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if err := p.endOfElement(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseInteractiveElement() (ast.Node, error) {
	if p.curr.Type == tokenFn {
		named, err := p.peekIs(0, tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if named {
			return p.parseFunctionDefinition()
		}
	}
	return p.parseExpression()
}

// MustParse is like Parse but panics on error. It simplifies fixtures.
func MustParse(src string) *ast.Program {
	prog, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("parser: %v", err))
	}
	return prog
}
