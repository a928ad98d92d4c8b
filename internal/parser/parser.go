// Package parser builds Pair-list ASTs from a token stream, grounded
// on original_source/src/parser.rs.
package parser

import (
	"strconv"

	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/lexer"
	"github.com/xyproto/evalrus/internal/rerr"
)

// Parser walks a peekable token stream, building heap.Pair lists
// through a heap.Scope, mirroring parser.rs's TokenStream peek/consume
// shape.
type Parser struct {
	tokens []lexer.Token
	pos    int
	scope  *heap.Scope
}

func New(scope *heap.Scope, tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens, scope: scope}
}

func (p *Parser) peek() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) consume() (lexer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *Parser) lastPos() rerr.SourcePos {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Pos
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Pos
	}
	return rerr.SourcePos{Line: 1, Col: 0}
}

// ParseAll parses every top-level s-expr in the token stream, returning
// one TaggedPtr per form.
func (p *Parser) ParseAll() ([]heap.TaggedPtr, error) {
	var forms []heap.TaggedPtr
	for {
		if _, ok := p.peek(); !ok {
			return forms, nil
		}
		form, err := p.parseSexpr()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

// ParseOne parses a single top-level s-expr, for the REPL's
// one-line-at-a-time contract.
func (p *Parser) ParseOne() (heap.TaggedPtr, error) {
	return p.parseSexpr()
}

func (p *Parser) parseSexpr() (heap.TaggedPtr, error) {
	tok, ok := p.consume()
	if !ok {
		return heap.Nil, nil
	}
	switch tok.Kind {
	case lexer.OpenParen:
		return p.parseList()
	case lexer.CloseParen:
		return heap.Nil, rerr.Parse(tok.Pos, "unmatched close parenthesis")
	case lexer.Dot:
		return heap.Nil, rerr.Parse(tok.Pos, "invalid symbol '.'")
	case lexer.Symbol:
		return p.atomToken(tok), nil
	default:
		return heap.Nil, rerr.Parse(tok.Pos, "unexpected token")
	}
}

func (p *Parser) atomToken(tok lexer.Token) heap.TaggedPtr {
	if n, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
		return heap.TaggedSmallInt(n)
	}
	return p.scope.Intern(tok.Text)
}

// parseList parses the contents of a parenthesized form after the
// opening '(' has already been consumed, handling both proper lists and
// dotted pairs ((a . b)).
func (p *Parser) parseList() (heap.TaggedPtr, error) {
	var items []heap.TaggedPtr
	tail := heap.Nil

	for {
		tok, ok := p.peek()
		if !ok {
			return heap.Nil, rerr.Parse(p.lastPos(), "unexpected end of stream")
		}
		if tok.Kind == lexer.CloseParen {
			p.consume()
			break
		}
		if tok.Kind == lexer.Dot {
			p.consume()
			dotted, err := p.parseSexpr()
			if err != nil {
				return heap.Nil, err
			}
			tail = dotted
			closeTok, ok := p.consume()
			if !ok || closeTok.Kind != lexer.CloseParen {
				pos := p.lastPos()
				if ok {
					pos = closeTok.Pos
				}
				return heap.Nil, rerr.Parse(pos, "s-expr after . must be followed by close parenthesis")
			}
			break
		}
		item, err := p.parseSexpr()
		if err != nil {
			return heap.Nil, err
		}
		items = append(items, item)
	}

	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = p.scope.AllocPair(items[i], result)
	}
	return result, nil
}
