// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package expr

import (
	"strconv"

	"github.com/hwsec-lab/go-utrr/pkg/util/source"
	"github.com/hwsec-lab/go-utrr/pkg/util/source/lex"
)

// END_OF signals "end of input".
const END_OF uint = 0

// WHITESPACE signals whitespace.
const WHITESPACE uint = 1

// LBRACE signals "left brace".
const LBRACE uint = 2

// RBRACE signals "right brace".
const RBRACE uint = 3

// LBRACKET signals "left square bracket".
const LBRACKET uint = 4

// RBRACKET signals "right square bracket".
const RBRACKET uint = 5

// NUMBER signals an integer literal.
const NUMBER uint = 6

// IDENTIFIER signals a named reference.
const IDENTIFIER uint = 7

// DOT signals field access.
const DOT uint = 8

// ADD_TOK signals integer addition.
const ADD_TOK uint = 9

// SUB_TOK signals integer subtraction (or unary negation).
const SUB_TOK uint = 10

// POW_TOK signals exponentiation.
const POW_TOK uint = 11

// MUL_TOK signals integer multiplication.
const MUL_TOK uint = 12

// FLOORDIV_TOK signals floor division.
const FLOORDIV_TOK uint = 13

// MOD_TOK signals the modulo operator.
const MOD_TOK uint = 14

// SHL_TOK signals a left shift.
const SHL_TOK uint = 15

// SHR_TOK signals a right shift.
const SHR_TOK uint = 16

// AND_TOK signals bitwise conjunction.
const AND_TOK uint = 17

// OR_TOK signals bitwise disjunction.
const OR_TOK uint = 18

// XOR_TOK signals bitwise exclusive or.
const XOR_TOK uint = 19

// Rule for describing whitespace.
var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t')))

// Rule for describing numbers.
var number lex.Scanner[rune] = lex.Many(lex.Within('0', '9'))

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

// Rule for describing identifiers.
var identifier lex.Scanner[rune] = lex.And(identifierStart, identifierRest)

// Lexing rules.  Multi-character operators must come before their prefixes.
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit('['), LBRACKET),
	lex.Rule(lex.Unit(']'), RBRACKET),
	lex.Rule(lex.Unit('.'), DOT),
	lex.Rule(lex.Unit('+'), ADD_TOK),
	lex.Rule(lex.Unit('-'), SUB_TOK),
	lex.Rule(lex.Unit('*', '*'), POW_TOK),
	lex.Rule(lex.Unit('*'), MUL_TOK),
	lex.Rule(lex.Unit('/', '/'), FLOORDIV_TOK),
	lex.Rule(lex.Unit('%'), MOD_TOK),
	lex.Rule(lex.Unit('<', '<'), SHL_TOK),
	lex.Rule(lex.Unit('>', '>'), SHR_TOK),
	lex.Rule(lex.Unit('&'), AND_TOK),
	lex.Rule(lex.Unit('|'), OR_TOK),
	lex.Rule(lex.Unit('^'), XOR_TOK),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(number, NUMBER),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Binary operator tiers, loosest binding first.  Operators within a tier
// associate to the left; exponentiation is handled separately since it
// associates to the right and binds tighter than unary negation.
var tiers = [][]uint{
	{OR_TOK},
	{XOR_TOK},
	{AND_TOK},
	{SHL_TOK, SHR_TOK},
	{ADD_TOK, SUB_TOK},
	{MUL_TOK, FLOORDIV_TOK, MOD_TOK},
}

var binKinds = map[uint]BinKind{
	ADD_TOK:      ADD,
	SUB_TOK:      SUB,
	MUL_TOK:      MUL,
	FLOORDIV_TOK: FLOORDIV,
	MOD_TOK:      MOD,
	POW_TOK:      POW,
	AND_TOK:      BITAND,
	OR_TOK:       BITOR,
	XOR_TOK:      BITXOR,
	SHL_TOK:      SHL,
	SHR_TOK:      SHR,
}

// Parse a given input string into an expression term.
func Parse(input string) (Term, []source.SyntaxError) {
	var (
		srcfile = source.NewFile("expr", []byte(input))
		lexer   = lex.NewLexer[rune](srcfile.Contents(), rules...)
		// Lex as many tokens as possible
		tokens = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start, end := lexer.Index(), lexer.Index()+lexer.Remaining()
		err := srcfile.SyntaxError(source.NewSpan(int(start), int(end)), "unknown text encountered")

		return nil, []source.SyntaxError{*err}
	}
	// Remove any whitespace
	tokens = removeWhitespace(tokens)
	//
	parser := &Parser{srcfile, tokens, 0}
	// Parse term
	term, errs := parser.parseTier(0)
	// Check all parsed
	if len(errs) == 0 && !parser.Done() {
		return nil, parser.syntaxErrors(parser.lookahead(), "unknown token")
	}
	// All good!
	return term, errs
}

// Parser provides a recursive-descent parser for the expression language.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Position within the tokens
	index int
}

// Done determines whether or not the parser has parsed all the available
// tokens.
func (p *Parser) Done() bool {
	return p.index+1 >= len(p.tokens)
}

// parseTier parses left-associative binary operators at a given precedence
// tier, recursing into the next tier for operands.
func (p *Parser) parseTier(tier int) (Term, []source.SyntaxError) {
	if tier >= len(tiers) {
		return p.parseUnary()
	}
	//
	lhs, errs := p.parseTier(tier + 1)
	//
	for len(errs) == 0 && p.follows(tiers[tier]...) {
		op := binKinds[p.lookahead().Kind]
		p.expect(p.lookahead().Kind)
		//
		var rhs Term
		//
		rhs, errs = p.parseTier(tier + 1)
		if len(errs) == 0 {
			lhs = &BinOp{Op: op, Lhs: lhs, Rhs: rhs}
		}
	}
	//
	return lhs, errs
}

func (p *Parser) parseUnary() (Term, []source.SyntaxError) {
	if p.follows(SUB_TOK) {
		p.expect(SUB_TOK)
		//
		arg, errs := p.parseUnary()
		if len(errs) != 0 {
			return nil, errs
		}
		//
		return &Negate{Arg: arg}, nil
	}
	//
	return p.parsePower()
}

// parsePower handles exponentiation, which associates to the right and whose
// exponent may itself be negated (e.g. "2 ** -1" parses, as in the source
// language).
func (p *Parser) parsePower() (Term, []source.SyntaxError) {
	base, errs := p.parsePostfix()
	//
	if len(errs) == 0 && p.follows(POW_TOK) {
		p.expect(POW_TOK)
		//
		var exponent Term
		//
		exponent, errs = p.parseUnary()
		if len(errs) == 0 {
			return &BinOp{Op: POW, Lhs: base, Rhs: exponent}, nil
		}
	}
	//
	return base, errs
}

func (p *Parser) parsePostfix() (Term, []source.SyntaxError) {
	term, errs := p.parseAtom()
	//
	for len(errs) == 0 {
		switch {
		case p.follows(LBRACKET):
			p.expect(LBRACKET)
			//
			var index Term
			//
			index, errs = p.parseTier(0)
			if len(errs) == 0 {
				errs = p.consume(RBRACKET, "expected ']'")
			}
			//
			term = &Index{Base: term, Index: index}
		case p.follows(DOT):
			p.expect(DOT)
			//
			if !p.follows(IDENTIFIER) {
				return nil, p.syntaxErrors(p.lookahead(), "expected field name")
			}
			//
			name := p.text(p.lookahead())
			p.expect(IDENTIFIER)
			//
			term = &Field{Base: term, Name: name}
		default:
			return term, errs
		}
	}
	//
	return nil, errs
}

func (p *Parser) parseAtom() (Term, []source.SyntaxError) {
	token := p.lookahead()
	//
	switch token.Kind {
	case NUMBER:
		value, err := strconv.Atoi(p.text(token))
		if err != nil {
			return nil, p.syntaxErrors(token, "malformed number")
		}
		//
		p.expect(NUMBER)
		//
		return &Number{Value: value}, nil
	case IDENTIFIER:
		p.expect(IDENTIFIER)
		//
		return &Name{Ident: p.text(token)}, nil
	case LBRACE:
		p.expect(LBRACE)
		//
		term, errs := p.parseTier(0)
		if len(errs) == 0 {
			errs = p.consume(RBRACE, "expected ')'")
		}
		//
		return term, errs
	default:
		return nil, p.syntaxErrors(token, "expected expression")
	}
}

// follows checks whether the lookahead token is one of the given kinds.
func (p *Parser) follows(kinds ...uint) bool {
	kind := p.lookahead().Kind
	//
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	//
	return false
}

func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// expect consumes the lookahead token, which must be of the given kind.
func (p *Parser) expect(kind uint) {
	if p.tokens[p.index].Kind != kind {
		panic("unexpected token")
	}
	//
	p.index++
}

// consume consumes a token of the given kind, or reports a syntax error.
func (p *Parser) consume(kind uint, msg string) []source.SyntaxError {
	if !p.follows(kind) {
		return p.syntaxErrors(p.lookahead(), msg)
	}
	//
	p.expect(kind)
	//
	return nil
}

func (p *Parser) text(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	err := p.srcfile.SyntaxError(token.Span, msg)
	return []source.SyntaxError{*err}
}

func removeWhitespace(tokens []lex.Token) []lex.Token {
	var kept []lex.Token
	//
	for _, token := range tokens {
		if token.Kind != WHITESPACE {
			kept = append(kept, token)
		}
	}
	//
	return kept
}
