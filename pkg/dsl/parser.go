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
package dsl

import (
	"strconv"

	"github.com/hwsec-lab/go-utrr/pkg/util/source"
	"github.com/hwsec-lab/go-utrr/pkg/util/source/lex"
)

// Token kinds for the statement grammar.  OTHER deliberately matches any
// single character, so that expression text inside act(...) arguments can be
// captured as a span without the statement parser understanding it; the
// expression parser deals with it during resolution.
const (
	END_OF uint = iota
	WHITESPACE
	IDENTIFIER
	NUMBER
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	EQUALS
	COLON
	OTHER
)

var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t')))

var number lex.Scanner[rune] = lex.Many(lex.Within('0', '9'))

var identifier lex.Scanner[rune] = lex.And(
	lex.Or(lex.Unit('_'), lex.Within('a', 'z'), lex.Within('A', 'Z')),
	lex.Many(lex.Or(lex.Unit('_'), lex.Within('0', '9'), lex.Within('a', 'z'), lex.Within('A', 'Z'))))

var anyRune lex.Scanner[rune] = func(items []rune) uint {
	if len(items) == 0 {
		return 0
	}
	//
	return 1
}

var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(lex.Unit('('), LPAREN),
	lex.Rule(lex.Unit(')'), RPAREN),
	lex.Rule(lex.Unit('['), LBRACKET),
	lex.Rule(lex.Unit(']'), RBRACKET),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(number, NUMBER),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
	lex.Rule(anyRune, OTHER),
}

// ParseString parses experiment source text into an ordered command list.
func ParseString(input string) ([]Command, *source.SyntaxError) {
	return Parse(source.NewFile("program", []byte(input)))
}

// Parse parses an experiment source file into an ordered command list.  The
// grammar has four primitive statements (nop, act, pre, ref) and one
// compound statement ("for <name> in range(...):" over an indented block).
// Unsupported statements and malformed ranges fail with a syntax error
// naming the offending construct; expressions are captured as text and not
// evaluated here.
func Parse(srcfile *source.File) ([]Command, *source.SyntaxError) {
	parser := &parser{srcfile, splitLines(srcfile), 0}
	//
	commands, err := parser.parseBlock(parser.currentIndent())
	if err != nil {
		return nil, err
	}
	// Anything left indicates a dedent below the top level, which cannot
	// happen, or an indent we failed to consume.
	if parser.pos != len(parser.lines) {
		line := parser.lines[parser.pos]
		return nil, srcfile.SyntaxError(line.span, "unexpected indentation")
	}
	//
	return commands, nil
}

// line is a single non-blank source line: its indentation depth and the span
// of its content (comments and surrounding whitespace stripped).
type line struct {
	indent int
	span   source.Span
}

type parser struct {
	srcfile *source.File
	lines   []line
	pos     int
}

func (p *parser) currentIndent() int {
	if p.pos < len(p.lines) {
		return p.lines[p.pos].indent
	}
	//
	return 0
}

// parseBlock parses consecutive statements at exactly the given indentation
// depth, stopping at a dedent.
func (p *parser) parseBlock(indent int) ([]Command, *source.SyntaxError) {
	var commands []Command
	//
	for p.pos < len(p.lines) {
		current := p.lines[p.pos]
		//
		if current.indent < indent {
			// Dedent; block finished.
			break
		} else if current.indent > indent {
			return nil, p.srcfile.SyntaxError(current.span, "unexpected indentation")
		}
		//
		command, err := p.parseStatement(current)
		if err != nil {
			return nil, err
		}
		//
		commands = append(commands, command)
	}
	//
	return commands, nil
}

// parseStatement parses a single statement, consuming its line (and, for a
// for statement, the indented block which follows).
func (p *parser) parseStatement(current line) (Command, *source.SyntaxError) {
	tokens := p.tokenise(current)
	cursor := &cursor{p.srcfile, tokens, 0}
	//
	if !cursor.follows(IDENTIFIER) {
		return nil, p.srcfile.SyntaxError(current.span, "unsupported statement")
	}
	// Consume the keyword
	keyword := cursor.text(cursor.lookahead())
	cursor.advance()
	//
	switch keyword {
	case "for":
		return p.parseFor(current, cursor)
	case "nop":
		p.pos++
		return p.parseNop(cursor)
	case "act":
		p.pos++
		return p.parseAct(cursor)
	case "pre":
		p.pos++
		return p.parseNullary(cursor, Precharge{})
	case "ref":
		p.pos++
		return p.parseNullary(cursor, Refresh{})
	default:
		return nil, p.srcfile.SyntaxError(current.span, "unsupported statement")
	}
}

// parseFor parses "for <name> in range(<bound>[, <bound>]):" followed by an
// indented block.  A loop over "_" with literal bounds becomes a hardware
// loop; anything else becomes a for loop with symbolic bounds.
func (p *parser) parseFor(header line, cursor *cursor) (Command, *source.SyntaxError) {
	if !cursor.follows(IDENTIFIER) {
		return nil, cursor.syntaxError("expected loop variable")
	}
	//
	loopVar := cursor.text(cursor.lookahead())
	cursor.advance()
	//
	if err := cursor.expectIdent("in"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expectIdent("range"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	//
	bounds, err := p.parseRangeBounds(cursor)
	if err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(COLON, "expected ':'"); err != nil {
		return nil, err
	}
	//
	if !cursor.done() {
		return nil, cursor.syntaxError("unexpected text after ':'")
	}
	//
	var start, end Operand
	//
	switch len(bounds) {
	case 1:
		start, end = IntOperand(0), bounds[0]
	case 2:
		start, end = bounds[0], bounds[1]
	default:
		return nil, p.srcfile.SyntaxError(header.span, "unsupported range: expected 1 or 2 bounds")
	}
	// Consume the header line, then its indented block.
	p.pos++
	//
	body, serr := p.parseLoopBody(header)
	if serr != nil {
		return nil, serr
	}
	// A loop over "_" is the controller's loop-with-repeat primitive, which
	// only exists for concrete counts.
	if loopVar == "_" {
		if !start.IsInt() || !end.IsInt() {
			return nil, p.srcfile.SyntaxError(header.span, "loop over '_' requires a numeric range")
		}
		//
		return HardwareLoop{Count: end.Int() - start.Int(), Body: body}, nil
	}
	//
	return ForLoop{Var: loopVar, Start: start, End: end, Body: body}, nil
}

func (p *parser) parseLoopBody(header line) ([]Command, *source.SyntaxError) {
	if p.pos >= len(p.lines) || p.lines[p.pos].indent <= header.indent {
		return nil, p.srcfile.SyntaxError(header.span, "expected an indented block")
	}
	//
	return p.parseBlock(p.lines[p.pos].indent)
}

// parseRangeBounds captures the range arguments up to the closing
// parenthesis, consuming it.
func (p *parser) parseRangeBounds(cursor *cursor) ([]Operand, *source.SyntaxError) {
	var bounds []Operand
	//
	for {
		operand, err := cursor.captureOperand()
		if err != nil {
			return nil, err
		}
		//
		bounds = append(bounds, operand)
		//
		if cursor.follows(COMMA) {
			cursor.advance()
			continue
		}
		//
		if err := cursor.expect(RPAREN, "expected ')'"); err != nil {
			return nil, err
		}
		//
		return bounds, nil
	}
}

// parseNop parses "nop(cycles=<int-literal>)".  A missing cycle count
// defaults to zero and is rejected downstream by the instruction compiler.
func (p *parser) parseNop(cursor *cursor) (Command, *source.SyntaxError) {
	if err := cursor.expect(LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	//
	cycles := 0
	//
	if !cursor.follows(RPAREN) {
		if err := cursor.expectIdent("cycles"); err != nil {
			return nil, err
		}
		//
		if err := cursor.expect(EQUALS, "expected '='"); err != nil {
			return nil, err
		}
		//
		if !cursor.follows(NUMBER) {
			return nil, cursor.syntaxError("nop cycles must be an integer literal")
		}
		//
		cycles = cursor.number()
		cursor.advance()
	}
	//
	if err := cursor.expect(RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	//
	if !cursor.done() {
		return nil, cursor.syntaxError("unexpected text after statement")
	}
	//
	return Nop{Cycles: cycles}, nil
}

// parseAct parses "act(bank=<expr>, row=<expr>)", capturing both expressions
// as operands.
func (p *parser) parseAct(cursor *cursor) (Command, *source.SyntaxError) {
	if err := cursor.expect(LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expectIdent("bank"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(EQUALS, "expected '='"); err != nil {
		return nil, err
	}
	//
	bank, err := cursor.captureOperand()
	if err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(COMMA, "expected ','"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expectIdent("row"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(EQUALS, "expected '='"); err != nil {
		return nil, err
	}
	//
	row, err := cursor.captureOperand()
	if err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	//
	if !cursor.done() {
		return nil, cursor.syntaxError("unexpected text after statement")
	}
	//
	return Activate{Bank: bank, Row: row}, nil
}

// parseNullary parses "pre()" or "ref()".
func (p *parser) parseNullary(cursor *cursor, command Command) (Command, *source.SyntaxError) {
	if err := cursor.expect(LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	//
	if err := cursor.expect(RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	//
	if !cursor.done() {
		return nil, cursor.syntaxError("unexpected text after statement")
	}
	//
	return command, nil
}

// tokenise lexes the content of a single line, shifting token spans so they
// index into the enclosing file.
func (p *parser) tokenise(current line) []lex.Token {
	var (
		content = p.srcfile.Contents()[current.span.Start():current.span.End()]
		lexer   = lex.NewLexer[rune](content, rules...)
		tokens  []lex.Token
	)
	//
	for _, token := range lexer.Collect() {
		if token.Kind == WHITESPACE {
			continue
		}
		//
		token.Span = token.Span.Shift(current.span.Start())
		tokens = append(tokens, token)
	}
	//
	return tokens
}

// cursor walks the tokens of one statement line.
type cursor struct {
	srcfile *source.File
	tokens  []lex.Token
	index   int
}

func (p *cursor) done() bool {
	return p.lookahead().Kind == END_OF
}

func (p *cursor) lookahead() lex.Token {
	return p.tokens[p.index]
}

func (p *cursor) advance() {
	if p.index+1 < len(p.tokens) {
		p.index++
	}
}

func (p *cursor) follows(kind uint) bool {
	return p.lookahead().Kind == kind
}

func (p *cursor) text(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

func (p *cursor) number() int {
	value, err := strconv.Atoi(p.text(p.lookahead()))
	if err != nil {
		panic("unreachable")
	}
	//
	return value
}

func (p *cursor) expect(kind uint, msg string) *source.SyntaxError {
	if !p.follows(kind) {
		return p.syntaxError(msg)
	}
	//
	p.advance()
	//
	return nil
}

func (p *cursor) expectIdent(name string) *source.SyntaxError {
	if !p.follows(IDENTIFIER) || p.text(p.lookahead()) != name {
		return p.syntaxError("expected '" + name + "'")
	}
	//
	p.advance()
	//
	return nil
}

func (p *cursor) syntaxError(msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.lookahead().Span, msg)
}

// captureOperand consumes tokens up to (but excluding) the next comma,
// colon or closing parenthesis at the current nesting depth, yielding either
// an integer literal or the raw expression text.
func (p *cursor) captureOperand() (Operand, *source.SyntaxError) {
	var (
		start = p.index
		depth = 0
	)
	//
	for !p.done() {
		kind := p.lookahead().Kind
		//
		if depth == 0 && (kind == COMMA || kind == COLON || kind == RPAREN) {
			break
		}
		//
		switch kind {
		case LPAREN, LBRACKET:
			depth++
		case RPAREN, RBRACKET:
			depth--
		}
		//
		p.advance()
	}
	//
	if p.index == start {
		return Operand{}, p.syntaxError("expected expression")
	}
	// A lone number is a literal; anything else stays symbolic.
	if p.index == start+1 && p.tokens[start].Kind == NUMBER {
		value, err := strconv.Atoi(p.text(p.tokens[start]))
		if err != nil {
			panic("unreachable")
		}
		//
		return IntOperand(value), nil
	}
	//
	span := source.NewSpan(p.tokens[start].Span.Start(), p.tokens[p.index-1].Span.End())
	//
	return ExprOperand(p.srcfile.Text(span)), nil
}

// splitLines splits a source file into non-blank lines, stripping comments
// and recording indentation.
func splitLines(srcfile *source.File) []line {
	var (
		contents = srcfile.Contents()
		lines    []line
		start    = 0
	)
	//
	for start <= len(contents) {
		end := findEol(contents, start)
		//
		if l, ok := contentOf(contents, start, end); ok {
			lines = append(lines, l)
		}
		//
		start = end + 1
	}
	//
	return lines
}

func findEol(contents []rune, start int) int {
	for i := start; i < len(contents); i++ {
		if contents[i] == '\n' {
			return i
		}
	}
	//
	return len(contents)
}

// contentOf extracts the content span of a physical line, reporting false
// for blank and comment-only lines.
func contentOf(contents []rune, start int, end int) (line, bool) {
	// Strip any comment
	for i := start; i < end; i++ {
		if contents[i] == '#' {
			end = i
			break
		}
	}
	// Measure indentation
	first := start
	for first < end && (contents[first] == ' ' || contents[first] == '\t') {
		first++
	}
	// Strip trailing whitespace
	for end > first && (contents[end-1] == ' ' || contents[end-1] == '\t' || contents[end-1] == '\r') {
		end--
	}
	//
	if first == end {
		return line{}, false
	}
	//
	return line{indent: first - start, span: source.NewSpan(first, end)}, true
}
