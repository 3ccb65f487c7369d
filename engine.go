package tomo

import (
	"strings"
)

// Parser is the hand-written, tokenless recursive-descent engine
// described in §4.7. It carries no separate lexer: every production
// reads bytes directly off p.file.Text and tracks indentation itself.
//
// Every alternative-trying call site (tryNode, and the manual
// save/restore pattern used throughout parse_*.go) saves the cursor
// before attempting a production and restores it on failure, which is
// operationally the same discipline §4.7 describes as "returns an AST
// and advances a local copy of pos, or returns NULL without
// committing": no partial state escapes a failed attempt.
type Parser struct {
	file *File
	pos  int32

	// indent is the stack of column-indentations of currently open
	// blocks, outermost first (§4.7 "Whitespace policy", "Block
	// structure").
	indent []int

	nextLambdaID int
	topLevel     bool // true only at file scope or inside namespace blocks
}

// NewParser creates a parser bound to a loaded source file.
func NewParser(file *File) *Parser {
	return &Parser{file: file, topLevel: true}
}

func (p *Parser) span(start int32) Span {
	return Span{File: p.file, Start: start, End: p.pos}
}

func (p *Parser) at(pos int32) byte {
	if int(pos) >= len(p.file.Text) {
		return 0
	}
	return p.file.Text[pos]
}

func (p *Parser) peek() byte { return p.at(p.pos) }

func (p *Parser) peekAt(offset int32) byte { return p.at(p.pos + offset) }

func (p *Parser) eof() bool { return int(p.pos) >= len(p.file.Text) }

func (p *Parser) advance() byte {
	c := p.peek()
	if c != 0 {
		p.pos++
	}
	return c
}

func (p *Parser) errf(kind ParseErrorKind, start int32, format string, args ...any) error {
	return newParseError(kind, p.span(start), format, args...)
}

// ---- horizontal whitespace & comments ----

func isHSpace(c byte) bool { return c == ' ' || c == '\t' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// skipComment consumes a `#`-to-end-of-line comment, if present.
func (p *Parser) skipComment() {
	if p.peek() == '#' {
		for !p.eof() && p.peek() != '\n' {
			p.advance()
		}
	}
}

// skipInlineSpace consumes runs of horizontal whitespace and trailing
// comments, but does not cross a newline.
func (p *Parser) skipInlineSpace() {
	for {
		c := p.peek()
		if isHSpace(c) {
			p.advance()
			continue
		}
		if c == '#' {
			p.skipComment()
			continue
		}
		break
	}
}

// currentIndent measures the indentation (in columns, tabs counted as
// one each to match whichever convention opened the file — §4.7
// forbids mixing tabs and spaces on one line, so a uniform count is
// sufficient) of the line containing p.pos, scanning back to the
// preceding newline.
func (p *Parser) currentIndent() (int, error) {
	lineStart := p.pos
	for lineStart > 0 && p.at(lineStart-1) != '\n' {
		lineStart--
	}
	hasTab, hasSpace := false, false
	col := 0
	i := lineStart
	for {
		c := p.at(i)
		if c == ' ' {
			hasSpace = true
		} else if c == '\t' {
			hasTab = true
		} else {
			break
		}
		col++
		i++
	}
	if hasTab && hasSpace {
		return 0, p.errf(ParseErrorLexical, lineStart, "inconsistent use of tabs and spaces in indentation")
	}
	return col, nil
}

// skipBlankLines advances past newlines and fully blank (or
// comment-only) lines, leaving p.pos at the start of the first
// non-blank line (before its indentation), or at EOF.
func (p *Parser) skipBlankLines() {
	for {
		save := p.pos
		p.skipInlineSpace()
		if p.peek() == '\n' {
			p.advance()
			continue
		}
		p.pos = save
		break
	}
}

// atIndent reports whether the line containing p.pos is indented by
// exactly `level` columns. It consumes nothing: p.pos is restored
// before returning, and a tab/space mix reports false.
func (p *Parser) atIndent(level int) bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipInlineSpace()
	col, err := p.currentIndent()
	if err != nil {
		return false
	}
	return col == level
}

func (p *Parser) pushIndent(level int) { p.indent = append(p.indent, level) }
func (p *Parser) popIndent()           { p.indent = p.indent[:len(p.indent)-1] }
func (p *Parser) curIndent() int {
	if len(p.indent) == 0 {
		return 0
	}
	return p.indent[len(p.indent)-1]
}

// ---- identifiers ----

func (p *Parser) parseIdentifier() (string, error) {
	start := p.pos
	if !isAlpha(p.peek()) {
		return "", p.errf(ParseErrorSyntactic, start, "expected an identifier")
	}
	for isAlnum(p.peek()) {
		p.advance()
	}
	return p.file.Text[start:p.pos], nil
}

var tomoKeywords = map[string]bool{
	"and": true, "or": true, "xor": true, "not": true, "mod": true, "mod1": true,
	"yes": true, "no": true, "if": true, "elseif": true, "else": true,
	"when": true, "is": true, "for": true, "while": true, "repeat": true,
	"return": true, "stop": true, "skip": true, "struct": true, "enum": true,
	"lang": true, "func": true, "use": true, "extern": true, "inline": true,
	"cached": true, "cache_size": true, "deg": true, "fallback": true,
}

func (p *Parser) expectKeyword(kw string) error {
	start := p.pos
	word, err := p.parseIdentifier()
	if err != nil || word != kw {
		p.pos = start
		return p.errf(ParseErrorSyntactic, start, "expected keyword `%s`", kw)
	}
	return nil
}

func (p *Parser) expectByte(c byte) error {
	start := p.pos
	if p.peek() != c {
		return p.errf(ParseErrorSyntactic, start, "expected `%c` but got `%c`", c, p.peek())
	}
	p.advance()
	return nil
}

func (p *Parser) expectLiteral(lit string) error {
	start := p.pos
	if !strings.HasPrefix(p.file.Text[p.pos:], lit) {
		return p.errf(ParseErrorSyntactic, start, "expected `%s`", lit)
	}
	p.pos += int32(len(lit))
	return nil
}

func (p *Parser) lookingAt(lit string) bool {
	return strings.HasPrefix(p.file.Text[p.pos:], lit)
}
