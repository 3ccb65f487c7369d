package tomo

import "strings"

// parseInt parses an Int literal per §4.7 Literals: optional base
// prefix (0x/0o/0b), digit run with `_` separators, optional bit-width
// suffix (`_i8`/`_i16`/`_i32`/`_i64`), optional `%` or `deg` unit suffix.
func (p *Parser) parseInt() (Node, error) {
	start := p.pos
	digitSet := func(c byte) bool { return isDigit(c) || c == '_' }

	if p.lookingAt("0x") || p.lookingAt("0X") {
		p.pos += 2
		for isHexDigit(p.peek()) || p.peek() == '_' {
			p.advance()
		}
	} else if p.lookingAt("0o") || p.lookingAt("0O") {
		p.pos += 2
		for isOctalDigit(p.peek()) || p.peek() == '_' {
			p.advance()
		}
	} else if p.lookingAt("0b") || p.lookingAt("0B") {
		p.pos += 2
		for p.peek() == '0' || p.peek() == '1' || p.peek() == '_' {
			p.advance()
		}
	} else {
		if !isDigit(p.peek()) {
			return nil, p.errf(ParseErrorSyntactic, start, "expected a digit")
		}
		for digitSet(p.peek()) {
			p.advance()
		}
		// Not a float: a following `.` only belongs to us if it's not
		// `..` (continuation marker) and is followed by a digit.
		if p.peek() == '.' && isDigit(p.peekAt(1)) {
			p.pos = start
			return p.parseNum()
		}
		if p.peek() == 'e' || p.peek() == 'E' {
			save := p.pos
			p.advance()
			if p.peek() == '+' || p.peek() == '-' {
				p.advance()
			}
			if isDigit(p.peek()) {
				p.pos = start
				return p.parseNum()
			}
			p.pos = save
		}
	}
	// A `_` directly before `i` opens the width suffix, not a separator.
	if p.at(p.pos-1) == '_' && p.peek() == 'i' {
		p.pos--
	}
	text := p.file.Text[start:p.pos]

	bitWidth := 0
	if p.lookingAt("_i8") {
		p.pos += 3
		bitWidth = 8
	} else if p.lookingAt("_i16") {
		p.pos += 4
		bitWidth = 16
	} else if p.lookingAt("_i32") {
		p.pos += 4
		bitWidth = 32
	} else if p.lookingAt("_i64") {
		p.pos += 4
		bitWidth = 64
	}

	unit := ""
	if p.peek() == '%' {
		p.advance()
		unit = "%"
	} else if p.lookingAt("deg") {
		p.pos += 3
		unit = "deg"
	}

	return &IntNode{base: newBase(p.span(start)), Text: text, BitWidth: bitWidth, Unit: unit}, nil
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }

// parseNum parses a floating point literal: digits, `.`, digits,
// optional exponent, optional width suffix (_32/_64), optional unit.
func (p *Parser) parseNum() (Node, error) {
	start := p.pos
	if !isDigit(p.peek()) {
		return nil, p.errf(ParseErrorSyntactic, start, "expected a digit")
	}
	for isDigit(p.peek()) || p.peek() == '_' {
		p.advance()
	}
	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.advance()
		for isDigit(p.peek()) || p.peek() == '_' {
			p.advance()
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		save := p.pos
		p.advance()
		if p.peek() == '+' || p.peek() == '-' {
			p.advance()
		}
		if isDigit(p.peek()) {
			for isDigit(p.peek()) {
				p.advance()
			}
		} else {
			p.pos = save
		}
	}
	text := p.file.Text[start:p.pos]

	width := 64
	if p.lookingAt("_32") {
		p.pos += 3
		width = 32
	} else if p.lookingAt("_64") {
		p.pos += 3
	}

	unit := ""
	if p.peek() == '%' {
		p.advance()
		unit = "%"
	} else if p.lookingAt("deg") {
		p.pos += 3
		unit = "deg"
	}

	return &NumNode{base: newBase(p.span(start)), Text: text, Width: width, Unit: unit}, nil
}

func (p *Parser) parseBool() (Node, error) {
	start := p.pos
	if p.lookingAt("yes") && !isAlnum(p.peekAt(3)) {
		p.pos += 3
		return &BoolNode{base: newBase(p.span(start)), Value: true}, nil
	}
	if p.lookingAt("no") && !isAlnum(p.peekAt(2)) {
		p.pos += 2
		return &BoolNode{base: newBase(p.span(start)), Value: false}, nil
	}
	return nil, p.errf(ParseErrorSyntactic, start, "expected `yes` or `no`")
}

// parseNone parses `!Type`, a typed none literal.
func (p *Parser) parseNone() (Node, error) {
	start := p.pos
	if err := p.expectByte('!'); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &NoneNode{base: newBase(p.span(start)), Type: typ}, nil
}

// parseTypeExpr parses the small subset of expression syntax valid in
// type position: a name optionally followed by suffix chains like
// `[T]` or `.Field`, reusing the same grammar as value suffix chains
// per §4.7 (types and values share syntax in Tomo).
func (p *Parser) parseTypeExpr() (Node, error) {
	start := p.pos
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	n := Node(&VarNode{base: newBase(p.span(start)), Name: name})
	for {
		if p.peek() == '.' && isAlpha(p.peekAt(1)) {
			p.advance()
			field, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			n = &FieldAccessNode{base: newBase(p.span(start)), Target: n, Field: field}
			continue
		}
		break
	}
	return n, nil
}

func (p *Parser) parseVar() (Node, error) {
	start := p.pos
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if tomoKeywords[name] {
		p.pos = start
		return nil, p.errf(ParseErrorSyntactic, start, "`%s` is a keyword, not a variable name", name)
	}
	return &VarNode{base: newBase(p.span(start)), Name: name}, nil
}

// trimContinuations strips `..`-prefixed continuation markers from
// multi-line text per §4.7 item 6, joining continuation lines into
// their logical line without the leading marker or its indentation.
func trimContinuations(s string) string {
	lines := strings.Split(s, "\n")
	var out strings.Builder
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if i > 0 && strings.HasPrefix(trimmed, "..") {
			out.WriteString(trimmed[2:])
			continue
		}
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
	}
	return out.String()
}
