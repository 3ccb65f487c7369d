package tomo

// quoteDelimiters maps an opening quote-ish character to its matching
// close, covering the custom-delimiter forms of §4.7 item 1:
// `"..."`, `'...'`, and bracket pairs `(...)`, `[...]`, `{...}`,
// `<...>` when used as a custom delimiter after a `$lang` tag.
var quoteDelimiters = map[byte]byte{
	'"': '"', '\'': '\'', '(': ')', '[': ']', '{': '}', '<': '>',
}

// parseTextLiteral parses an interpolated string: an optional `$lang`
// tag, an optional custom interpolation character override, a quote
// delimiter, and a body of literal-text runs, escape sequences, and
// `$(expr)`-style interpolations (§4.7 item 2, item 4).
func (p *Parser) parseTextLiteral() (Node, error) {
	start := p.pos
	lang := ""
	interpChar := byte('$')

	if p.peek() == '$' {
		save := p.pos
		p.advance()
		if isAlpha(p.peek()) {
			id, err := p.parseIdentifier()
			if err == nil {
				lang = id
			}
			if _, isQuote := quoteDelimiters[p.peek()]; !isQuote {
				// Not actually a lang tag glued to a delimiter; treat
				// the whole thing as ordinary text starting with `$`.
				p.pos = save
				lang = ""
			}
		} else if p.peek() == '/' {
			// `$/pattern/` implicit-lang shorthand.
			lang = "Pattern"
			return p.parseDelimitedInterpolated(start, lang, interpChar, '/', '/')
		} else if _, isQuote := quoteDelimiters[p.peek()]; !isQuote {
			// bare `$` not followed by a tag or delimiter: not a text
			// literal at all.
			p.pos = save
			return nil, p.errf(ParseErrorSyntactic, start, "expected a text literal")
		}
	}

	open, isQuote := quoteDelimiters[p.peek()]
	if !isQuote {
		return nil, p.errf(ParseErrorSyntactic, start, "expected an opening quote")
	}
	delim := p.peek()
	p.advance()

	// Interpolation-character override: `$"..."` style strings may be
	// followed immediately by a second delimiter-looking char used as
	// a custom interpolation marker instead of `$`, per item 2; we
	// detect this by a leading marker char that isn't alnum/space and
	// isn't the closing delimiter.
	if lang != "" && p.peek() != 0 && p.peek() != open && !isAlnum(p.peek()) && !isHSpace(p.peek()) && p.peek() != '\n' {
		if _, isCloseLike := quoteDelimiters[p.peek()]; !isCloseLike {
			interpChar = p.peek()
			p.advance()
		}
	}

	return p.parseDelimitedInterpolated(start, lang, interpChar, delim, open)
}

func (p *Parser) parseDelimitedInterpolated(start int32, lang string, interpChar, delim, closeDelim byte) (Node, error) {
	var children []Node
	var textStart = p.pos
	depth := 1
	flushText := func(end int32) {
		if end > textStart {
			raw := p.file.Text[textStart:end]
			children = append(children, &TextLiteralNode{
				base:  newBase(Span{File: p.file, Start: textStart, End: end}),
				Value: trimContinuations(raw),
			})
		}
	}

	for {
		if p.eof() {
			return nil, p.errf(ParseErrorLexical, start, "unterminated text literal")
		}
		c := p.peek()
		if c == delim && delim == closeDelim {
			flushText(p.pos)
			p.advance()
			break
		}
		if delim != closeDelim {
			if c == delim {
				depth++
				p.advance()
				continue
			}
			if c == closeDelim {
				depth--
				if depth == 0 {
					flushText(p.pos)
					p.advance()
					break
				}
				p.advance()
				continue
			}
		}
		if c == '\\' {
			flushText(p.pos)
			esc, err := p.parseEscapeSequence()
			if err != nil {
				return nil, err
			}
			children = append(children, esc)
			textStart = p.pos
			continue
		}
		if c == interpChar && p.peekAt(1) == '(' {
			flushText(p.pos)
			p.advance() // interpChar
			p.advance() // (
			p.skipInlineSpace()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.skipInlineSpace()
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
			children = append(children, expr)
			textStart = p.pos
			continue
		}
		// Bare interpolation (§4.7 item 4): each occurrence of the
		// interpolation character not followed by `(` still introduces
		// a sub-expression, parsed as a term/suffix-chain with no
		// parentheses. Whitespace immediately after the interpolation
		// character is rejected rather than treated as literal text.
		if c == interpChar {
			interpStart := p.pos
			flushText(interpStart)
			p.advance() // interpChar
			if p.eof() || isHSpace(p.peek()) || p.peek() == '\n' {
				return nil, p.errf(ParseErrorLexical, interpStart, "whitespace is not allowed before an interpolation here")
			}
			expr, err := p.parseSuffixChain()
			if err != nil {
				return nil, err
			}
			children = append(children, expr)
			textStart = p.pos
			continue
		}
		p.advance()
	}

	return &TextJoinNode{base: newBase(p.span(start)), Lang: lang, Children: children}, nil
}

var namedEscapes = map[byte]rune{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, '\\': '\\', '"': '"', '\'': '\'',
	'$': '$', 'a': '\a', 'b': '\b', 'f': '\f', 'v': '\v',
}

// parseEscapeSequence parses the escape forms of §4.7 item 3: named
// escapes, `\xHH`, `\U[name]`, `\Uhex`, octal triples, and verbatim
// backslash-char passthrough for anything else.
func (p *Parser) parseEscapeSequence() (Node, error) {
	start := p.pos
	if err := p.expectByte('\\'); err != nil {
		return nil, err
	}
	c := p.peek()
	switch {
	case c == 'x':
		p.advance()
		hexStart := p.pos
		for i := 0; i < 2 && isHexDigit(p.peek()); i++ {
			p.advance()
		}
		raw := p.file.Text[hexStart:p.pos]
		return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeHex, Raw: raw}, nil
	case c == 'U':
		p.advance()
		if p.peek() == '[' {
			p.advance()
			nameStart := p.pos
			for p.peek() != ']' && !p.eof() {
				p.advance()
			}
			raw := p.file.Text[nameStart:p.pos]
			if err := p.expectByte(']'); err != nil {
				return nil, err
			}
			return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeUnicodeName, Raw: raw}, nil
		}
		hexStart := p.pos
		for isHexDigit(p.peek()) {
			p.advance()
		}
		raw := p.file.Text[hexStart:p.pos]
		return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeUnicodeHex, Raw: raw}, nil
	case c >= '0' && c <= '7':
		octStart := p.pos
		for i := 0; i < 3 && isOctalDigit(p.peek()); i++ {
			p.advance()
		}
		raw := p.file.Text[octStart:p.pos]
		return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeOctal, Raw: raw}, nil
	default:
		if r, ok := namedEscapes[c]; ok {
			p.advance()
			return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeNamed, Raw: string(c), Value: r}, nil
		}
		p.advance()
		return &EscapeSequenceNode{base: newBase(p.span(start)), Kind: EscapeVerbatim, Raw: string(c), Value: rune(c)}, nil
	}
}

// parsePathLiteral parses the path-literal sublanguage: `(~/...)`,
// `(./...)`, `(../...)`, `(/...)`, rendered as a TextJoin tagged
// "Path" so later stages treat it like any other interpolated value
// (§4.7 "Path literal sublanguage").
func (p *Parser) parsePathLiteral() (Node, error) {
	start := p.pos
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	if !p.lookingAt("~/") && !p.lookingAt("./") && !p.lookingAt("../") && p.peek() != '/' {
		p.pos = start
		return nil, p.errf(ParseErrorSyntactic, start, "expected a path literal")
	}
	return p.parseDelimitedInterpolated(start, "Path", '$', '(', ')')
}
