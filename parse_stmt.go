package tomo

// parseBlockBody parses the body of a compound statement per §4.7
// "Block structure": either a colon followed by an inline
// `;`-separated statement list on the same line, or a colon, newline,
// and an indented block at exactly one level deeper than the
// enclosing statement.
func (p *Parser) parseBlockBody() (*BlockNode, error) {
	start := p.pos
	p.skipInlineSpace()
	if err := p.expectByte(':'); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	if p.peek() != '\n' {
		stmts, err := p.parseInlineStatements()
		if err != nil {
			return nil, err
		}
		return &BlockNode{base: newBase(p.span(start)), Statements: stmts}, nil
	}
	return p.parseIndentedBlock(start)
}

// parseInlineStatements parses statements separated by `;` on a
// single line, terminated by a newline or EOF.
func (p *Parser) parseInlineStatements() ([]Node, error) {
	var stmts []Node
	for {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipInlineSpace()
		if p.peek() == ';' {
			p.advance()
			p.skipInlineSpace()
			continue
		}
		break
	}
	return stmts, nil
}

// parseIndentedBlock consumes the newline after a block-opening colon
// and parses statements at one indentation level deeper than the
// parser's current open-block level, per §4.7's 4-space-or-tab rule.
func (p *Parser) parseIndentedBlock(start int32) (*BlockNode, error) {
	if err := p.expectByte('\n'); err != nil {
		return nil, err
	}
	p.skipBlankLines()
	if p.eof() {
		return &BlockNode{base: newBase(p.span(start))}, nil
	}
	col, err := p.currentIndent()
	if err != nil {
		return nil, err
	}
	if col <= p.curIndent() {
		return nil, p.errf(ParseErrorLexical, p.pos, "expected an indented block")
	}
	p.pushIndent(col)
	defer p.popIndent()

	var stmts []Node
	for {
		p.skipInlineSpace()
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipBlankLines()
		if p.eof() {
			break
		}
		if !p.atIndent(col) {
			break
		}
		p.skipInlineSpace()
	}
	return &BlockNode{base: newBase(p.span(start)), Statements: stmts}, nil
}

// parseStatement dispatches to the right statement production by
// keyword lookahead, falling back to an expression-statement
// (assignment, declaration, or a bare call/DocTest).
func (p *Parser) parseStatement() (Node, error) {
	start := p.pos
	switch {
	case p.lookingAt("if") && !isAlnum(p.peekAt(2)):
		return p.parseIf()
	case p.lookingAt("when") && !isAlnum(p.peekAt(4)):
		return p.parseWhen()
	case p.lookingAt("for") && !isAlnum(p.peekAt(3)):
		return p.parseFor()
	case p.lookingAt("while") && !isAlnum(p.peekAt(5)):
		return p.parseWhile()
	case p.lookingAt("repeat") && !isAlnum(p.peekAt(6)):
		return p.parseRepeat()
	case p.lookingAt("return") && !isAlnum(p.peekAt(6)):
		return p.parseReturn()
	case p.lookingAt("stop") && !isAlnum(p.peekAt(4)):
		return p.parseStopSkip(start, "stop")
	case p.lookingAt("skip") && !isAlnum(p.peekAt(4)):
		return p.parseStopSkip(start, "skip")
	case p.lookingAt("say") && !isAlnum(p.peekAt(3)):
		return p.parsePrintStatement()
	}

	if p.topLevel {
		switch {
		case p.lookingAt("struct") && !isAlnum(p.peekAt(6)):
			return p.parseStructDef()
		case p.lookingAt("enum") && !isAlnum(p.peekAt(4)):
			return p.parseEnumDef()
		case p.lookingAt("lang") && !isAlnum(p.peekAt(4)):
			return p.parseLangDef()
		case p.lookingAt("func") && p.peekAt(4) != '(' && isHSpaceOrAlpha(p.peekAt(4)):
			return p.parseFunctionDef()
		case p.lookingAt("extern") && !isAlnum(p.peekAt(6)):
			return p.parseExtern()
		case p.lookingAt("use") && !isAlnum(p.peekAt(3)):
			return p.parseUse()
		case p.lookingAt("!link"):
			return p.parseLinkerDirective()
		case p.lookingAt(">>"):
			save := p.pos
			p.pos += 2
			p.skipInlineSpace()
			brace := p.peek() == '{'
			p.pos = save
			if brace {
				return p.parseInlineCCode()
			}
		}
	}

	return p.parseExprStatement()
}

func isHSpaceOrAlpha(c byte) bool { return isHSpace(c) || isAlpha(c) }

func (p *Parser) parseIf() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	node := &IfNode{base: newBase(p.span(start)), Condition: cond, Then: then}

	for {
		save := p.pos
		p.skipBlankLines()
		if !p.atIndent(p.curIndent()) && p.curIndent() != 0 {
			p.pos = save
			break
		}
		sp := p.pos
		p.skipInlineSpace()
		if p.lookingAt("elseif") && !isAlnum(p.peekAt(6)) {
			p.pos += 6
			p.skipInlineSpace()
			c2, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			b2, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			node.ElseIf = append(node.ElseIf, &IfNode{base: newBase(p.span(sp)), Condition: c2, Then: b2})
			continue
		}
		if p.lookingAt("else") && !isAlnum(p.peekAt(4)) {
			p.pos += 4
			b, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			node.Else = b
			break
		}
		p.pos = save
		break
	}
	return node, nil
}

func (p *Parser) parseWhen() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("when"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(':'); err != nil {
		return nil, err
	}
	if err := p.expectByte('\n'); err != nil {
		return nil, err
	}
	p.skipBlankLines()
	col, err := p.currentIndent()
	if err != nil {
		return nil, err
	}
	p.pushIndent(col)
	defer p.popIndent()

	node := &WhenNode{base: newBase(p.span(start)), Subject: subject}
	for p.atIndent(col) {
		p.skipInlineSpace()
		cstart := p.pos
		if p.lookingAt("else") && !isAlnum(p.peekAt(4)) {
			p.pos += 4
			b, err := p.parseBlockBody()
			if err != nil {
				return nil, err
			}
			node.Else = b
			p.skipBlankLines()
			continue
		}
		if err := p.expectKeyword("is"); err != nil {
			return nil, err
		}
		p.skipInlineSpace()
		var tags []string
		for {
			tag, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
			p.skipInlineSpace()
			if p.peek() == ',' {
				p.advance()
				p.skipInlineSpace()
				continue
			}
			break
		}
		var vars []string
		if p.peek() == '(' {
			p.advance()
			for p.peek() != ')' {
				v, err := p.parseIdentifier()
				if err != nil {
					return nil, err
				}
				vars = append(vars, v)
				p.skipInlineSpace()
				if p.peek() == ',' {
					p.advance()
					p.skipInlineSpace()
					continue
				}
				break
			}
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		node.Clauses = append(node.Clauses, &WhenClauseNode{
			base: newBase(p.span(cstart)), Tags: tags, Vars: vars, Body: body,
		})
		p.skipBlankLines()
	}
	return node, nil
}

func (p *Parser) parseFor() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	indexVar, valueVar := "", first
	p.skipInlineSpace()
	if p.peek() == ',' {
		p.advance()
		p.skipInlineSpace()
		second, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		indexVar, valueVar = first, second
	}
	p.skipInlineSpace()
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	node := &ForNode{base: newBase(p.span(start)), IndexVar: indexVar, ValueVar: valueVar, Iterable: iterable, Body: body}

	save := p.pos
	p.skipBlankLines()
	p.skipInlineSpace()
	if p.lookingAt("else") && !isAlnum(p.peekAt(4)) {
		p.pos += 4
		empty, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		node.Empty = empty
	} else {
		p.pos = save
	}
	return node, nil
}

func (p *Parser) parseWhile() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return &WhileNode{base: newBase(p.span(start)), Condition: cond, Body: body}, nil
}

func (p *Parser) parseRepeat() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("repeat"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return &RepeatNode{base: newBase(p.span(start)), Body: body}, nil
}

func (p *Parser) parseReturn() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	if p.peek() == '\n' || p.peek() == ';' || p.eof() {
		return &ReturnNode{base: newBase(p.span(start))}, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ReturnNode{base: newBase(p.span(start)), Value: val}, nil
}

func (p *Parser) parseStopSkip(start int32, kw string) (Node, error) {
	if err := p.expectKeyword(kw); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	label := ""
	if isAlpha(p.peek()) {
		save := p.pos
		id, err := p.parseIdentifier()
		if err == nil && !tomoKeywords[id] {
			label = id
		} else {
			p.pos = save
		}
	}
	if kw == "stop" {
		return &StopNode{base: newBase(p.span(start)), Label: label}, nil
	}
	return &SkipNode{base: newBase(p.span(start)), Label: label}, nil
}

func (p *Parser) parsePrintStatement() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("say"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	var args []Node
	for {
		if p.peek() == '\n' || p.eof() || p.peek() == ';' {
			break
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipInlineSpace()
		if p.peek() == ',' {
			p.advance()
			p.skipInlineSpace()
			continue
		}
		break
	}
	return &PrintStatementNode{base: newBase(p.span(start)), Args: args}, nil
}

var updateAssignOps = []string{
	"+=", "-=", "*=", "/=", "^=", "<<=", ">>=", "and=", "or=", "++=",
}

// parseExprStatement parses a declaration (`x := value`), an
// assignment/update-assignment, a DocTest (`>> expr` with an optional
// `= expected` result line), or a bare expression statement.
func (p *Parser) parseExprStatement() (Node, error) {
	start := p.pos
	if p.lookingAt(">>") {
		return p.parseDocTest(start)
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()

	if p.lookingAt(":=") {
		name, ok := first.(*VarNode)
		if !ok {
			return nil, p.errf(ParseErrorSemantic, start, "left side of `:=` must be a plain name")
		}
		p.pos += 2
		p.skipInlineSpace()
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &DeclareNode{base: newBase(p.span(start)), Name: name.Name, Value: val}, nil
	}

	for _, op := range updateAssignOps {
		if p.lookingAt(op) {
			p.pos += int32(len(op))
			p.skipInlineSpace()
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &UpdateAssignNode{base: newBase(p.span(start)), Op: op[:len(op)-1], Target: first, Value: val}, nil
		}
	}

	if p.peek() == '=' && p.peekAt(1) != '=' {
		targets := []Node{first}
		for p.peek() == '=' && p.peekAt(1) != '=' {
			p.advance()
			p.skipInlineSpace()
			next, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.skipInlineSpace()
			targets = append(targets, next)
		}
		values := targets[len(targets)-1:]
		targets = targets[:len(targets)-1]
		return &AssignNode{base: newBase(p.span(start)), Targets: targets, Values: values}, nil
	}

	return first, nil
}

// parseDocTest parses `>> expr` optionally followed by a newline and
// an indented `= expected` result line, per the doctest convention
// exercised throughout the original standard library's own source.
func (p *Parser) parseDocTest(start int32) (Node, error) {
	if err := p.expectLiteral(">>"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	node := &DocTestNode{base: newBase(p.span(start)), Expression: expr}
	save := p.pos
	p.skipInlineSpace()
	if p.peek() == '\n' {
		p.advance()
		p.skipInlineSpace()
		if p.peek() == '=' {
			p.advance()
			p.skipInlineSpace()
			lineStart := p.pos
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}
			node.Expected = p.file.Text[lineStart:p.pos]
			return node, nil
		}
	}
	p.pos = save
	return node, nil
}
