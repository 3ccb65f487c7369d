package tomo

// binOpLevels is the precedence table from §4.7 (ascending = binds
// tighter). Each level lists its operator spellings in the order they
// should be tried (longest-match first where one is a prefix of
// another, e.g. `<=` before `<`).
var binOpLevels = [][]string{
	{"and", "or", "xor"},
	{"<=", ">=", "<>", "<", ">"},
	{"==", "!="},
	{"_min_", "_max_"},
	{"<<", ">>"},
	{"++"},
	{"+", "-"},
	{"*", "/", "mod1", "mod"},
	{"^"},
}

// parseExpression parses a full expression via precedence climbing
// starting at the loosest level.
func (p *Parser) parseExpression() (Node, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(level int) (Node, error) {
	if level >= len(binOpLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		p.skipInlineSpace()
		op, matched := p.matchOp(binOpLevels[level])
		if !matched {
			return left, nil
		}
		save := p.pos
		p.pos += int32(len(op))
		p.skipInlineSpace()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			p.pos = save
			return left, nil
		}
		left = &BinaryOpNode{base: newBase(p.span(left.Span().Start)), Op: op, Left: left, Right: right}
	}
}

// matchOp checks whether one of ops matches at the current position.
// Word-shaped operators (`and`, `mod`, etc.) require a non-identifier
// boundary after the match so `android` doesn't parse as `and` `roid`.
func (p *Parser) matchOp(ops []string) (string, bool) {
	for _, op := range ops {
		if !p.lookingAt(op) {
			continue
		}
		if isAlpha(op[0]) {
			if isAlnum(p.peekAt(int32(len(op)))) {
				continue
			}
		}
		return op, true
	}
	return "", false
}

// parseUnary handles the prefix operators that bind tighter than any
// binary operator (§4.7 "Unary prefixes"): `-`, `not`, `@`, `&`. `@`
// and `&` consume only a tight suffix chain of their operand, not a
// full unary/binary expression.
func (p *Parser) parseUnary() (Node, error) {
	start := p.pos
	switch {
	case p.peek() == '-':
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{base: newBase(p.span(start)), Op: "-", Operand: operand}, nil
	case p.lookingAt("not") && !isAlnum(p.peekAt(3)):
		p.pos += 3
		p.skipInlineSpace()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{base: newBase(p.span(start)), Op: "not", Operand: operand}, nil
	case p.peek() == '@':
		p.advance()
		operand, err := p.parseSuffixChain()
		if err != nil {
			return nil, err
		}
		return &HeapAllocNode{base: newBase(p.span(start)), Operand: operand}, nil
	case p.peek() == '&':
		p.advance()
		operand, err := p.parseSuffixChain()
		if err != nil {
			return nil, err
		}
		return &StackRefNode{base: newBase(p.span(start)), Operand: operand}, nil
	}
	return p.parseSuffixChain()
}

// parseSuffixChain parses an atom followed by any number of `.field`,
// `[index]`, `(args)`, `:method(args)`, `?` suffixes.
func (p *Parser) parseSuffixChain() (Node, error) {
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	start := n.Span().Start
	for {
		switch {
		case p.peek() == '.' && isAlpha(p.peekAt(1)):
			p.advance()
			field, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			n = &FieldAccessNode{base: newBase(p.span(start)), Target: n, Field: field}
		case p.peek() == '[':
			p.advance()
			p.skipInlineSpace()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.skipInlineSpace()
			if err := p.expectByte(']'); err != nil {
				return nil, err
			}
			n = &IndexNode{base: newBase(p.span(start)), Target: n, Index: idx}
		case p.peek() == '(':
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			n = &FunctionCallNode{base: newBase(p.span(start)), Callee: n, Args: args}
		case p.peek() == ':' && isAlpha(p.peekAt(1)):
			p.advance()
			method, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			var args []Node
			if p.peek() == '(' {
				args, err = p.parseArgList()
				if err != nil {
					return nil, err
				}
			}
			n = &MethodCallNode{base: newBase(p.span(start)), Target: n, Method: method, Args: args}
		case p.peek() == '?':
			p.advance()
			n = &OptionalCheckNode{base: newBase(p.span(start)), Operand: n}
		default:
			return n, nil
		}
	}
}

func (p *Parser) parseArgList() ([]Node, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	var args []Node
	p.skipBlankLines()
	p.skipInlineSpace()
	for p.peek() != ')' {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipInlineSpace()
		if p.peek() == ',' {
			p.advance()
			p.skipBlankLines()
			p.skipInlineSpace()
			continue
		}
		break
	}
	p.skipBlankLines()
	p.skipInlineSpace()
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	return args, nil
}

// parseAtom parses the innermost expression forms: literals,
// variables, parenthesized expressions, compound literals, and
// lambdas.
func (p *Parser) parseAtom() (Node, error) {
	p.skipInlineSpace()
	start := p.pos
	switch {
	case p.peek() == '(':
		if n, err := p.tryNode(p.parsePathLiteral); err == nil {
			return n, nil
		}
		p.advance()
		p.skipInlineSpace()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipInlineSpace()
		if err := p.expectByte(')'); err != nil {
			return nil, err
		}
		return inner, nil
	case p.peek() == '[':
		return p.parseListOrTable()
	case p.peek() == '{':
		return p.parseSetOrTableBraces()
	case p.peek() == '!':
		return p.parseNone()
	case isDigit(p.peek()):
		return p.parseInt()
	case p.lookingAt("func") && !isAlnum(p.peekAt(4)):
		return p.parseLambda()
	case p.lookingAt("yes") && !isAlnum(p.peekAt(3)), p.lookingAt("no") && !isAlnum(p.peekAt(2)):
		return p.parseBool()
	case p.peek() == '$' || p.peek() == '"' || p.peek() == '\'':
		return p.parseTextLiteral()
	case isAlpha(p.peek()):
		return p.parseVar()
	}
	return nil, p.errf(ParseErrorSyntactic, start, "expected an expression")
}

func (p *Parser) tryNode(fn func() (Node, error)) (Node, error) {
	save := p.pos
	n, err := fn()
	if err != nil {
		p.pos = save
		return nil, err
	}
	return n, nil
}

// parseListOrTable disambiguates `[items]` from `[k=v, ...]` (Table)
// by looking for a top-level `=` before the first comma or closing
// bracket (§3.2 data model: List vs Table literal syntax share the
// bracket pair, distinguished by `=`).
func (p *Parser) parseListOrTable() (Node, error) {
	start := p.pos
	p.advance() // [
	p.skipBlankLines()
	p.skipInlineSpace()
	if p.peek() == ']' {
		p.advance()
		return &ListNode{base: newBase(p.span(start))}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	if p.peek() == '=' && p.peekAt(1) != '=' {
		p.advance()
		p.skipInlineSpace()
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entries := []TableEntry{{Key: first, Value: val}}
		var fallback Node
		for {
			p.skipInlineSpace()
			if p.peek() == ',' {
				p.advance()
				p.skipBlankLines()
				p.skipInlineSpace()
				if p.peek() == ']' {
					break
				}
				k, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				p.skipInlineSpace()
				if err := p.expectByte('='); err != nil {
					return nil, err
				}
				p.skipInlineSpace()
				v, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				entries = append(entries, TableEntry{Key: k, Value: v})
				continue
			}
			if p.peek() == ';' {
				p.advance()
				p.skipInlineSpace()
				if err := p.expectKeyword("fallback"); err == nil {
					p.skipInlineSpace()
					if err := p.expectByte('='); err != nil {
						return nil, err
					}
					p.skipInlineSpace()
					fallback, err = p.parseExpression()
					if err != nil {
						return nil, err
					}
				}
				continue
			}
			break
		}
		p.skipBlankLines()
		p.skipInlineSpace()
		if err := p.expectByte(']'); err != nil {
			return nil, err
		}
		return &TableNode{base: newBase(p.span(start)), Entries: entries, Fallback: fallback}, nil
	}

	items := []Node{first}
	for {
		p.skipInlineSpace()
		if p.peek() == ',' {
			p.advance()
			p.skipBlankLines()
			p.skipInlineSpace()
			if p.peek() == ']' {
				break
			}
			item, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}
		break
	}
	p.skipBlankLines()
	p.skipInlineSpace()
	if err := p.expectByte(']'); err != nil {
		return nil, err
	}
	return &ListNode{base: newBase(p.span(start)), Items: items}, nil
}

// parseSetOrTableBraces parses `{items}` (Set literal, §3.2).
func (p *Parser) parseSetOrTableBraces() (Node, error) {
	start := p.pos
	p.advance() // {
	p.skipBlankLines()
	p.skipInlineSpace()
	var items []Node
	for p.peek() != '}' {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipInlineSpace()
		if p.peek() == ',' {
			p.advance()
			p.skipBlankLines()
			p.skipInlineSpace()
			continue
		}
		break
	}
	p.skipBlankLines()
	p.skipInlineSpace()
	if err := p.expectByte('}'); err != nil {
		return nil, err
	}
	return &SetNode{base: newBase(p.span(start)), Items: items}, nil
}

// parseLambda parses `func(params) body`.
func (p *Parser) parseLambda() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("func"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	id := p.nextLambdaID
	p.nextLambdaID++
	return &LambdaNode{base: newBase(p.span(start)), ID: id, Params: params, Body: body}, nil
}

func (p *Parser) parseParamList() ([]Param, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	var params []Param
	p.skipBlankLines()
	p.skipInlineSpace()
	for p.peek() != ')' {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		param := Param{Name: name}
		p.skipInlineSpace()
		if p.peek() == ':' {
			p.advance()
			p.skipInlineSpace()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			param.Type = t
		}
		p.skipInlineSpace()
		if p.peek() == '=' && p.peekAt(1) != '=' {
			p.advance()
			p.skipInlineSpace()
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			param.Default = v
		}
		params = append(params, param)
		p.skipInlineSpace()
		if p.peek() == ',' {
			p.advance()
			p.skipBlankLines()
			p.skipInlineSpace()
			continue
		}
		break
	}
	p.skipBlankLines()
	p.skipInlineSpace()
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	return params, nil
}
