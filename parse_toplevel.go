package tomo

import "strconv"

// parseStructDef parses `struct Name(field: Type = default, ...): body`
// per §4.7 "Top-level declarations".
func (p *Parser) parseStructDef() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("struct"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	fields, err := p.parseStructFields()
	if err != nil {
		return nil, err
	}
	var body *BlockNode
	save := p.pos
	p.skipInlineSpace()
	if p.peek() == ':' {
		body, err = p.parseNamespaceBlock()
		if err != nil {
			return nil, err
		}
	} else {
		p.pos = save
	}
	return &StructDefNode{base: newBase(p.span(start)), Name: name, Fields: fields, Body: body}, nil
}

func (p *Parser) parseStructFields() ([]StructField, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	var fields []StructField
	p.skipBlankLines()
	p.skipInlineSpace()
	for p.peek() != ')' {
		secret := false
		if p.lookingAt("secret") && !isAlnum(p.peekAt(6)) {
			p.pos += 6
			p.skipInlineSpace()
			secret = true
		}
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		field := StructField{Name: name, Secret: secret}
		p.skipInlineSpace()
		if p.peek() == ':' {
			p.advance()
			p.skipInlineSpace()
			t, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			field.Type = t
		}
		p.skipInlineSpace()
		if p.peek() == '=' && p.peekAt(1) != '=' {
			p.advance()
			p.skipInlineSpace()
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			field.Default = v
		}
		fields = append(fields, field)
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
	return fields, nil
}

// parseNamespaceBlock parses the `: \n <indented function defs>` body
// that may trail a struct/enum/lang definition, turning on top-level
// declaration parsing within it (§4.7: "struct and enum bodies are
// namespace blocks, the only other position top-level forms may
// appear").
func (p *Parser) parseNamespaceBlock() (*BlockNode, error) {
	wasTop := p.topLevel
	p.topLevel = true
	defer func() { p.topLevel = wasTop }()
	return p.parseBlockBody()
}

// parseEnumDef parses `enum Name: \n  TagA \n  TagB(x: Int) = 5 \n ...`
// assigning sequential tag values and rejecting duplicates, per §4.7
// "Enum tag values".
func (p *Parser) parseEnumDef() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("enum"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
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

	node := &EnumDefNode{base: newBase(p.span(start)), Name: name}
	used := map[int]string{}
	nextValue := 0

	wasTop := p.topLevel
	p.topLevel = true
	for p.atIndent(col) {
		p.skipInlineSpace()
		if !isAlpha(p.peek()) {
			break
		}
		if ident := peekIdent(p); tomoKeywords[ident] && ident != "func" {
			break
		}
		tagName, err := p.parseIdentifier()
		if err != nil {
			break
		}
		var fields []StructField
		p.skipInlineSpace()
		if p.peek() == '(' {
			fields, err = p.parseStructFields()
			if err != nil {
				p.popIndent()
				p.topLevel = wasTop
				return nil, err
			}
		}
		value := nextValue
		p.skipInlineSpace()
		if p.peek() == '=' && p.peekAt(1) != '=' {
			p.advance()
			p.skipInlineSpace()
			numStart := p.pos
			for isDigit(p.peek()) || p.peek() == '-' {
				p.advance()
			}
			v, convErr := strconv.Atoi(p.file.Text[numStart:p.pos])
			if convErr != nil {
				p.popIndent()
				p.topLevel = wasTop
				return nil, p.errf(ParseErrorSemantic, numStart, "invalid enum tag value")
			}
			value = v
		}
		if prev, dup := used[value]; dup {
			p.popIndent()
			p.topLevel = wasTop
			return nil, p.errf(ParseErrorSemantic, start, "enum tag %q reuses value %d already assigned to %q", tagName, value, prev)
		}
		used[value] = tagName
		nextValue = value + 1
		node.Tags = append(node.Tags, EnumTag{Name: tagName, Value: value, Fields: fields})
		p.skipBlankLines()
	}

	var body *BlockNode
	if p.atIndent(col) {
		var stmts []Node
		for p.atIndent(col) {
			p.skipInlineSpace()
			stmt, err := p.parseStatement()
			if err != nil {
				break
			}
			stmts = append(stmts, stmt)
			p.skipBlankLines()
		}
		if len(stmts) > 0 {
			body = &BlockNode{Statements: stmts}
		}
	}
	p.topLevel = wasTop
	p.popIndent()
	node.Body = body
	return node, nil
}

func peekIdent(p *Parser) string {
	save := p.pos
	id, err := p.parseIdentifier()
	p.pos = save
	if err != nil {
		return ""
	}
	return id
}

// parseLangDef parses `lang Name: body`, a namespace used for
// `$lang"..."` interpolated strings (§4.7 item 2).
func (p *Parser) parseLangDef() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("lang"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	body, err := p.parseNamespaceBlock()
	if err != nil {
		return nil, err
	}
	return &LangDefNode{base: newBase(p.span(start)), Name: name, Body: body}, nil
}

// parseFunctionDef parses `func name(params) -> ReturnType: body` with
// the trailing `; inline`, `; cached`, `; cache_size = N` modifiers
// from §4.7.
func (p *Parser) parseFunctionDef() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("func"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	var retType Node
	if p.lookingAt("->") {
		p.pos += 2
		p.skipInlineSpace()
		retType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		p.skipInlineSpace()
	}

	node := &FunctionDefNode{base: newBase(p.span(start)), Name: name, Params: params, ReturnType: retType, CacheSize: -1}
	for p.peek() == ';' {
		p.advance()
		p.skipInlineSpace()
		switch {
		case p.lookingAt("inline") && !isAlnum(p.peekAt(6)):
			p.pos += 6
			node.Inline = true
		case p.lookingAt("cache_size") && !isAlnum(p.peekAt(10)):
			p.pos += 10
			p.skipInlineSpace()
			if err := p.expectByte('='); err != nil {
				return nil, err
			}
			p.skipInlineSpace()
			numStart := p.pos
			for isDigit(p.peek()) {
				p.advance()
			}
			n, convErr := strconv.Atoi(p.file.Text[numStart:p.pos])
			if convErr != nil {
				return nil, p.errf(ParseErrorSemantic, numStart, "invalid cache_size")
			}
			node.Cached = true
			node.CacheSize = n
		case p.lookingAt("cached") && !isAlnum(p.peekAt(6)):
			p.pos += 6
			node.Cached = true
		default:
			return nil, p.errf(ParseErrorSyntactic, p.pos, "unknown function modifier")
		}
		p.skipInlineSpace()
	}

	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

// parseExtern parses `extern name: Type` or `extern name = "c_name": Type`.
func (p *Parser) parseExtern() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("extern"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	cName := name
	p.skipInlineSpace()
	if p.peek() == '=' {
		p.advance()
		p.skipInlineSpace()
		lit, err := p.parseTextLiteral()
		if err != nil {
			return nil, err
		}
		if tj, ok := lit.(*TextJoinNode); ok && len(tj.Children) == 1 {
			if tl, ok := tj.Children[0].(*TextLiteralNode); ok {
				cName = tl.Value
			}
		}
		p.skipInlineSpace()
	}
	if err := p.expectByte(':'); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &ExternNode{base: newBase(p.span(start)), Name: name, CName: cName, Type: typ}, nil
}

// parseUse parses `use "path/to/module"` or `use module_name`, valid
// only at top-level or namespace-block position (§4.7).
func (p *Parser) parseUse() (Node, error) {
	start := p.pos
	if err := p.expectKeyword("use"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	if p.peek() == '"' {
		lit, err := p.parseTextLiteral()
		if err != nil {
			return nil, err
		}
		path := ""
		if tj, ok := lit.(*TextJoinNode); ok {
			for _, c := range tj.Children {
				if tl, ok := c.(*TextLiteralNode); ok {
					path += tl.Value
				}
			}
		}
		return &UseNode{base: newBase(p.span(start)), Path: path}, nil
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &UseNode{base: newBase(p.span(start)), Path: name}, nil
}

// parseLinkerDirective parses `!link -lfoo`.
func (p *Parser) parseLinkerDirective() (Node, error) {
	start := p.pos
	if err := p.expectLiteral("!link"); err != nil {
		return nil, err
	}
	p.skipInlineSpace()
	lineStart := p.pos
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
	return &LinkerDirectiveNode{base: newBase(p.span(start)), Flag: p.file.Text[lineStart:p.pos]}, nil
}

// parseInlineCCode parses a `>> {...}` raw C passthrough. Reuses the
// `>>` marker distinctly from DocTest: parseStatement sends `>>` here
// only at top level and only when a `{` follows it. Code is the rest of
// that line, braces included; lines after it are not collected.
func (p *Parser) parseInlineCCode() (Node, error) {
	start := p.pos
	if err := p.expectLiteral(">>"); err != nil {
		return nil, err
	}
	lineStart := p.pos
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
	return &InlineCCodeNode{base: newBase(p.span(start)), Code: p.file.Text[lineStart:p.pos]}, nil
}

// ParseFile parses an entire source file into a top-level Block of
// declarations and statements (§6.1 "parse_file").
func ParseFile(file *File) (*BlockNode, error) {
	p := NewParser(file)
	p.skipBlankLines()
	var stmts []Node
	for !p.eof() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipBlankLines()
	}
	return &BlockNode{base: newBase(Span{File: file, Start: 0, End: p.pos}), Statements: stmts}, nil
}

// ParseExpressionString parses a standalone expression, such as from
// a REPL line or a `-e` CLI flag (§6.1 "parse_expression_str"). Unlike
// ParseFile, trailing garbage after the expression is an error.
func ParseExpressionString(source string) (Node, error) {
	file := SpoofFile("<expression>", source)
	p := NewParser(file)
	p.topLevel = false
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipBlankLines()
	if !p.eof() {
		return nil, p.errf(ParseErrorSyntactic, p.pos, "unexpected trailing input after expression")
	}
	return expr, nil
}

// ParseTypeString parses a standalone type expression, such as from a
// generated-code type annotation (§6.1 "parse_type_str").
func ParseTypeString(source string) (Node, error) {
	file := SpoofFile("<type>", source)
	p := NewParser(file)
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errf(ParseErrorSyntactic, p.pos, "unexpected trailing input after type")
	}
	return typ, nil
}
