package tomo

import "fmt"

// astFormatToken distinguishes the parts of a pretty-printed AST that
// get colored independently when highlighting is requested.
type astFormatToken int

const (
	astFormatNone astFormatToken = iota
	astFormatSpan
	astFormatLiteral
	astFormatName
)

var astPrinterTheme = map[astFormatToken]string{
	astFormatNone:    "\033[0m",
	astFormatSpan:    "\033[1;31;5;228m",
	astFormatLiteral: "\033[1;38;5;245m",
	astFormatName:    "\033[1;36m",
}

// PrettyPrint renders an AST node as an indented tree with source
// spans, the way the parser's own debugging tools and the REPL's
// `--ast-only`-equivalent do.
func PrettyPrint(n Node) string {
	p := newAstPrinter(func(s string, _ astFormatToken) string { return s })
	p.visit(n)
	return p.output.String()
}

// HighlightPrettyPrint is PrettyPrint with ANSI coloring, honoring the
// same NO_COLOR/terminal convention described in §7.
func HighlightPrettyPrint(n Node) string {
	p := newAstPrinter(func(s string, tok astFormatToken) string {
		return astPrinterTheme[tok] + s + astPrinterTheme[astFormatNone]
	})
	p.visit(n)
	return p.output.String()
}

type astPrinter struct {
	*treePrinter[astFormatToken]
}

func newAstPrinter(format FormatFunc[astFormatToken]) *astPrinter {
	return &astPrinter{treePrinter: newTreePrinter(format)}
}

func (p *astPrinter) header(name string, span Span) string {
	return p.format(name, astFormatName) + p.format(fmt.Sprintf(" (%s)", span), astFormatSpan)
}

func (p *astPrinter) leaf(name, value string, span Span) {
	p.writel(p.header(name, span) + " " + p.format(fmt.Sprintf("%q", escapeLiteral(value)), astFormatLiteral))
}

func (p *astPrinter) branch(name string, span Span, children []Node) {
	p.writel(p.header(name, span))
	for i, c := range children {
		last := i == len(children)-1
		if last {
			p.pwrite("└── ")
			p.indent("    ")
		} else {
			p.pwrite("├── ")
			p.indent("│   ")
		}
		p.visit(c)
		p.unindent()
		if !last {
			p.write("\n")
		}
	}
}

func (p *astPrinter) visit(n Node) {
	if n == nil {
		p.writel("<nil>")
		return
	}
	switch v := n.(type) {
	case *IntNode:
		p.leaf("Int", v.Text, v.span)
	case *NumNode:
		p.leaf("Num", v.Text, v.span)
	case *BoolNode:
		p.leaf("Bool", fmt.Sprintf("%v", v.Value), v.span)
	case *VarNode:
		p.leaf("Var", v.Name, v.span)
	case *TextLiteralNode:
		p.leaf("TextLiteral", v.Value, v.span)
	case *NoneNode:
		p.branch("None", v.span, []Node{v.Type})
	case *TextJoinNode:
		p.branch(fmt.Sprintf("TextJoin<%s>", v.Lang), v.span, v.Children)
	case *ListNode:
		p.branch("List", v.span, v.Items)
	case *SetNode:
		p.branch("Set", v.span, v.Items)
	case *TableNode:
		kids := make([]Node, 0, len(v.Entries)*2)
		for _, e := range v.Entries {
			kids = append(kids, e.Key, e.Value)
		}
		p.branch("Table", v.span, kids)
	case *BinaryOpNode:
		p.branch("BinaryOp<"+v.Op+">", v.span, []Node{v.Left, v.Right})
	case *UnaryOpNode:
		p.branch("UnaryOp<"+v.Op+">", v.span, []Node{v.Operand})
	case *HeapAllocNode:
		p.branch("HeapAlloc", v.span, []Node{v.Operand})
	case *StackRefNode:
		p.branch("StackRef", v.span, []Node{v.Operand})
	case *OptionalCheckNode:
		p.branch("OptionalCheck", v.span, []Node{v.Operand})
	case *IndexNode:
		p.branch("Index", v.span, []Node{v.Target, v.Index})
	case *FieldAccessNode:
		p.branch("FieldAccess<."+v.Field+">", v.span, []Node{v.Target})
	case *FunctionCallNode:
		kids := append([]Node{v.Callee}, v.Args...)
		p.branch("FunctionCall", v.span, kids)
	case *MethodCallNode:
		kids := append([]Node{v.Target}, v.Args...)
		p.branch("MethodCall<:"+v.Method+">", v.span, kids)
	case *IfNode:
		kids := []Node{v.Condition, v.Then}
		for _, ei := range v.ElseIf {
			kids = append(kids, ei)
		}
		if v.Else != nil {
			kids = append(kids, v.Else)
		}
		p.branch("If", v.span, kids)
	case *WhenNode:
		kids := []Node{v.Subject}
		for _, c := range v.Clauses {
			kids = append(kids, c)
		}
		if v.Else != nil {
			kids = append(kids, v.Else)
		}
		p.branch("When", v.span, kids)
	case *WhenClauseNode:
		p.branch(fmt.Sprintf("WhenClause<%v>", v.Tags), v.span, []Node{v.Body})
	case *ForNode:
		kids := []Node{v.Iterable, v.Body}
		if v.Empty != nil {
			kids = append(kids, v.Empty)
		}
		p.branch(fmt.Sprintf("For<%s>", v.ValueVar), v.span, kids)
	case *WhileNode:
		p.branch("While", v.span, []Node{v.Condition, v.Body})
	case *RepeatNode:
		p.branch("Repeat", v.span, []Node{v.Body})
	case *ReturnNode:
		if v.Value == nil {
			p.writel(p.header("Return", v.span))
			return
		}
		p.branch("Return", v.span, []Node{v.Value})
	case *StopNode:
		p.writel(p.header("Stop<"+v.Label+">", v.span))
	case *SkipNode:
		p.writel(p.header("Skip<"+v.Label+">", v.span))
	case *DeclareNode:
		p.branch("Declare<"+v.Name+">", v.span, []Node{v.Value})
	case *AssignNode:
		kids := append(append([]Node{}, v.Targets...), v.Values...)
		p.branch("Assign", v.span, kids)
	case *UpdateAssignNode:
		p.branch("UpdateAssign<"+v.Op+">", v.span, []Node{v.Target, v.Value})
	case *StructDefNode:
		p.branch("StructDef<"+v.Name+">", v.span, blockStatements(v.Body))
	case *EnumDefNode:
		p.branch("EnumDef<"+v.Name+">", v.span, blockStatements(v.Body))
	case *LangDefNode:
		p.branch("LangDef<"+v.Name+">", v.span, blockStatements(v.Body))
	case *FunctionDefNode:
		p.branch("FunctionDef<"+v.Name+">", v.span, blockStatements(v.Body))
	case *ExternNode:
		p.writel(p.header("Extern<"+v.Name+">", v.span))
	case *InlineCCodeNode:
		p.leaf("InlineCCode", v.Code, v.span)
	case *UseNode:
		p.leaf("Use", v.Path, v.span)
	case *LinkerDirectiveNode:
		p.leaf("LinkerDirective", v.Flag, v.span)
	case *DocTestNode:
		p.branch("DocTest", v.span, []Node{v.Expression})
	case *PrintStatementNode:
		p.branch("PrintStatement", v.span, v.Args)
	case *BlockNode:
		p.branch("Block", v.span, v.Statements)
	default:
		p.writel(fmt.Sprintf("<unknown %T>", v))
	}
}

func blockStatements(b *BlockNode) []Node {
	if b == nil {
		return nil
	}
	return b.Statements
}
