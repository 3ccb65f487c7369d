package tomo

import "fmt"

// NodeTag identifies the concrete payload of an AST node (§3.8). The
// source describes this as a tagged union `{tag, file, start, end,
// payload}`; here each tag corresponds to one Go struct implementing
// Node, and downstream consumers (the code generator, out of scope)
// pattern-match on Tag() the way §6.1 describes.
type NodeTag int

const (
	TagInt NodeTag = iota
	TagNum
	TagBool
	TagNone
	TagVar
	TagTextLiteral
	TagEscapeSequence
	TagTextJoin
	TagList
	TagTable
	TagSet
	TagBinaryOp
	TagUnaryOp
	TagHeapAlloc
	TagStackRef
	TagOptionalCheck
	TagIndex
	TagFieldAccess
	TagFunctionCall
	TagMethodCall
	TagLambda
	TagIf
	TagWhen
	TagWhenClause
	TagFor
	TagWhile
	TagRepeat
	TagReturn
	TagStop
	TagSkip
	TagDeclare
	TagAssign
	TagUpdateAssign
	TagStructDef
	TagEnumDef
	TagLangDef
	TagFunctionDef
	TagExtern
	TagInlineCCode
	TagUse
	TagLinkerDirective
	TagDocTest
	TagPrintStatement
	TagBlock
)

func (t NodeTag) String() string {
	names := [...]string{
		"Int", "Num", "Bool", "None", "Var", "TextLiteral", "EscapeSequence",
		"TextJoin", "List", "Table", "Set", "BinaryOp", "UnaryOp", "HeapAlloc",
		"StackRef", "OptionalCheck", "Index", "FieldAccess", "FunctionCall",
		"MethodCall", "Lambda", "If", "When", "WhenClause", "For", "While",
		"Repeat", "Return", "Stop", "Skip", "Declare", "Assign", "UpdateAssign",
		"StructDef", "EnumDef", "LangDef", "FunctionDef", "Extern",
		"InlineCCode", "Use", "LinkerDirective", "DocTest", "PrintStatement",
		"Block",
	}
	if int(t) < 0 || int(t) >= len(names) {
		return "Unknown"
	}
	return names[t]
}

// Node is the common interface every AST payload type implements.
// Source span is byte-exact (§3.8) for error messages and
// back-to-source formatting.
type Node interface {
	Tag() NodeTag
	Span() Span
}

type base struct {
	span Span
}

func (b base) Span() Span { return b.span }

func newBase(span Span) base { return base{span: span} }

// ---- literals ----

// IntNode is an integer literal (§4.7 Literals): optional base prefix,
// digit run with `_` separators, optional bit-width suffix, or a `%`
// (percent) / `deg` unit suffix that reinterprets it as a Num.
type IntNode struct {
	base
	Text     string // original digits, unprocessed, so BigInt parsing owns precision
	BitWidth int    // 0 = unspecified/BigInt, else 8/16/32/64
	Unit     string // "", "%", "deg"
}

func (n *IntNode) Tag() NodeTag { return TagInt }

// NumNode is a floating point literal.
type NumNode struct {
	base
	Text  string
	Width int // 32 or 64, 64 is the default
	Unit  string
}

func (n *NumNode) Tag() NodeTag { return TagNum }

// BoolNode is `yes` / `no`.
type BoolNode struct {
	base
	Value bool
}

func (n *BoolNode) Tag() NodeTag { return TagBool }

// NoneNode is `!T`, a typed none literal.
type NoneNode struct {
	base
	Type Node // a type expression, usually *VarNode or a suffix chain
}

func (n *NoneNode) Tag() NodeTag { return TagNone }

// VarNode is an identifier reference.
type VarNode struct {
	base
	Name string
}

func (n *VarNode) Tag() NodeTag { return TagVar }

// TextLiteral is a run of literal text inside an interpolated string,
// i.e. everything between interpolation points (§4.7 item 4).
type TextLiteralNode struct {
	base
	Value string
}

func (n *TextLiteralNode) Tag() NodeTag { return TagTextLiteral }

// EscapeKind distinguishes the escape forms of §4.7 item 3.
type EscapeKind int

const (
	EscapeNamed     EscapeKind = iota // \n \t etc.
	EscapeHex                         // \xHH
	EscapeUnicodeName                 // \U[name]
	EscapeUnicodeHex                  // \Uhex
	EscapeOctal                       // octal triple
	EscapeVerbatim                    // \<char>
)

// EscapeSequenceNode is a single backslash escape, its own AST node
// per §4.7 item 3.
type EscapeSequenceNode struct {
	base
	Kind  EscapeKind
	Raw   string // text following the backslash, unprocessed
	Value rune   // decoded value, when statically known
}

func (n *EscapeSequenceNode) Tag() NodeTag { return TagEscapeSequence }

// TextJoinNode is an interpolated string, the result of §4.7's text
// literal sublanguage and §4.7's path literal sublanguage (lang="Path").
type TextJoinNode struct {
	base
	Lang     string // "", "Pattern", "Shell", "Path", or a user $lang tag
	Children []Node // *TextLiteralNode, *EscapeSequenceNode, or interpolated expressions
}

func (n *TextJoinNode) Tag() NodeTag { return TagTextJoin }

// ---- compound literals ----

type ListNode struct {
	base
	ItemType Node // optional explicit item type annotation, nil if inferred
	Items    []Node
}

func (n *ListNode) Tag() NodeTag { return TagList }

type TableEntry struct {
	Key   Node
	Value Node
}

type TableNode struct {
	base
	KeyType, ValueType Node // optional explicit annotations
	Entries            []TableEntry
	Fallback           Node // optional `; fallback=expr`
}

func (n *TableNode) Tag() NodeTag { return TagTable }

type SetNode struct {
	base
	ItemType Node
	Items    []Node
}

func (n *SetNode) Tag() NodeTag { return TagSet }

// ---- operators ----

type BinaryOpNode struct {
	base
	Op          string
	Left, Right Node
}

func (n *BinaryOpNode) Tag() NodeTag { return TagBinaryOp }

type UnaryOpNode struct {
	base
	Op      string // "-", "not"
	Operand Node
}

func (n *UnaryOpNode) Tag() NodeTag { return TagUnaryOp }

// HeapAllocNode is `@expr`: heap-allocation, consuming only a tight
// suffix chain of its operand (§4.7 Unary prefixes).
type HeapAllocNode struct {
	base
	Operand Node
}

func (n *HeapAllocNode) Tag() NodeTag { return TagHeapAlloc }

// StackRefNode is `&expr`: stack-reference.
type StackRefNode struct {
	base
	Operand Node
}

func (n *StackRefNode) Tag() NodeTag { return TagStackRef }

// OptionalCheckNode is the trailing `?` suffix.
type OptionalCheckNode struct {
	base
	Operand Node
}

func (n *OptionalCheckNode) Tag() NodeTag { return TagOptionalCheck }

// ---- suffix chain ----

type IndexNode struct {
	base
	Target, Index Node
}

func (n *IndexNode) Tag() NodeTag { return TagIndex }

type FieldAccessNode struct {
	base
	Target Node
	Field  string
}

func (n *FieldAccessNode) Tag() NodeTag { return TagFieldAccess }

type FunctionCallNode struct {
	base
	Callee Node
	Args   []Node
}

func (n *FunctionCallNode) Tag() NodeTag { return TagFunctionCall }

// MethodCallNode is `target:method(args...)`.
type MethodCallNode struct {
	base
	Target Node
	Method string
	Args   []Node
}

func (n *MethodCallNode) Tag() NodeTag { return TagMethodCall }

// ---- functions ----

type Param struct {
	Name    string
	Type    Node // optional
	Default Node // optional
}

type LambdaNode struct {
	base
	ID     int // ctx.next_lambda_id, assigned at parse time
	Params []Param
	Body   *BlockNode
}

func (n *LambdaNode) Tag() NodeTag { return TagLambda }

// ---- control flow ----

type IfNode struct {
	base
	Condition      Node
	Then           *BlockNode
	ElseIf         []*IfNode // chained `elseif`
	Else           *BlockNode
}

func (n *IfNode) Tag() NodeTag { return TagIf }

type WhenClauseNode struct {
	base
	Tags []string // matched enum tag names, empty = wildcard/else
	Vars []string // bound payload field names, if any
	Body *BlockNode
}

func (n *WhenClauseNode) Tag() NodeTag { return TagWhenClause }

type WhenNode struct {
	base
	Subject Node
	Clauses []*WhenClauseNode
	Else    *BlockNode
}

func (n *WhenNode) Tag() NodeTag { return TagWhen }

type ForNode struct {
	base
	IndexVar string // optional
	ValueVar string
	Iterable Node
	Body     *BlockNode
	Empty    *BlockNode // optional zero-iterations clause
}

func (n *ForNode) Tag() NodeTag { return TagFor }

type WhileNode struct {
	base
	Condition Node
	Body      *BlockNode
}

func (n *WhileNode) Tag() NodeTag { return TagWhile }

type RepeatNode struct {
	base
	Body *BlockNode
}

func (n *RepeatNode) Tag() NodeTag { return TagRepeat }

type ReturnNode struct {
	base
	Value Node // optional
}

func (n *ReturnNode) Tag() NodeTag { return TagReturn }

type StopNode struct {
	base
	Label string // optional loop label
}

func (n *StopNode) Tag() NodeTag { return TagStop }

type SkipNode struct {
	base
	Label string
}

func (n *SkipNode) Tag() NodeTag { return TagSkip }

// ---- declarations & assignment ----

type DeclareNode struct {
	base
	Name  string
	Type  Node // optional explicit annotation
	Value Node
}

func (n *DeclareNode) Tag() NodeTag { return TagDeclare }

type AssignNode struct {
	base
	Targets []Node
	Values  []Node
}

func (n *AssignNode) Tag() NodeTag { return TagAssign }

// UpdateAssignNode is `+=`, `-=`, `and=`, etc.
type UpdateAssignNode struct {
	base
	Op     string
	Target Node
	Value  Node
}

func (n *UpdateAssignNode) Tag() NodeTag { return TagUpdateAssign }

// ---- top-level declarations (§4.7 "Top-level declarations") ----

type StructField struct {
	Name    string
	Type    Node
	Default Node
	Secret  bool
}

type StructDefNode struct {
	base
	Name   string
	Fields []StructField
	Body   *BlockNode // methods defined in the struct's namespace block
}

func (n *StructDefNode) Tag() NodeTag { return TagStructDef }

type EnumTag struct {
	Name    string
	Value   int  // resolved tag value (§4.7 "Enum tag values")
	Fields  []StructField
}

type EnumDefNode struct {
	base
	Name string
	Tags []EnumTag
	Body *BlockNode
}

func (n *EnumDefNode) Tag() NodeTag { return TagEnumDef }

type LangDefNode struct {
	base
	Name string
	Body *BlockNode
}

func (n *LangDefNode) Tag() NodeTag { return TagLangDef }

// FunctionDefNode carries the `; inline`, `; cached`, `; cache_size = N`
// modifiers described in §4.7.
type FunctionDefNode struct {
	base
	Name       string
	Params     []Param
	ReturnType Node // optional
	Body       *BlockNode
	Inline     bool
	Cached     bool
	CacheSize  int // -1 means unbounded, only meaningful when Cached
}

func (n *FunctionDefNode) Tag() NodeTag { return TagFunctionDef }

type ExternNode struct {
	base
	Name       string
	CName      string
	Type       Node
}

func (n *ExternNode) Tag() NodeTag { return TagExtern }

type InlineCCodeNode struct {
	base
	Code string
}

func (n *InlineCCodeNode) Tag() NodeTag { return TagInlineCCode }

type UseNode struct {
	base
	Path string
}

func (n *UseNode) Tag() NodeTag { return TagUse }

type LinkerDirectiveNode struct {
	base
	Flag string // text following `!link`
}

func (n *LinkerDirectiveNode) Tag() NodeTag { return TagLinkerDirective }

type DocTestNode struct {
	base
	Expression Node
	Expected   string // expected rendered output, or "" if none given
}

func (n *DocTestNode) Tag() NodeTag { return TagDocTest }

type PrintStatementNode struct {
	base
	Args []Node
}

func (n *PrintStatementNode) Tag() NodeTag { return TagPrintStatement }

// BlockNode is a sequence of statements sharing one indentation level
// (§4.7 "Block structure").
type BlockNode struct {
	base
	Statements []Node
}

func (n *BlockNode) Tag() NodeTag { return TagBlock }

// Walk visits n and every descendant in pre-order, calling fn for
// each. fn returns false to skip a node's children. This is the
// pattern-matching traversal §6.1 describes downstream consumers using,
// implemented once here instead of per-tag visitor methods.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *NoneNode:
		Walk(v.Type, fn)
	case *TextJoinNode:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *ListNode:
		Walk(v.ItemType, fn)
		for _, c := range v.Items {
			Walk(c, fn)
		}
	case *TableNode:
		Walk(v.KeyType, fn)
		Walk(v.ValueType, fn)
		for _, e := range v.Entries {
			Walk(e.Key, fn)
			Walk(e.Value, fn)
		}
		Walk(v.Fallback, fn)
	case *SetNode:
		Walk(v.ItemType, fn)
		for _, c := range v.Items {
			Walk(c, fn)
		}
	case *BinaryOpNode:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *UnaryOpNode:
		Walk(v.Operand, fn)
	case *HeapAllocNode:
		Walk(v.Operand, fn)
	case *StackRefNode:
		Walk(v.Operand, fn)
	case *OptionalCheckNode:
		Walk(v.Operand, fn)
	case *IndexNode:
		Walk(v.Target, fn)
		Walk(v.Index, fn)
	case *FieldAccessNode:
		Walk(v.Target, fn)
	case *FunctionCallNode:
		Walk(v.Callee, fn)
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case *MethodCallNode:
		Walk(v.Target, fn)
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case *LambdaNode:
		Walk(v.Body, fn)
	case *IfNode:
		Walk(v.Condition, fn)
		Walk(v.Then, fn)
		for _, ei := range v.ElseIf {
			Walk(ei, fn)
		}
		Walk(v.Else, fn)
	case *WhenNode:
		Walk(v.Subject, fn)
		for _, c := range v.Clauses {
			Walk(c, fn)
		}
		Walk(v.Else, fn)
	case *WhenClauseNode:
		Walk(v.Body, fn)
	case *ForNode:
		Walk(v.Iterable, fn)
		Walk(v.Body, fn)
		Walk(v.Empty, fn)
	case *WhileNode:
		Walk(v.Condition, fn)
		Walk(v.Body, fn)
	case *RepeatNode:
		Walk(v.Body, fn)
	case *ReturnNode:
		Walk(v.Value, fn)
	case *DeclareNode:
		Walk(v.Type, fn)
		Walk(v.Value, fn)
	case *AssignNode:
		for _, t := range v.Targets {
			Walk(t, fn)
		}
		for _, val := range v.Values {
			Walk(val, fn)
		}
	case *UpdateAssignNode:
		Walk(v.Target, fn)
		Walk(v.Value, fn)
	case *StructDefNode:
		Walk(v.Body, fn)
	case *EnumDefNode:
		Walk(v.Body, fn)
	case *LangDefNode:
		Walk(v.Body, fn)
	case *FunctionDefNode:
		Walk(v.ReturnType, fn)
		Walk(v.Body, fn)
	case *ExternNode:
		Walk(v.Type, fn)
	case *DocTestNode:
		Walk(v.Expression, fn)
	case *PrintStatementNode:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case *BlockNode:
		for _, s := range v.Statements {
			Walk(s, fn)
		}
	}
}

// String renders a node back to a debuggable (not necessarily
// round-trippable) textual form, used by tests and REPL echoing.
func String(n Node) string {
	if n == nil {
		return "<nil>"
	}
	switch v := n.(type) {
	case *IntNode:
		return v.Text
	case *NumNode:
		return v.Text
	case *BoolNode:
		if v.Value {
			return "yes"
		}
		return "no"
	case *VarNode:
		return v.Name
	case *BinaryOpNode:
		return fmt.Sprintf("(%s %s %s)", String(v.Left), v.Op, String(v.Right))
	case *UnaryOpNode:
		return fmt.Sprintf("(%s %s)", v.Op, String(v.Operand))
	case *FunctionCallNode:
		return fmt.Sprintf("%s(...)", String(v.Callee))
	default:
		return fmt.Sprintf("<%s>", v.Tag())
	}
}
