package tomo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExprForTest(t *testing.T, src string) Node {
	t.Helper()
	file := SpoofFile("<test>", src)
	p := NewParser(file)
	p.topLevel = false
	n, err := p.parseExpression()
	require.NoError(t, err)
	return n
}

func parseExprForTestErr(t *testing.T, src string) (Node, error) {
	t.Helper()
	file := SpoofFile("<test>", src)
	p := NewParser(file)
	p.topLevel = false
	return p.parseExpression()
}

func TestParseExpressionPrecedence(t *testing.T) {
	t.Run("multiplication binds tighter than addition", func(t *testing.T) {
		n := parseExprForTest(t, "1 + 2 * 3")
		assert.Equal(t, "(1 + (2 * 3))", String(n))
	})

	t.Run("comparisons are looser than arithmetic", func(t *testing.T) {
		n := parseExprForTest(t, "1 + 2 < 3 * 4")
		assert.Equal(t, "((1 + 2) < (3 * 4))", String(n))
	})

	t.Run("and binds looser than comparisons", func(t *testing.T) {
		n := parseExprForTest(t, "a < b and c < d")
		bin, ok := n.(*BinaryOpNode)
		require.True(t, ok)
		assert.Equal(t, "and", bin.Op)
	})

	t.Run("unary minus binds tighter than binary operators", func(t *testing.T) {
		n := parseExprForTest(t, "-1 + 2")
		bin, ok := n.(*BinaryOpNode)
		require.True(t, ok)
		_, ok = bin.Left.(*UnaryOpNode)
		assert.True(t, ok)
	})
}

func TestParseSuffixChain(t *testing.T) {
	t.Run("field access, indexing, and calls chain left to right", func(t *testing.T) {
		n := parseExprForTest(t, "foo.bar[1](2)")
		call, ok := n.(*FunctionCallNode)
		require.True(t, ok)
		idx, ok := call.Callee.(*IndexNode)
		require.True(t, ok)
		field, ok := idx.Target.(*FieldAccessNode)
		require.True(t, ok)
		assert.Equal(t, "bar", field.Field)
	})

	t.Run("method call with args", func(t *testing.T) {
		n := parseExprForTest(t, "list:insert(5)")
		mc, ok := n.(*MethodCallNode)
		require.True(t, ok)
		assert.Equal(t, "insert", mc.Method)
		assert.Len(t, mc.Args, 1)
	})

	t.Run("optional check suffix", func(t *testing.T) {
		n := parseExprForTest(t, "x?")
		_, ok := n.(*OptionalCheckNode)
		assert.True(t, ok)
	})
}

func TestParseIntLiteral(t *testing.T) {
	t.Run("hex literal with underscore separator", func(t *testing.T) {
		n := parseExprForTest(t, "0xFF_FF")
		in, ok := n.(*IntNode)
		require.True(t, ok)
		assert.Equal(t, "0xFF_FF", in.Text)
	})

	t.Run("bit-width suffix", func(t *testing.T) {
		n := parseExprForTest(t, "100_i8")
		in, ok := n.(*IntNode)
		require.True(t, ok)
		assert.Equal(t, 8, in.BitWidth)
	})

	t.Run("percent unit", func(t *testing.T) {
		n := parseExprForTest(t, "50%")
		in, ok := n.(*IntNode)
		require.True(t, ok)
		assert.Equal(t, "%", in.Unit)
	})
}

func TestParseListAndTableLiterals(t *testing.T) {
	t.Run("list literal", func(t *testing.T) {
		n := parseExprForTest(t, "[1, 2, 3]")
		list, ok := n.(*ListNode)
		require.True(t, ok)
		assert.Len(t, list.Items, 3)
	})

	t.Run("table literal disambiguated by =", func(t *testing.T) {
		n := parseExprForTest(t, "[1=2, 3=4]")
		table, ok := n.(*TableNode)
		require.True(t, ok)
		assert.Len(t, table.Entries, 2)
	})

	t.Run("empty list", func(t *testing.T) {
		n := parseExprForTest(t, "[]")
		list, ok := n.(*ListNode)
		require.True(t, ok)
		assert.Empty(t, list.Items)
	})

	t.Run("set literal", func(t *testing.T) {
		n := parseExprForTest(t, "{1, 2}")
		set, ok := n.(*SetNode)
		require.True(t, ok)
		assert.Len(t, set.Items, 2)
	})
}

func TestParseTextLiteralInterpolation(t *testing.T) {
	t.Run("plain text with interpolation", func(t *testing.T) {
		n := parseExprForTest(t, `"hello $(name)!"`)
		tj, ok := n.(*TextJoinNode)
		require.True(t, ok)
		require.Len(t, tj.Children, 3)
		lit1, ok := tj.Children[0].(*TextLiteralNode)
		require.True(t, ok)
		assert.Equal(t, "hello ", lit1.Value)
		v, ok := tj.Children[1].(*VarNode)
		require.True(t, ok)
		assert.Equal(t, "name", v.Name)
	})

	t.Run("escape sequences", func(t *testing.T) {
		n := parseExprForTest(t, `"a\nb"`)
		tj, ok := n.(*TextJoinNode)
		require.True(t, ok)
		require.Len(t, tj.Children, 3)
		esc, ok := tj.Children[1].(*EscapeSequenceNode)
		require.True(t, ok)
		assert.Equal(t, '\n', esc.Value)
	})

	// §8 scenario 4: a bare interpolation (no surrounding parens) inside
	// a tagged, custom-delimited text literal must still interpolate,
	// not get absorbed into the surrounding literal text.
	t.Run("bare interpolation, no parens", func(t *testing.T) {
		n := parseExprForTest(t, `$js<const x = {$name};>`)
		tj, ok := n.(*TextJoinNode)
		require.True(t, ok)
		assert.Equal(t, "js", tj.Lang)
		require.Len(t, tj.Children, 3)
		lit1, ok := tj.Children[0].(*TextLiteralNode)
		require.True(t, ok)
		assert.Equal(t, "const x = {", lit1.Value)
		v, ok := tj.Children[1].(*VarNode)
		require.True(t, ok)
		assert.Equal(t, "name", v.Name)
		lit2, ok := tj.Children[2].(*TextLiteralNode)
		require.True(t, ok)
		assert.Equal(t, "};", lit2.Value)
	})

	t.Run("whitespace before bare interpolation is rejected", func(t *testing.T) {
		_, err := parseExprForTestErr(t, `"total: $ 5"`)
		require.Error(t, err)
	})
}

func TestParseNoneLiteral(t *testing.T) {
	n := parseExprForTest(t, "!Int")
	none, ok := n.(*NoneNode)
	require.True(t, ok)
	v, ok := none.Type.(*VarNode)
	require.True(t, ok)
	assert.Equal(t, "Int", v.Name)
}
