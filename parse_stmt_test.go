package tomo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFileForTest(t *testing.T, src string) *BlockNode {
	t.Helper()
	file := SpoofFile("<test>", src)
	block, err := ParseFile(file)
	require.NoError(t, err)
	return block
}

func TestParseDeclareAndAssign(t *testing.T) {
	t.Run("declare with :=", func(t *testing.T) {
		block := parseFileForTest(t, "x := 5\n")
		require.Len(t, block.Statements, 1)
		decl, ok := block.Statements[0].(*DeclareNode)
		require.True(t, ok)
		assert.Equal(t, "x", decl.Name)
	})

	t.Run("update assignment", func(t *testing.T) {
		block := parseFileForTest(t, "x := 5\nx += 1\n")
		require.Len(t, block.Statements, 2)
		upd, ok := block.Statements[1].(*UpdateAssignNode)
		require.True(t, ok)
		assert.Equal(t, "+", upd.Op)
	})
}

func TestParseIfElseifElse(t *testing.T) {
	block := parseFileForTest(t, "if x:\n    y := 1\nelseif z:\n    y := 2\nelse:\n    y := 3\n")
	require.Len(t, block.Statements, 1)
	ifNode, ok := block.Statements[0].(*IfNode)
	require.True(t, ok)
	assert.Len(t, ifNode.Then.Statements, 1)
	require.Len(t, ifNode.ElseIf, 1)
	require.NotNil(t, ifNode.Else)
}

func TestParseForLoop(t *testing.T) {
	block := parseFileForTest(t, "for x in items:\n    say x\n")
	forNode, ok := block.Statements[0].(*ForNode)
	require.True(t, ok)
	assert.Equal(t, "x", forNode.ValueVar)
	assert.Len(t, forNode.Body.Statements, 1)
}

func TestParseFunctionDefWithModifiers(t *testing.T) {
	block := parseFileForTest(t, "func add(a: Int, b: Int) -> Int; inline:\n    return a + b\n")
	fn, ok := block.Statements[0].(*FunctionDefNode)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.True(t, fn.Inline)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
}

func TestParseStructDef(t *testing.T) {
	block := parseFileForTest(t, "struct Point(x: Int, y: Int)\n")
	s, ok := block.Statements[0].(*StructDefNode)
	require.True(t, ok)
	assert.Equal(t, "Point", s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "x", s.Fields[0].Name)
}

func TestParseEnumDefWithExplicitValuesAndDuplicateRejection(t *testing.T) {
	t.Run("sequential default values", func(t *testing.T) {
		block := parseFileForTest(t, "enum Color:\n    Red\n    Green\n    Blue\n")
		e, ok := block.Statements[0].(*EnumDefNode)
		require.True(t, ok)
		require.Len(t, e.Tags, 3)
		assert.Equal(t, 0, e.Tags[0].Value)
		assert.Equal(t, 1, e.Tags[1].Value)
		assert.Equal(t, 2, e.Tags[2].Value)
	})

	t.Run("duplicate explicit tag value is an error", func(t *testing.T) {
		file := SpoofFile("<test>", "enum Color:\n    Red = 1\n    Green = 1\n")
		_, err := ParseFile(file)
		require.Error(t, err)
		pe, ok := err.(*ParseError)
		require.True(t, ok)
		assert.Equal(t, ParseErrorSemantic, pe.Kind)
	})
}

func TestParseDocTest(t *testing.T) {
	block := parseFileForTest(t, ">> 1 + 1\n= 2\n")
	dt, ok := block.Statements[0].(*DocTestNode)
	require.True(t, ok)
	assert.Equal(t, "2", dt.Expected)
}
