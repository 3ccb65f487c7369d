package path

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalization(t *testing.T) {
	t.Run("dot components are dropped", func(t *testing.T) {
		p := Parse("./a/./b")
		assert.Equal(t, []string{"a", "b"}, p.Components)
	})

	t.Run("dot-dot collapses a preceding component", func(t *testing.T) {
		p := Parse("./a/b/../c")
		assert.Equal(t, []string{"a", "c"}, p.Components)
	})

	t.Run("home paths are tagged and tilde-stripped", func(t *testing.T) {
		p := Parse("~/docs")
		assert.Equal(t, KindHome, p.Kind)
		assert.Equal(t, []string{"docs"}, p.Components)
	})

	t.Run("absolute paths are tagged", func(t *testing.T) {
		p := Parse("/etc/hosts")
		assert.Equal(t, KindAbsolute, p.Kind)
		assert.Equal(t, []string{"etc", "hosts"}, p.Components)
	})
}

func TestResolvedExpandsHomeAtCallTime(t *testing.T) {
	p := Parse("~/file.txt")
	resolved, err := p.Resolved()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, home+"/file.txt", resolved)
}

func TestBaseNameAndExtension(t *testing.T) {
	p := Parse("./a/b/report.final.txt")
	assert.Equal(t, "report.final.txt", p.BaseName())
	assert.Equal(t, "txt", p.Extension())
}

func TestWithExtension(t *testing.T) {
	p := Parse("./a/report.txt")
	replaced := p.WithExtension("md")
	assert.Equal(t, "report.md", replaced.BaseName())
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := Parse(t.TempDir())
	file := dir.WithComponent("greeting.txt")

	require.NoError(t, file.Write([]byte("hello")))
	assert.True(t, file.Exists())
	assert.True(t, file.IsFile())

	data, err := file.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestExpandBraces(t *testing.T) {
	assert.Equal(t, []string{"*.tm", "*.md"}, expandBraces("*.{tm,md}"))
	assert.Equal(t, []string{"*.go"}, expandBraces("*.go"))
}

func TestPermissionAndKindPredicates(t *testing.T) {
	dir := Parse(t.TempDir())
	file := dir.WithComponent("data.txt")
	require.NoError(t, file.Write([]byte("x")))

	assert.True(t, file.CanRead())
	assert.True(t, file.CanWrite())
	assert.False(t, file.IsSymlink())
	assert.False(t, file.IsPipe())
	assert.False(t, file.IsSocket())
	assert.True(t, dir.IsDirectory())
	assert.False(t, dir.IsFile())
}

func TestAccessedAndChangedTimestamps(t *testing.T) {
	dir := Parse(t.TempDir())
	file := dir.WithComponent("stamped.txt")
	require.NoError(t, file.Write([]byte("x")))

	modified, err := file.Modified()
	require.NoError(t, err)
	accessed, err := file.Accessed()
	require.NoError(t, err)
	changed, err := file.Changed()
	require.NoError(t, err)

	assert.True(t, modified > 0)
	assert.True(t, accessed > 0)
	assert.True(t, changed > 0)
}
