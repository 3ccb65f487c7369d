package parsecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDistinguishesFilenameAndSource(t *testing.T) {
	a := Key("a.tm", "func main(): pass")
	b := Key("b.tm", "func main(): pass")
	c := Key("a.tm", "func other(): pass")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Key("a.tm", "func main(): pass"))
}

func TestGetPutRoundTrip(t *testing.T) {
	c := New(4)
	k := Key("a.tm", "src")
	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Put(k, Entry{Value: "parsed"})
	e, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, "parsed", e.Value)
}

func TestCapacityEvictsOnOverflow(t *testing.T) {
	c := New(2)
	c.Put(1, Entry{Value: "one"})
	c.Put(2, Entry{Value: "two"})
	assert.Equal(t, 2, c.Len())

	c.Put(3, Entry{Value: "three"})
	assert.Equal(t, 2, c.Len(), "capacity bound must never be exceeded")
}

func TestZeroOrNegativeCapacityDefaultsTo100(t *testing.T) {
	c := New(0)
	assert.Equal(t, 100, c.capacity)
	c = New(-5)
	assert.Equal(t, 100, c.capacity)
}

func TestPutOverwritesExistingKeyWithoutEviction(t *testing.T) {
	c := New(1)
	k := Key("a.tm", "src")
	c.Put(k, Entry{Value: "first"})
	c.Put(k, Entry{Value: "second"})
	assert.Equal(t, 1, c.Len())
	e, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, "second", e.Value)
}
