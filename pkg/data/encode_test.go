package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelEncoder_FirstSeenOrder(t *testing.T) {
	e := NewLabelEncoder()
	assert.Equal(t, 0, e.Fit("Road"))
	assert.Equal(t, 1, e.Fit("Air"))
	assert.Equal(t, 0, e.Fit("Road"))
	assert.Equal(t, 2, e.Fit("Sea"))

	assert.Equal(t, []string{"Road", "Air", "Sea"}, e.Classes())
	assert.Equal(t, 3, e.Len())
}

func TestLabelEncoder_EncodeUnknown(t *testing.T) {
	e := NewLabelEncoder()
	e.Fit("Paper")

	i, ok := e.Encode("Paper")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = e.Encode("Glass")
	assert.False(t, ok)
}

func TestEncoderFromClasses(t *testing.T) {
	e := EncoderFromClasses([]string{"b", "a", "c"})
	i, ok := e.Encode("a")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, []string{"b", "a", "c"}, e.Classes())
}

func TestLabelEncoder_ClassesCopy(t *testing.T) {
	e := NewLabelEncoder()
	e.Fit("x")
	classes := e.Classes()
	classes[0] = "mutated"
	assert.Equal(t, []string{"x"}, e.Classes())
}
