package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeCycles(t *testing.T) {
	assert.Equal(t, Software, Hardware.Next())
	assert.Equal(t, Hardware, Software.Next())

	assert.Equal(t, CullFront, CullBack.Next())
	assert.Equal(t, CullNone, CullFront.Next())
	assert.Equal(t, CullBack, CullNone.Next())

	assert.Equal(t, FilterLinear, FilterPoint.Next())
	assert.Equal(t, FilterAnisotropic, FilterLinear.Next())
	assert.Equal(t, FilterPoint, FilterAnisotropic.Next())
}

func TestModeText(t *testing.T) {
	var m PipelineMode
	require.NoError(t, m.UnmarshalText([]byte("Software")))
	assert.Equal(t, Software, m)

	var c CullMode
	require.NoError(t, c.UnmarshalText([]byte(" none ")))
	assert.Equal(t, CullNone, c)

	var f FilterMode
	require.NoError(t, f.UnmarshalText([]byte("ANISOTROPIC")))
	assert.Equal(t, FilterAnisotropic, f)

	text, err := CullFront.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "front", string(text))

	assert.Error(t, c.UnmarshalText([]byte("sideways")))
	assert.Equal(t, CullNone, c, "failed parse leaves the value unchanged")
	assert.Equal(t, "CullMode(7)", CullMode(7).String())
}
