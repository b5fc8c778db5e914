package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range Names() {
		m, err := Get(name)
		require.NoError(t, err, name)
		require.NotNil(t, m, name)
	}

	_, err := Get("sepia")
	assert.Error(t, err)
}

func TestPlain(t *testing.T) {
	m, err := Get("plain")
	require.NoError(t, err)

	assert.Equal(t, RGB{0, 0, 0}, m[0])
	assert.Equal(t, RGB{128, 128, 128}, m[128])
	assert.Equal(t, RGB{255, 255, 255}, m[255])
}

func TestInvPlain(t *testing.T) {
	m, err := Get("invplain")
	require.NoError(t, err)

	assert.Equal(t, RGB{255, 255, 255}, m[0])
	assert.Equal(t, RGB{0, 0, 0}, m[255])
}

func TestHot(t *testing.T) {
	m, err := Get("hot")
	require.NoError(t, err)

	// red ramps first, blue last
	assert.Equal(t, RGB{0, 0, 0}, m[0])
	assert.Equal(t, uint8(255), m[100].R)
	assert.Equal(t, uint8(0), m[50].B)
	assert.Equal(t, uint8(255), m[255].R)
	assert.Equal(t, uint8(255), m[255].G)
	assert.Greater(t, m[255].B, uint8(250), "top of the range is near white")
}

func TestRainbow_EndsBlueToRed(t *testing.T) {
	m, err := Get("rainbow")
	require.NoError(t, err)

	low := m[0]
	assert.Greater(t, low.B, low.R, "low intensities lean blue")
	high := m[255]
	assert.Greater(t, high.R, high.B, "high intensities lean red")
}
