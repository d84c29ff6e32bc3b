package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PriceOverrides(t *testing.T) {
	c, err := New(`{"2": 25, "3": 120}`, 4000)
	require.NoError(t, err)

	std, ok := c.ByID("2")
	require.True(t, ok)
	assert.Equal(t, 25.0, std.PriceUSD)

	ext, ok := c.ByID("3")
	require.True(t, ok)
	assert.Equal(t, 120.0, ext.PriceUSD)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New("", 4000)
	require.NoError(t, err)

	ext, ok := c.ByID("3")
	require.True(t, ok)
	assert.Equal(t, 90.0, ext.PriceUSD)

	assert.Len(t, c.Paid(), 2)
	assert.Len(t, c.Free(), 2)
	assert.Len(t, c.All(), 4)
}

func TestNew_MalformedTableFails(t *testing.T) {
	_, err := New(`{"2": "not a number"`, 4000)
	require.Error(t, err)

	_, err = New(`{"2": -5}`, 4000)
	require.Error(t, err)
}

func TestNew_BadRateFails(t *testing.T) {
	_, err := New("", 0)
	require.Error(t, err)
	_, err = New("", -1)
	require.Error(t, err)
}

func TestPriceCOP(t *testing.T) {
	c, err := New(`{"3": 90}`, 4123.7)
	require.NoError(t, err)

	ext, _ := c.ByID("3")
	// 90 * 4123.7 = 371133, already whole.
	assert.Equal(t, 371133.0, c.PriceCOP(ext))

	free, _ := c.ByID("1")
	assert.Equal(t, 0.0, c.PriceCOP(free))
}

func TestByID_Unknown(t *testing.T) {
	c, err := New("", 4000)
	require.NoError(t, err)
	_, ok := c.ByID("99")
	assert.False(t, ok)
}
