package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	t.Run("given range", func(t *testing.T) {
		c := Sample("0", "3.14159", 0)
		assert.Equal(t, 0.0, c.MinX)
		assert.InDelta(t, 3.14159, c.MaxX, 1e-12)
		require.Len(t, c.Points, DefaultSegments+1)
		assert.InDelta(t, 0, c.Points[0].Y, 1e-12)
		assert.InDelta(t, 2, c.Points[DefaultSegments].Y, 1e-5)
	})

	t.Run("values stay within [0, 2]", func(t *testing.T) {
		for _, p := range Sample("-50", "50", 1000).Points {
			assert.GreaterOrEqual(t, p.Y, MinY)
			assert.LessOrEqual(t, p.Y, MaxY)
		}
	})

	t.Run("fallback ranges", func(t *testing.T) {
		for _, bounds := range [][2]string{{"", ""}, {"5", "1"}, {"oops", "-3"}, {"2", "2"}} {
			c := Sample(bounds[0], bounds[1], 10)
			assert.Equal(t, DefaultMinX, c.MinX, bounds)
			assert.Equal(t, DefaultMaxX, c.MaxX, bounds)
			assert.Len(t, c.Points, 11)
		}
	})

	t.Run("malformed bound is zero", func(t *testing.T) {
		c := Sample("bad", "4", 4)
		assert.Equal(t, 0.0, c.MinX)
		assert.Equal(t, []float64{0, 1, 2, 3, 4}, xs(c.Points))
	})
}

func TestProject(t *testing.T) {
	c := Sample("0", "10", 2)

	_, err := c.Project(0, 100)
	assert.ErrorIs(t, err, ErrInvalidCanvas)

	_, err = Sample("0", "5e-324", 4).Project(200, 100)
	assert.ErrorIs(t, err, ErrRangeTooSmall)

	canvas, err := c.Project(200, 100)
	require.NoError(t, err)
	require.Len(t, canvas.Points, 3)

	// x spans the inner 80% of the width.
	assert.InDelta(t, 20, canvas.Points[0].X, 1e-9)
	assert.InDelta(t, 100, canvas.Points[1].X, 1e-9)
	assert.InDelta(t, 180, canvas.Points[2].X, 1e-9)

	// y = 0 sits on the bottom margin line.
	assert.InDelta(t, 90, canvas.Points[0].Y, 1e-9)
	assert.InDelta(t, 90-(1-math.Cos(5))*40, canvas.Points[1].Y, 1e-9)

	assert.InDelta(t, 90, canvas.XAxisY, 1e-9)
	assert.InDelta(t, 20, canvas.YAxisX, 1e-9)
}

func xs(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}
