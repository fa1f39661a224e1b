// Package plot samples y = 1 - cos(x) and maps it onto a drawing canvas.
package plot

import (
	"errors"
	"math"

	"github.com/beka-birhanu/vinom-snake/tools/calc"
)

const (
	DefaultSegments = 100
	DefaultMinX     = -10.0
	DefaultMaxX     = 10.0

	// The curve never leaves [0, 2].
	MinY = 0.0
	MaxY = 2.0

	margin = 0.1
)

var (
	ErrInvalidCanvas = errors.New("canvas width and height must be positive")
	ErrRangeTooSmall = errors.New("x range is too small to project")
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is the sampled function over [MinX, MaxX]; it has segments+1 points.
type Curve struct {
	MinX   float64 `json:"minX"`
	MaxX   float64 `json:"maxX"`
	Points []Point `json:"points"`
}

// Canvas is a Curve in pixel coordinates, y growing downwards, with the axes
// positions.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Points []Point `json:"points"`
	XAxisY float64 `json:"xAxisY"`
	YAxisX float64 `json:"yAxisX"`
}

// F is the plotted function.
func F(x float64) float64 {
	return 1 - math.Cos(x)
}

// Sample parses the bounds, unparsable ones being 0, and samples F over them.
// An empty or inverted range falls back to [DefaultMinX, DefaultMaxX].
func Sample(minX, maxX string, segments int) Curve {
	lo, hi := calc.Parse(minX), calc.Parse(maxX)
	if !(lo < hi) || math.IsInf(hi-lo, 0) {
		lo, hi = DefaultMinX, DefaultMaxX
	}
	if segments <= 0 {
		segments = DefaultSegments
	}

	step := (hi - lo) / float64(segments)
	points := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		x := lo + float64(i)*step
		if i == segments {
			x = hi
		}
		points = append(points, Point{X: x, Y: F(x)})
	}

	return Curve{MinX: lo, MaxX: hi, Points: points}
}

// Project maps the curve into a width x height canvas keeping a 10% margin on
// every side.
func (c Curve) Project(width, height float64) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return Canvas{}, ErrInvalidCanvas
	}

	startX, endX := width*margin, width*(1-margin)
	startY, endY := height*margin, height*(1-margin)
	scaleX := (endX - startX) / (c.MaxX - c.MinX)
	scaleY := (endY - startY) / (MaxY - MinY)
	if !finite(scaleX) || !finite(startX-c.MinX*scaleX) {
		return Canvas{}, ErrRangeTooSmall
	}

	points := make([]Point, len(c.Points))
	for i, p := range c.Points {
		points[i] = Point{
			X: startX + (p.X-c.MinX)*scaleX,
			Y: endY - (p.Y-MinY)*scaleY,
		}
	}

	return Canvas{
		Width:  width,
		Height: height,
		Points: points,
		XAxisY: endY + MinY*scaleY,
		YAxisX: startX - c.MinX*scaleX,
	}, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
