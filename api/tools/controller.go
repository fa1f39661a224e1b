// Package toolsapi serves the calculator and the function plotter.
package toolsapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-snake/tools/calc"
	"github.com/beka-birhanu/vinom-snake/tools/plot"
	"github.com/gin-gonic/gin"
)

const (
	defaultCanvasSize = 400.0
	maxSegments       = 10000
)

// CalcRequest holds raw operand text; malformed operands count as 0.
type CalcRequest struct {
	Op1      string `json:"op1"`
	Op2      string `json:"op2"`
	Operator string `json:"operator" binding:"required"`
}

// PlotResponse carries the sampled curve and, when a canvas size was given,
// its projection.
type PlotResponse struct {
	Curve  plot.Curve   `json:"curve"`
	Canvas *plot.Canvas `json:"canvas,omitempty"`
}

type ToolsController struct{}

func NewToolsController() *ToolsController {
	return &ToolsController{}
}

// RegisterPublic registers public routes.
func (tc *ToolsController) RegisterPublic(route *gin.RouterGroup) {
	tools := route.Group("/tools")
	{
		tools.POST("/calc", tc.calc)
		tools.GET("/plot", tc.plot)
	}
}

// RegisterProtected registers protected routes.
func (tc *ToolsController) RegisterProtected(route *gin.RouterGroup) {}

// RegisterAdmin registers operator routes.
func (tc *ToolsController) RegisterAdmin(route *gin.RouterGroup) {}

func (tc *ToolsController) calc(ctx *gin.Context) {
	var request CalcRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	op, err := calc.ParseOperator(request.Operator)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := calc.Evaluate(request.Op1, request.Op2, op)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// plot samples 1 - cos(x) over ?min=&max= with ?segments= pieces. With
// ?width= or ?height= the curve is also projected onto that canvas.
func (tc *ToolsController) plot(ctx *gin.Context) {
	segments, _ := strconv.Atoi(ctx.Query("segments"))
	if segments > maxSegments {
		segments = maxSegments
	}
	curve := plot.Sample(ctx.Query("min"), ctx.Query("max"), segments)

	response := &PlotResponse{Curve: curve}
	width, height := ctx.Query("width"), ctx.Query("height")
	if width != "" || height != "" {
		canvas, err := curve.Project(canvasSide(width), canvasSide(height))
		if err != nil {
			if errors.Is(err, plot.ErrInvalidCanvas) || errors.Is(err, plot.ErrRangeTooSmall) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
			return
		}
		response.Canvas = &canvas
	}

	ctx.JSON(http.StatusOK, response)
}

// canvasSide parses a canvas dimension, defaulting when absent.
func canvasSide(raw string) float64 {
	if raw == "" {
		return defaultCanvasSize
	}
	return calc.Parse(raw)
}
