package hexmap

import (
	"math"

	"github.com/eternumwasd/api/internal/model"
)

// Hex radii in render units
const (
	LiveHexSize       = 5.0
	SettlementHexSize = 4.0
)

// Zoom bounds and step
const (
	MinZoom  = 0.5
	MaxZoom  = 5.0
	ZoomStep = 1.2
)

// EmptyViewBox is used when there is nothing to frame
var EmptyViewBox = model.ViewBox{X: 0, Y: 0, Width: 1000, Height: 1000}

// BaseViewBox frames every point with one hex of margin plus ten hexes of
// padding, never narrower or shorter than forty hexes.
func BaseViewBox(points []model.MapPoint, hexSize float64) model.ViewBox {
	if len(points) == 0 {
		return EmptyViewBox
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X-hexSize)
		minY = math.Min(minY, p.Y-hexSize)
		maxX = math.Max(maxX, p.X+hexSize)
		maxY = math.Max(maxY, p.Y+hexSize)
	}

	padding := hexSize * 10
	return model.ViewBox{
		X:      minX - padding,
		Y:      minY - padding,
		Width:  math.Max(maxX-minX+padding*2, hexSize*40),
		Height: math.Max(maxY-minY+padding*2, hexSize*40),
	}
}

// Viewport is a zoomed and panned window onto a base viewBox
type Viewport struct {
	Base    model.ViewBox
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

// NewViewport returns an unzoomed, centered viewport
func NewViewport(base model.ViewBox) Viewport {
	return Viewport{Base: base, Zoom: 1}
}

// WithZoom sets the zoom level within [MinZoom, MaxZoom] and re-clamps the
// pan offset for the new window size.
func (v Viewport) WithZoom(zoom float64) Viewport {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	v.Zoom = clamp(zoom, MinZoom, MaxZoom)
	return v.Pan(0, 0)
}

// ZoomIn enlarges by one step up to MaxZoom
func (v Viewport) ZoomIn() Viewport {
	return v.WithZoom(math.Min(v.Zoom*ZoomStep, MaxZoom))
}

// ZoomOut shrinks by one step down to MinZoom
func (v Viewport) ZoomOut() Viewport {
	return v.WithZoom(math.Max(v.Zoom/ZoomStep, MinZoom))
}

// Pan moves the window by dx, dy render units. The offset stays within
// half the difference between base and zoomed size on each axis, so a
// window wider than the base cannot move at all.
func (v Viewport) Pan(dx, dy float64) Viewport {
	dx, dy = finite(dx), finite(dy)
	limitX, limitY := v.PanLimits()
	v.OffsetX = clamp(v.OffsetX+dx, -limitX, limitX)
	v.OffsetY = clamp(v.OffsetY+dy, -limitY, limitY)
	return v
}

// PanLimits returns the largest absolute offset allowed on each axis
func (v Viewport) PanLimits() (x, y float64) {
	w, h := v.zoomedSize()
	return math.Max(0, (v.Base.Width-w)/2), math.Max(0, (v.Base.Height-h)/2)
}

// finite maps NaN and infinities to zero
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (v Viewport) zoomedSize() (w, h float64) {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return v.Base.Width / zoom, v.Base.Height / zoom
}

// ViewBox returns the visible window
func (v Viewport) ViewBox() model.ViewBox {
	w, h := v.zoomedSize()
	cx := v.Base.X + v.Base.Width/2
	cy := v.Base.Y + v.Base.Height/2
	return model.ViewBox{
		X:      cx - w/2 + v.OffsetX,
		Y:      cy - h/2 + v.OffsetY,
		Width:  w,
		Height: h,
	}
}
