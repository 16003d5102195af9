package imaging

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Zoom limits match what stays legible for card text.
const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	zoomStep = 1.1
)

// PanStep is how far one pan keystroke moves the window, in display
// pixels.
const PanStep = 20

// View is the operator's window onto one image: a zoom factor and a
// centre point in image coordinates. At zoom 1.0 one image pixel fills
// one display pixel.
type View struct {
	img    image.Image
	zoom   float64
	cx, cy float64
}

// NewView starts centred at zoom 1. Callers usually Fit right away.
func NewView(img image.Image) *View {
	v := &View{img: img, zoom: 1}
	v.centre()
	return v
}

// Image returns the image behind the view.
func (v *View) Image() image.Image { return v.img }

// SetImage swaps the image, keeping the zoom but re-centring, which is
// what a rotation wants.
func (v *View) SetImage(img image.Image) {
	v.img = img
	v.centre()
}

// Zoom returns the current zoom factor.
func (v *View) Zoom() float64 { return v.zoom }

// ZoomIn magnifies one step, clamped at MaxZoom.
func (v *View) ZoomIn() {
	v.zoom = math.Min(v.zoom*zoomStep, MaxZoom)
}

// ZoomOut shrinks one step, clamped at MinZoom.
func (v *View) ZoomOut() {
	v.zoom = math.Max(v.zoom/zoomStep, MinZoom)
}

// Fit picks the zoom that shows the whole image inside a w by h
// display area and re-centres.
func (v *View) Fit(w, h int) {
	b := v.img.Bounds()
	if w <= 0 || h <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	z := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	v.zoom = math.Min(math.Max(z, MinZoom), MaxZoom)
	v.centre()
}

// Pan shifts the window by display pixels. The centre stays inside the
// image so the operator cannot scroll the card out of sight.
func (v *View) Pan(dx, dy float64) {
	v.cx += dx / v.zoom
	v.cy += dy / v.zoom
	v.clamp()
}

func (v *View) centre() {
	b := v.img.Bounds()
	v.cx = float64(b.Min.X) + float64(b.Dx())/2
	v.cy = float64(b.Min.Y) + float64(b.Dy())/2
}

func (v *View) clamp() {
	b := v.img.Bounds()
	v.cx = math.Min(math.Max(v.cx, float64(b.Min.X)), float64(b.Max.X))
	v.cy = math.Min(math.Max(v.cy, float64(b.Min.Y)), float64(b.Max.Y))
}

// Viewport renders the visible window into a w by h buffer. Display
// area not covered by the image stays transparent for the caller to
// paint.
func (v *View) Viewport(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return dst
	}
	b := v.img.Bounds()

	// The image-space window the display covers.
	srcW := float64(w) / v.zoom
	srcH := float64(h) / v.zoom
	x0 := v.cx - srcW/2
	y0 := v.cy - srcH/2

	// Clip the window to the image, then map the clipped part back
	// into display space.
	cx0 := math.Max(x0, float64(b.Min.X))
	cy0 := math.Max(y0, float64(b.Min.Y))
	cx1 := math.Min(x0+srcW, float64(b.Max.X))
	cy1 := math.Min(y0+srcH, float64(b.Max.Y))
	if cx1 <= cx0 || cy1 <= cy0 {
		return dst
	}

	dstRect := image.Rect(
		int(math.Round((cx0-x0)*v.zoom)),
		int(math.Round((cy0-y0)*v.zoom)),
		int(math.Round((cx1-x0)*v.zoom)),
		int(math.Round((cy1-y0)*v.zoom)),
	)
	srcRect := image.Rect(int(cx0), int(cy0), int(math.Ceil(cx1)), int(math.Ceil(cy1)))

	xdraw.ApproxBiLinear.Scale(dst, dstRect, v.img, srcRect, xdraw.Src, nil)
	return dst
}
