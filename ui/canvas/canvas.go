// Package canvas provides the micrograph canvas with pan, zoom, and
// measurement overlays.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/micrograph"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// MicrographCanvas displays the loaded capillary image with the
// reference lines and particle markers drawn on top.
type MicrographCanvas struct {
	widget.BaseWidget

	// What to draw
	micrograph *micrograph.Micrograph
	frame      *capillary.Frame
	particles  []*capillary.Particle
	labelScale float64 // label size slider, 1.0 = 100%

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Container
	scroll  *zoomScroll
	content *clickableContent
	imgSize fyne.Size

	// Fit to window
	fitToWindow    bool
	lastScrollSize fyne.Size

	// Callbacks
	onZoomChange func(zoom float64)
	onLeftClick  func(x, y float64) // Image coordinates
	onRightClick func(x, y float64) // Image coordinates
}

// zoomScroll wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *MicrographCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *MicrographCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Wheel zooms instead of scrolling
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// clickableContent wraps the raster to handle mouse events.
type clickableContent struct {
	widget.BaseWidget
	canvas *MicrographCanvas
	raster *fynecanvas.Raster
}

func newClickableContent(mc *MicrographCanvas, raster *fynecanvas.Raster) *clickableContent {
	cc := &clickableContent{
		canvas: mc,
		raster: raster,
	}
	cc.ExtendBaseWidget(cc)
	return cc
}

func (cc *clickableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(cc.raster)
}

func (cc *clickableContent) MinSize() fyne.Size {
	return cc.raster.MinSize()
}

func (cc *clickableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		cc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		cc.canvas.ZoomOut()
	}
}

// imagePoint converts a click position to image coordinates, or
// ok=false for clicks outside the widget bounds (a Fyne event quirk).
func (cc *clickableContent) imagePoint(ev *fyne.PointEvent) (x, y float64, ok bool) {
	size := cc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return 0, 0, false
	}

	scrollOffset := cc.canvas.scroll.Offset()
	canvasX := float64(ev.Position.X + scrollOffset.X)
	canvasY := float64(ev.Position.Y + scrollOffset.Y)
	return canvasX / cc.canvas.zoom, canvasY / cc.canvas.zoom, true
}

// Tapped handles left-click events.
func (cc *clickableContent) Tapped(ev *fyne.PointEvent) {
	if cc.canvas.onLeftClick == nil {
		return
	}
	if x, y, ok := cc.imagePoint(ev); ok {
		cc.canvas.onLeftClick(x, y)
	}
}

// TappedSecondary handles right-click events.
func (cc *clickableContent) TappedSecondary(ev *fyne.PointEvent) {
	if cc.canvas.onRightClick == nil {
		return
	}
	if x, y, ok := cc.imagePoint(ev); ok {
		cc.canvas.onRightClick(x, y)
	}
}

// NewMicrographCanvas creates a new micrograph canvas.
func NewMicrographCanvas() *MicrographCanvas {
	mc := &MicrographCanvas{
		zoom:       1.0,
		labelScale: 1.0,
		imgSize:    fyne.NewSize(400, 300),
	}

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.raster.SetMinSize(mc.imgSize)

	mc.content = newClickableContent(mc, mc.raster)
	mc.scroll = newZoomScroll(mc.content, mc)

	mc.ExtendBaseWidget(mc)
	return mc
}

// Container returns the canvas container for embedding in layouts.
func (mc *MicrographCanvas) Container() fyne.CanvasObject {
	return mc.scroll
}

// SetMicrograph sets the image to display. nil clears the canvas.
func (mc *MicrographCanvas) SetMicrograph(m *micrograph.Micrograph) {
	mc.micrograph = m
	mc.updateContentSize()
}

// SetFrame sets the capillary frame whose lines are drawn.
func (mc *MicrographCanvas) SetFrame(f *capillary.Frame) {
	mc.frame = f
	mc.Refresh()
}

// SetParticles sets the particle markers to draw.
func (mc *MicrographCanvas) SetParticles(particles []*capillary.Particle) {
	mc.particles = particles
	mc.Refresh()
}

// SetLabelScale sets the label size multiplier (1.0 = 100%).
func (mc *MicrographCanvas) SetLabelScale(scale float64) {
	if scale <= 0 {
		scale = 1.0
	}
	mc.labelScale = scale
	mc.Refresh()
}

// SetZoom sets the zoom level.
func (mc *MicrographCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	mc.zoom = zoom
	mc.updateContentSize()

	if mc.onZoomChange != nil {
		mc.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (mc *MicrographCanvas) GetZoom() float64 {
	return mc.zoom
}

// ZoomIn increases the zoom level.
func (mc *MicrographCanvas) ZoomIn() {
	mc.SetZoom(mc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (mc *MicrographCanvas) ZoomOut() {
	mc.SetZoom(mc.zoom / zoomStep)
}

// FitToWindow adjusts zoom to fit the image in the visible area.
func (mc *MicrographCanvas) FitToWindow() {
	w, h := mc.micrograph.Width(), mc.micrograph.Height()
	if w == 0 || h == 0 {
		return
	}

	viewSize := mc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(w)
	zoomY := float64(viewSize.Height) / float64(h)

	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}

	mc.SetZoom(zoom * 0.95) // Leave a small margin
}

// SetFitToWindow enables or disables auto-fit on resize.
func (mc *MicrographCanvas) SetFitToWindow(fit bool) {
	mc.fitToWindow = fit
	if fit {
		mc.FitToWindow()
	}
}

// GetFitToWindow returns the current fit-to-window state.
func (mc *MicrographCanvas) GetFitToWindow() bool {
	return mc.fitToWindow
}

// OnZoomChange sets a callback for zoom changes.
func (mc *MicrographCanvas) OnZoomChange(callback func(zoom float64)) {
	mc.onZoomChange = callback
}

// OnLeftClick sets a callback for left-click events.
// Coordinates are in image space (not zoomed).
func (mc *MicrographCanvas) OnLeftClick(callback func(x, y float64)) {
	mc.onLeftClick = callback
}

// OnRightClick sets a callback for right-click events.
// Coordinates are in image space (not zoomed).
func (mc *MicrographCanvas) OnRightClick(callback func(x, y float64)) {
	mc.onRightClick = callback
}

// Refresh refreshes the canvas display.
func (mc *MicrographCanvas) Refresh() {
	mc.raster.Refresh()
}

// updateContentSize updates the content size based on image and zoom.
func (mc *MicrographCanvas) updateContentSize() {
	w, h := mc.micrograph.Width(), mc.micrograph.Height()
	if w == 0 || h == 0 {
		mc.imgSize = fyne.NewSize(400, 300)
	} else {
		mc.imgSize = fyne.NewSize(
			float32(float64(w)*mc.zoom),
			float32(float64(h)*mc.zoom),
		)
	}

	mc.raster.SetMinSize(mc.imgSize)
	mc.raster.Resize(mc.imgSize)
	if mc.content != nil {
		mc.content.Resize(mc.imgSize)
		mc.content.Refresh()
	}
	mc.raster.Refresh()
	if mc.scroll != nil {
		mc.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (mc *MicrographCanvas) draw(w, h int) image.Image {
	currentSize := fyne.NewSize(float32(w), float32(h))
	if mc.fitToWindow && currentSize != mc.lastScrollSize && w > 0 && h > 0 {
		mc.lastScrollSize = currentSize
		// Schedule fit after this draw completes
		go mc.FitToWindow()
	}

	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Opaque dark background
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 0x2C
		output.Pix[i+1] = 0x3E
		output.Pix[i+2] = 0x50
		output.Pix[i+3] = 0xFF
	}

	if mc.micrograph != nil && mc.micrograph.Image != nil {
		src := mc.micrograph.Image
		dstW := int(float64(mc.micrograph.Width()) * mc.zoom)
		dstH := int(float64(mc.micrograph.Height()) * mc.zoom)
		if dstW > w {
			dstW = w
		}
		if dstH > h {
			dstH = h
		}
		if dstW > 0 && dstH > 0 {
			scaler := xdraw.Scaler(xdraw.ApproxBiLinear)
			if mc.zoom >= 2 {
				// Nearest keeps pixels crisp when inspecting closely
				scaler = xdraw.NearestNeighbor
			}
			srcRect := image.Rect(0, 0,
				int(float64(dstW)/mc.zoom), int(float64(dstH)/mc.zoom))
			scaler.Scale(output, image.Rect(0, 0, dstW, dstH), src, srcRect, xdraw.Src, nil)
		}
	}

	mc.drawOverlays(output, w)
	return output
}

// CreateRenderer implements fyne.Widget.
func (mc *MicrographCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &micrographCanvasRenderer{canvas: mc}
}

type micrographCanvasRenderer struct {
	canvas *MicrographCanvas
}

func (r *micrographCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	}
	if r.canvas.fitToWindow && size.Width > 0 && size.Height > 0 &&
		size != r.canvas.lastScrollSize {
		r.canvas.lastScrollSize = size
		r.canvas.FitToWindow()
	}
}

func (r *micrographCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *micrographCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *micrographCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *micrographCanvasRenderer) Destroy() {}
