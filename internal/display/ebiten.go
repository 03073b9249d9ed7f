package display

import (
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/eedd/esp32-extra-display/internal/encoder"
)

// EbitenDisplay emulates the device panel in a desktop window.
type EbitenDisplay struct {
	mu     sync.Mutex
	frame  *image.RGBA
	frames uint64
	dirty  bool

	panel *ebiten.Image
	scale int
	title string
}

// NewEbitenDisplay creates a display whose window starts at scale times the
// panel size.
func NewEbitenDisplay(title string, scale int) *EbitenDisplay {
	if scale < 1 {
		scale = 1
	}
	return &EbitenDisplay{scale: scale, title: title}
}

// SetFrame updates the displayed frame (called from the reader goroutine).
func (d *EbitenDisplay) SetFrame(img *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = img
	d.frames++
	d.dirty = true
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(encoder.CanvasWidth*d.scale, encoder.CanvasHeight*d.scale)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

func (d *EbitenDisplay) Update() error {
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	frame, dirty, count := d.frame, d.dirty, d.frames
	d.dirty = false
	d.mu.Unlock()

	if frame == nil {
		ebitenutil.DebugPrint(screen, "waiting for frames...")
		return
	}

	b := frame.Bounds()
	if d.panel == nil || d.panel.Bounds().Dx() != b.Dx() || d.panel.Bounds().Dy() != b.Dy() {
		d.panel = ebiten.NewImage(b.Dx(), b.Dy())
		dirty = true
	}
	if dirty {
		d.panel.WritePixels(frame.Pix)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(b.Dx()), float64(b.Dy()))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(d.panel, op)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("frames: %d", count))
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
