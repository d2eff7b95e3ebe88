package ebiten

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mormel/keyfall/internal/render"
)

var (
	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
	fontErr    error
)

// loadFont parses the embedded Go Regular face once.
func loadFont() (*text.GoTextFaceSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if fontErr != nil {
			fontErr = fmt.Errorf("failed to load label font: %w", fontErr)
		}
	})
	return fontSource, fontErr
}

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// whitePixel is the texture for untextured triangles.
// The 1px border keeps sampling away from the edges.
func whitePixel() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// EbitenEngine hosts a keyfall scene in an ebiten window, or in the page
// canvas when built for js/wasm.
type EbitenEngine struct{}

// NewEngine returns the ebiten host.
func NewEngine() render.Engine {
	return &EbitenEngine{}
}

// SetWindowSize sets the initial window size. The browser build sizes the
// canvas from the page instead.
func (e *EbitenEngine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle names the desktop window.
func (e *EbitenEngine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable lets the user resize the window, which relayouts the
// header through OnResize.
func (e *EbitenEngine) SetWindowResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

// SetTPS sets how often input is polled.
func (e *EbitenEngine) SetTPS(tps int) {
	ebiten.SetTPS(tps)
}

// RunGame loads the label font and blocks until the window closes.
func (e *EbitenEngine) RunGame(game render.Game) error {
	font, err := loadFont()
	if err != nil {
		return err
	}
	return ebiten.RunGame(&gameAdapter{game: game, font: font})
}

// gameAdapter adapts a render.Game to the ebiten.Game interface.
// Input is polled in Update and forwarded as events; the frame itself runs
// in Draw because it needs the screen.
type gameAdapter struct {
	game render.Game
	font *text.GoTextFaceSource

	initialized   bool
	width, height int

	keys    []ebiten.Key
	touches []ebiten.TouchID
}

// Update implements ebiten.Game.
func (a *gameAdapter) Update() error {
	a.keys = inpututil.AppendJustPressedKeys(a.keys[:0])
	for _, k := range a.keys {
		a.game.OnKeyEvent(render.KeyEvent{Code: keyCode(k), Char: keyChar(k)})
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		a.game.OnPointerEvent(render.PointerEvent{X: float64(x), Y: float64(y)})
	}

	a.touches = inpututil.AppendJustPressedTouchIDs(a.touches[:0])
	for _, id := range a.touches {
		x, y := ebiten.TouchPosition(id)
		a.game.OnPointerEvent(render.PointerEvent{X: float64(x), Y: float64(y)})
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.OnTick(newSurface(screen, a.font))
}

// Layout implements ebiten.Game. The logical screen tracks the window, so
// a resize reaches the game as OnResize.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	switch {
	case !a.initialized:
		a.initialized = true
		a.game.OnInit(w, h)
	case w != a.width || h != a.height:
		a.game.OnResize(w, h)
	}
	a.width, a.height = w, h
	return w, h
}
