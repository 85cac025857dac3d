//go:build cgo

package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Run opens the window and blocks until it is closed.
func Run(s Session, opts Options) error {
	if opts.Title == "" {
		opts.Title = "dimplot"
	}
	m := newModel(s, opts)
	m.redraw()

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetTPS(60)
	return ebiten.RunGame(&game{m: m})
}

type game struct {
	m      *model
	canvas *ebiten.Image
	runes  []rune
}

func (g *game) Update() error {
	g.runes = ebiten.AppendInputChars(g.runes[:0])
	g.m.typeRunes(g.runes)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		g.m.enter()
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.m.backspace()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.m.clearInput()
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.m.changeDimension(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.m.changeDimension(-1)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.White)
	if g.m.dirty {
		if g.canvas != nil {
			g.canvas.Deallocate()
		}
		g.canvas = ebiten.NewImageFromImage(g.m.plot)
		g.m.dirty = false
	}
	if g.canvas != nil {
		screen.DrawImage(g.canvas, nil)
	}

	_, h := g.m.canvasSize()
	bar := screen.SubImage(barRect(g.m.width, h, g.m.height)).(*ebiten.Image)
	bar.Fill(color.Gray{Y: 0x20})
	ebitenutil.DebugPrintAt(screen, g.m.prompt(), 4, h+2)
	ebitenutil.DebugPrintAt(screen, g.m.status, 4, h+20)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.m.width, g.m.height
}
